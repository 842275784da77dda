package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"survey_insight_go/internal/app"
	"survey_insight_go/internal/config"
	"survey_insight_go/internal/handler"
	"survey_insight_go/internal/middleware"
	"survey_insight_go/pkg/log"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	config.Init(*configPath)
	cfg := config.Conf

	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatal("Failed to initialise application", err)
		return
	}
	defer a.Close()

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery(), middleware.CORS(cfg.CORS.AllowOrigins))

	handler.RegisterRoutes(r, handler.Handlers{
		Auth:      handler.NewAuthHandler(a.Curators),
		Tag:       handler.NewTagHandler(a.Tags),
		Question:  handler.NewQuestionHandler(a.Analytics, a.Mappings),
		Response:  handler.NewResponseHandler(a.Responses, a.Overrides),
		Analytics: handler.NewAnalyticsHandler(a.Analytics, a.Tagging, a.Ping),
	}, middleware.AuthMiddleware(a.JWT, a.Curators), middleware.AdminAuthMiddleware())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP 服务监听失败: %s", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("HTTP 服务器关闭失败: %v", err)
		return
	}
	log.Info("服务已优雅关闭")
}
