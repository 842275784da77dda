// Package app 按配置组装存储、缓存、解析器和各个 Service，供 server 和 pipeline 两个入口共用。
package app

import (
	"context"
	"fmt"
	"time"

	"survey_insight_go/internal/cache"
	"survey_insight_go/internal/config"
	"survey_insight_go/internal/repository"
	"survey_insight_go/internal/resolver"
	"survey_insight_go/internal/service"
	"survey_insight_go/internal/tagger"
	"survey_insight_go/internal/taxonomy"
	"survey_insight_go/pkg/database"
	"survey_insight_go/pkg/log"
	"survey_insight_go/pkg/token"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// App 持有进程级依赖。
type App struct {
	DB    *gorm.DB
	Redis *redis.Client
	Cache cache.CountCache
	JWT   *token.JWTManager

	Tags      service.TagService
	Overrides service.OverrideService
	Mappings  service.MappingService
	Responses service.ResponseService
	Analytics service.AnalyticsService
	Tagging   service.TaggingService
	Curators  service.CuratorService
}

// New 打开数据库并执行迁移；redis.addr 非空时启用计数缓存，否则使用空实现。
func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN, database.Options{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		SQLLevel:     cfg.Log.SQLLevel,
	})
	if err != nil {
		return nil, err
	}
	a := &App{DB: db, Cache: cache.NewNoopCountCache()}
	if err := database.Migrate(db); err != nil {
		a.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if cfg.Redis.Addr != "" {
		rdb, err := database.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Redis = rdb
		a.Cache = cache.NewRedisCountCache(rdb, time.Duration(cfg.Redis.TTLSeconds)*time.Second)
		log.Infof("effective count cache enabled (redis %s)", cfg.Redis.Addr)
	}

	tx, err := taxonomy.Load(cfg.Tagging.TaxonomyPath)
	if err != nil {
		a.Close()
		return nil, err
	}
	tg := tagger.New(tx, cfg.Tagging.MaxTags)
	log.Infof("taxonomy %s loaded with %d entries", tx.Version, len(tx.Entries))

	tagRepo := repository.NewTagRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	algorithmicRepo := repository.NewAlgorithmicTagRepository(db)
	mappingRepo := repository.NewQuestionTagMappingRepository(db)
	overrideRepo := repository.NewManualOverrideRepository(db)
	curatorRepo := repository.NewCuratorRepository(db)

	res := resolver.NewCachedResolver(resolver.New(resolver.Sources{
		Responses:   responseRepo,
		Algorithmic: algorithmicRepo,
		Mappings:    mappingRepo,
		Overrides:   overrideRepo,
		Tags:        tagRepo,
	}), a.Cache)

	a.JWT = token.NewJWTManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpireHours)*time.Hour)
	a.Tags = service.NewTagService(tagRepo, responseRepo, res, a.Cache)
	a.Overrides = service.NewOverrideService(service.OverrideDeps{
		Responses:   responseRepo,
		Tags:        tagRepo,
		Overrides:   overrideRepo,
		Algorithmic: algorithmicRepo,
		Mappings:    mappingRepo,
		Resolver:    res,
		Cache:       a.Cache,
	})
	a.Mappings = service.NewMappingService(mappingRepo, tagRepo, responseRepo, a.Cache)
	a.Responses = service.NewResponseService(responseRepo, res)
	a.Analytics = service.NewAnalyticsService(responseRepo, tagRepo, res)
	a.Tagging = service.NewTaggingService(tg, responseRepo, tagRepo, algorithmicRepo, a.Cache, cfg.Tagging.Workers)
	a.Curators = service.NewCuratorService(curatorRepo, a.JWT)
	return a, nil
}

// Ping 检查数据库连通性，用于健康检查。
func (a *App) Ping(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close 释放数据库和 Redis 连接。
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			log.Warnf("close redis: %v", err)
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Warnf("close database: %v", err)
		}
	}
}
