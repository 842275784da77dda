package middleware

import (
	"bytes"
	"io"
	"time"

	"survey_insight_go/pkg/log"

	"github.com/gin-gonic/gin"
)

// maxLoggedBody 是单条日志里请求体/响应体保留的最大字节数。
const maxLoggedBody = 2048

// 这些路径的请求体含密码，不落日志。
var redactedBodyPaths = map[string]struct{}{
	"/api/auth/login": {},
}

// BodyLogWriter 在写回客户端的同时保留一份响应体
type BodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *BodyLogWriter) Write(b []byte) (int, error) {
	if room := maxLoggedBody - w.body.Len(); room > 0 {
		if len(b) > room {
			w.body.Write(b[:room])
		} else {
			w.body.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

// RequestLogger 记录每个请求的耗时、状态码以及截断后的请求体和响应体。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		path := c.Request.URL.Path

		var requestBody []byte
		if c.Request.Body != nil {
			requestBody, _ = io.ReadAll(c.Request.Body)
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))

		blw := &BodyLogWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = blw

		c.Next()

		loggedRequest := truncate(requestBody)
		if _, ok := redactedBodyPaths[path]; ok {
			loggedRequest = "[redacted]"
		}
		log.Infow("HTTP request",
			"latency", time.Since(startTime),
			"status", c.Writer.Status(),
			"client_ip", c.ClientIP(),
			"method", c.Request.Method,
			"path", path,
			"request_body", loggedRequest,
			"response_body", blw.body.String(),
		)
	}
}

func truncate(b []byte) string {
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody]) + "...(truncated)"
	}
	return string(b)
}
