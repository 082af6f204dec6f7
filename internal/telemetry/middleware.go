package telemetry

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader はリクエストIDを受け渡すヘッダーです。
	RequestIDHeader = "X-Request-ID"

	contextLoggerKey = "telemetry.logger"
)

// RequestLogger はリクエストIDを採番し、リクエストごとのロガーをコンテキストに載せ、
// 処理完了後にアクセスログを 1 行出力するミドルウェアです。
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		reqLogger := logger.With("request_id", requestID)
		c.Set(contextLoggerKey, reqLogger)

		c.Next()

		reqLogger.Info("request completed",
			"method", c.Request.Method,
			"route", routeLabel(c),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

// LoggerFrom はリクエストに紐づいたロガーを返します。未設定なら fallback を返します。
func LoggerFrom(c *gin.Context, fallback *slog.Logger) *slog.Logger {
	if v, ok := c.Get(contextLoggerKey); ok {
		if l, ok := v.(*slog.Logger); ok {
			return l
		}
	}
	if fallback != nil {
		return fallback
	}
	return slog.Default()
}

func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}
