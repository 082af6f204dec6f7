// Package telemetry はログ出力、リクエストID、メトリクスのミドルウェアを提供します。
package telemetry

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger は service 属性付きの JSON ロガーを標準出力向けに作成します。
func NewLogger(service, level string) *slog.Logger {
	return newLogger(os.Stdout, service, level)
}

func newLogger(w io.Writer, service, level string) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return slog.New(h).With("service", service)
}

// ParseLevel はログレベル文字列を slog.Level に変換します。不明な値は Info です。
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
