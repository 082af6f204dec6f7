// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/auth-api/internal/auth"
	"github.com/yourusername/auth-api/internal/config"
	"github.com/yourusername/auth-api/internal/telemetry"
	"github.com/yourusername/auth-api/internal/users"
)

const serviceName = "auth-api"

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := telemetry.NewLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is not set; logins will fail until it is configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ユーザーディレクトリへ接続（失敗したら起動しない）
	dir, err := setupDirectory(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect to user directory", "backend", cfg.DirectoryBackend, "error", err)
		os.Exit(1)
	}
	logger.Info("connected to user directory", "backend", cfg.DirectoryBackend)

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	metrics := telemetry.NewMetrics()
	router := newRouter(cfg, dir, logger, metrics)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("starting API server", "addr", srv.Addr, "mode", cfg.GinMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped with error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	if err := dir.Close(shutdownCtx); err != nil {
		logger.Error("failed to close user directory", "error", err)
	}
}

// newRouter はミドルウェアとルーティングを設定した Gin エンジンを返します。
func newRouter(cfg *config.Config, dir users.Directory, logger *slog.Logger, metrics *telemetry.Metrics) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(telemetry.RequestLogger(logger))
	router.Use(metrics.Middleware())

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	// CORS許可オリジンを設定（カンマ区切りの文字列を配列に変換）
	corsConfig.AllowOrigins = strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"Authorization",
		telemetry.RequestIDHeader,
	}
	corsConfig.ExposeHeaders = []string{telemetry.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	setupRoutes(router, auth.NewManager(cfg, dir, logger, metrics), metrics)
	return router
}

// handleHealth は公開ルートのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"msg": "Tudo certo"})
}

// setupRoutes は公開ルートと認証周りの配線を行います。
func setupRoutes(router *gin.Engine, authManager *auth.Manager, metrics *telemetry.Metrics) {
	// まずは誰でも叩けるルートを登録
	router.GET("/", handleHealth)
	router.GET("/metrics", metrics.Handler())

	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", authManager.Register)
		authRoutes.POST("/login", authManager.Login)
	}

	// トークン必須のルート
	protected := router.Group("")
	protected.Use(authManager.RequireToken())
	{
		protected.GET("/user/:id", authManager.GetUser)
	}
}
