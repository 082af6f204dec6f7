package main

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/auth-api/internal/config"
	"github.com/yourusername/auth-api/internal/users"
)

const connectTimeout = 15 * time.Second

// setupDirectory は設定されたバックエンドのユーザーディレクトリへ接続します。
func setupDirectory(ctx context.Context, cfg *config.Config) (users.Directory, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch cfg.DirectoryBackend {
	case config.BackendMongo:
		dir, err := users.OpenMongo(ctx, cfg.MongoURI(), cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return dir, nil
	case config.BackendPostgres:
		dir, err := users.OpenPostgres(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, err
		}
		return dir, nil
	case config.BackendRedis:
		return setupRedisDirectory(ctx, cfg)
	case config.BackendMemory:
		return users.NewMemoryDirectory(), nil
	default:
		return nil, fmt.Errorf("unknown directory backend %q", cfg.DirectoryBackend)
	}
}

func setupRedisDirectory(ctx context.Context, cfg *config.Config) (users.Directory, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	if cfg.DBUser != "" {
		opt.Username = cfg.DBUser
		opt.Password = cfg.DBPassword
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return users.NewRedisDirectory(rdb), nil
}
