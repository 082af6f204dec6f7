// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
)

// ディレクトリ（ユーザー保存先）のバックエンド名
const (
	BackendMongo    = "mongo"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// 認証設定
	JWTSecret       string // トークン署名用の秘密鍵
	HashConcurrency int    // 同時に実行する bcrypt 計算の上限

	// サーバー設定
	Port     string // APIサーバーのポート番号
	GinMode  string // Ginの実行モード (debug, release, test)
	LogLevel string // ログレベル (debug, info, warn, error)

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// ユーザーディレクトリ設定
	DirectoryBackend string // mongo, redis, postgres, memory
	DBUser           string // 接続URIに埋め込むユーザー名
	DBPassword       string // 接続URIに埋め込むパスワード

	// MongoDB
	MongoScheme   string // mongodb または mongodb+srv
	MongoHost     string
	MongoDatabase string
	MongoURIRaw   string // 指定された場合は組み立てずにそのまま使う

	// Redis
	RedisURL string

	// PostgreSQL
	PostgresHost     string
	PostgresDatabase string
	PostgresDSNRaw   string
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	// .env.local ファイルを読み込む（存在しない場合はスキップ）
	loadEnvFile()

	config := &Config{
		// 認証設定（旧来の "secret" も受け付ける）
		JWTSecret:       getEnv("JWT_SECRET", getEnv("secret", "")),
		HashConcurrency: getEnvAsInt("HASH_CONCURRENCY", runtime.NumCPU()),

		// サーバー設定
		Port:     getEnv("PORT", "5000"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// CORS設定
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		// ユーザーディレクトリ設定
		DirectoryBackend: getEnv("DIRECTORY_BACKEND", BackendMongo),
		DBUser:           getEnv("DB_USER", ""),
		DBPassword:       getEnv("DB_PASSWORD", ""),

		MongoScheme:   getEnv("MONGO_SCHEME", "mongodb"),
		MongoHost:     getEnv("MONGO_HOST", "localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "auth"),
		MongoURIRaw:   getEnv("MONGO_URI", ""),

		RedisURL: getEnv("REDIS_URL", "redis://127.0.0.1:6379/0"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost:5432"),
		PostgresDatabase: getEnv("POSTGRES_DATABASE", "auth"),
		PostgresDSNRaw:   getEnv("POSTGRES_DSN", ""),
	}

	// 必須設定のバリデーション
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	switch c.DirectoryBackend {
	case BackendMongo, BackendRedis, BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("DIRECTORY_BACKEND %q is not supported", c.DirectoryBackend)
	}

	if c.HashConcurrency <= 0 {
		return fmt.Errorf("HASH_CONCURRENCY must be positive, got %d", c.HashConcurrency)
	}

	// ローカル開発では秘密鍵は任意（未設定ならログイン時に 500 を返す）
	if c.GinMode == "release" {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in release mode")
		}
		if c.DirectoryBackend == BackendMemory {
			return fmt.Errorf("DIRECTORY_BACKEND=memory is not allowed in release mode")
		}
	}

	return nil
}

// MongoURI は MongoDB の接続URIを返します。
// MONGO_URI が指定されていない場合は DB_USER / DB_PASSWORD から組み立てます。
func (c *Config) MongoURI() string {
	if c.MongoURIRaw != "" {
		return c.MongoURIRaw
	}
	u := url.URL{
		Scheme:   c.MongoScheme,
		Host:     c.MongoHost,
		Path:     "/" + c.MongoDatabase,
		RawQuery: "retryWrites=true&w=majority",
	}
	if c.DBUser != "" {
		u.User = url.UserPassword(c.DBUser, c.DBPassword)
	}
	return u.String()
}

// PostgresDSN は PostgreSQL の接続文字列を返します。
func (c *Config) PostgresDSN() string {
	if c.PostgresDSNRaw != "" {
		return c.PostgresDSNRaw
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     c.PostgresHost,
		Path:     "/" + c.PostgresDatabase,
		RawQuery: "sslmode=disable",
	}
	if c.DBUser != "" {
		u.User = url.UserPassword(c.DBUser, c.DBPassword)
	}
	return u.String()
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
