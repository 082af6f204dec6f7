package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	userKeyPrefix  = "user:id:"
	emailKeyPrefix = "user:email:"
)

// メールアドレスの索引とユーザー本体を 1 回のスクリプト実行で書き込む。
// 索引が既に存在する場合は何も書かずに 0 を返す。
var createUserScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1])
redis.call("SET", KEYS[2], ARGV[2])
return 1
`)

type redisRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RedisDirectory はユーザーを Redis に JSON で保存します。
type RedisDirectory struct {
	rdb *redis.Client
}

// NewRedisDirectory は RedisDirectory を作成します。
func NewRedisDirectory(rdb *redis.Client) *RedisDirectory {
	return &RedisDirectory{rdb: rdb}
}

// Create はユーザーを保存します。
func (d *RedisDirectory) Create(ctx context.Context, user *User) error {
	if user == nil {
		return fmt.Errorf("user is nil")
	}
	record := redisRecord{
		ID:           uuid.NewString(),
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    time.Now().UTC(),
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}

	created, err := createUserScript.Run(ctx, d.rdb,
		[]string{emailKey(record.Email), userKey(record.ID)},
		record.ID, payload,
	).Int()
	if err != nil {
		return fmt.Errorf("redis create user: %w", err)
	}
	if created == 0 {
		return ErrEmailTaken
	}

	user.ID = record.ID
	user.CreatedAt = record.CreatedAt
	return nil
}

// FindByID は ID でユーザーを検索します。
func (d *RedisDirectory) FindByID(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	data, err := d.rdb.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get user: %w", err)
	}
	var record redisRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}
	return &User{
		ID:           record.ID,
		Name:         record.Name,
		Email:        record.Email,
		PasswordHash: record.PasswordHash,
		CreatedAt:    record.CreatedAt,
	}, nil
}

// FindByEmail はメールアドレスの索引から ID を引き、ユーザーを返します。
func (d *RedisDirectory) FindByEmail(ctx context.Context, email string) (*User, error) {
	id, err := d.rdb.Get(ctx, emailKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get email index: %w", err)
	}
	return d.FindByID(ctx, id)
}

// Close は Redis クライアントを閉じます。
func (d *RedisDirectory) Close(ctx context.Context) error {
	return d.rdb.Close()
}

func userKey(id string) string {
	return userKeyPrefix + id
}

func emailKey(email string) string {
	return emailKeyPrefix + email
}
