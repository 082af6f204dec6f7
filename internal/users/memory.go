package users

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryDirectory はプロセス内に保持する Directory です。開発・テスト用。
type MemoryDirectory struct {
	mu      sync.RWMutex
	byID    map[string]User
	byEmail map[string]string
}

// NewMemoryDirectory は空の MemoryDirectory を作成します。
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		byID:    make(map[string]User),
		byEmail: make(map[string]string),
	}
}

// Create はユーザーを追加します。
func (d *MemoryDirectory) Create(ctx context.Context, user *User) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.byEmail[user.Email]; ok {
		return ErrEmailTaken
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	d.byID[user.ID] = *user
	d.byEmail[user.Email] = user.ID
	return nil
}

// FindByID は ID でユーザーを検索します。
func (d *MemoryDirectory) FindByID(ctx context.Context, id string) (*User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// FindByEmail はメールアドレスでユーザーを検索します。
func (d *MemoryDirectory) FindByEmail(ctx context.Context, email string) (*User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	u := d.byID[id]
	return &u, nil
}

// Close は何もしません。
func (d *MemoryDirectory) Close(ctx context.Context) error {
	return nil
}
