// Package users はユーザーディレクトリ（ユーザー情報の保存先）を提供します。
package users

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound は該当するユーザーが存在しないことを表します。
	ErrNotFound = errors.New("users: not found")
	// ErrEmailTaken はメールアドレスの一意制約に違反したことを表します。
	ErrEmailTaken = errors.New("users: email already registered")
)

// User は登録済みユーザーです。PasswordHash はクライアントへ返しません。
type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Directory はユーザーの保存と検索を行うストアです。
//
// Create は ID と CreatedAt を設定します。メールアドレスの一意性はストア側の
// 制約で保証し、違反時は ErrEmailTaken を返します。
type Directory interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Close(ctx context.Context) error
}
