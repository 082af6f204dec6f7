package users

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// PostgresDirectory はユーザーを PostgreSQL の users テーブルに保存します。
type PostgresDirectory struct {
	db *sql.DB
}

// OpenPostgres は接続を開き、疎通確認とマイグレーションを行います。
func OpenPostgres(ctx context.Context, dsn string) (*PostgresDirectory, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return NewPostgresDirectory(db), nil
}

// Migrate は埋め込みのマイグレーションを適用します。
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}

// NewPostgresDirectory は既存の接続から PostgresDirectory を作成します。
func NewPostgresDirectory(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

// Create はユーザーを挿入します。email の UNIQUE 制約違反は ErrEmailTaken になります。
func (d *PostgresDirectory) Create(ctx context.Context, user *User) error {
	query :=
		`INSERT INTO users (id, name, email, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`

	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := d.db.ExecContext(ctx, query, id, user.Name, user.Email, user.PasswordHash, now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("db error: %w", err)
	}

	user.ID = id
	user.CreatedAt = now
	return nil
}

// FindByID は ID でユーザーを検索します。UUID として不正な ID は ErrNotFound です。
func (d *PostgresDirectory) FindByID(ctx context.Context, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	query :=
		`SELECT id, name, email, password_hash, created_at FROM users
		 WHERE id = $1`
	return d.scanOne(ctx, query, id)
}

// FindByEmail はメールアドレスでユーザーを検索します。
func (d *PostgresDirectory) FindByEmail(ctx context.Context, email string) (*User, error) {
	query :=
		`SELECT id, name, email, password_hash, created_at FROM users
		 WHERE email = $1`
	return d.scanOne(ctx, query, email)
}

// Close は接続プールを閉じます。
func (d *PostgresDirectory) Close(ctx context.Context) error {
	return d.db.Close()
}

func (d *PostgresDirectory) scanOne(ctx context.Context, query string, arg any) (*User, error) {
	u := &User{}
	err := d.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}
