// Package auth はパスワードのハッシュ化、セッショントークンの発行・検証、
// およびそれらを使った認証ハンドラーとミドルウェアを提供します。
package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/auth-api/internal/config"
	"github.com/yourusername/auth-api/internal/telemetry"
	"github.com/yourusername/auth-api/internal/users"
)

// ContextUserKey は、検証済みトークンのユーザーIDをハンドラー間で共有するためのキーです。
const ContextUserKey = "auth.user"

// 認証拒否の理由（メトリクスのラベル）
const (
	ReasonMissingToken   = "missing_token"
	ReasonInvalidToken   = "invalid_token"
	ReasonBadCredentials = "bad_credentials"
)

// RejectionRecorder は認証拒否を記録します。
type RejectionRecorder interface {
	RecordRejection(reason string)
}

// Manager は認証処理に必要な依存をまとめた構造体です。
type Manager struct {
	users      users.Directory
	hasher     *Hasher
	tokens     *TokenIssuer
	logger     *slog.Logger
	rejections RejectionRecorder
}

// NewManager は認証マネージャーを作成します。rejections は nil でも構いません。
func NewManager(cfg *config.Config, dir users.Directory, logger *slog.Logger, rejections RejectionRecorder) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		users:      dir,
		hasher:     NewHasher(cfg.HashConcurrency),
		tokens:     NewTokenIssuer(cfg.JWTSecret),
		logger:     logger,
		rejections: rejections,
	}
}

// UserIDFromContext は RequireToken が検証したユーザーIDを返します。
func UserIDFromContext(c *gin.Context) (string, bool) {
	id := c.GetString(ContextUserKey)
	return id, id != ""
}

func (m *Manager) reject(reason string) {
	if m.rejections != nil {
		m.rejections.RecordRejection(reason)
	}
}

// bindJSON はリクエストボディを読み込みます。空のボディは {} として扱います。
func bindJSON(c *gin.Context, dst any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return &RequestError{Status: http.StatusBadRequest, Message: msgInvalidJSON}
	}
	return nil
}

// respondWithError はエラーをレスポンスに変換します。
// RequestError 以外はサーバー側でログに残し、internalMsg だけを返します。
func (m *Manager) respondWithError(c *gin.Context, err error, internalMsg string) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		c.JSON(reqErr.Status, gin.H{"msg": reqErr.Message})
		return
	}
	telemetry.LoggerFrom(c, m.logger).Error("request failed",
		"path", c.Request.URL.Path,
		"error", err,
	)
	c.JSON(http.StatusInternalServerError, gin.H{"msg": internalMsg})
}
