package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/auth-api/internal/telemetry"
)

// RequireToken は Authorization: Bearer <token> を検証するミドルウェアを返します。
//
// トークンなし → 401、検証失敗 → 400。成功時はユーザーIDを ContextUserKey に設定します。
func (m *Manager) RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := m.tokens.Verify(bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			if errors.Is(err, ErrMissingToken) {
				m.reject(ReasonMissingToken)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": msgAccessDenied})
				return
			}
			m.reject(ReasonInvalidToken)
			telemetry.LoggerFrom(c, m.logger).Debug("token rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"msg": msgInvalidToken})
			return
		}

		c.Set(ContextUserKey, claims.UserID)
		c.Next()
	}
}

// bearerToken はヘッダーの 2 語目をトークンとして取り出します。
// スキームが Bearer 以外の場合もそのまま返し、検証で不正トークンとして扱います。
func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
