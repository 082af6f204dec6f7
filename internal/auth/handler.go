package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/auth-api/internal/telemetry"
	"github.com/yourusername/auth-api/internal/users"
)

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmpassword"`
}

func (r *registerRequest) validate() error {
	switch {
	case r.Name == "":
		return unprocessable(msgNameRequired)
	case r.Email == "":
		return unprocessable(msgEmailRequired)
	case r.Password == "":
		return unprocessable(msgPassRequired)
	case r.ConfirmPassword == "":
		return unprocessable(msgConfirmRequired)
	case r.Password != r.ConfirmPassword:
		return unprocessable(msgPassMismatch)
	case len(r.Password) > maxPasswordBytes:
		return unprocessable(msgPassTooLong)
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *loginRequest) validate() error {
	switch {
	case r.Email == "":
		return unprocessable(msgEmailRequired)
	case r.Password == "":
		return unprocessable(msgPassRequired)
	}
	return nil
}

// Register は POST /auth/register のハンドラーです。
func (m *Manager) Register(c *gin.Context) {
	var req registerRequest
	if err := bindJSON(c, &req); err != nil {
		m.respondWithError(c, err, msgRegisterFailed)
		return
	}
	if err := req.validate(); err != nil {
		m.respondWithError(c, err, msgRegisterFailed)
		return
	}

	ctx := c.Request.Context()

	// 事前チェックは案内用。最終的な一意性はストアの制約で判定する
	if _, err := m.users.FindByEmail(ctx, req.Email); err == nil {
		m.respondWithError(c, unprocessable(msgEmailTaken), msgRegisterFailed)
		return
	} else if !errors.Is(err, users.ErrNotFound) {
		m.respondWithError(c, err, msgRegisterFailed)
		return
	}

	digest, err := m.hasher.Hash(ctx, req.Password)
	if err != nil {
		m.respondWithError(c, err, msgRegisterFailed)
		return
	}

	user := &users.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: digest,
	}
	if err := m.users.Create(ctx, user); err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			err = unprocessable(msgEmailTaken)
		}
		m.respondWithError(c, err, msgRegisterFailed)
		return
	}

	telemetry.LoggerFrom(c, m.logger).Info("user registered", "user_id", user.ID)
	c.JSON(http.StatusCreated, gin.H{"msg": msgUserCreated})
}

// Login は POST /auth/login のハンドラーです。
func (m *Manager) Login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		m.respondWithError(c, err, msgServerError)
		return
	}
	if err := req.validate(); err != nil {
		m.respondWithError(c, err, msgServerError)
		return
	}

	ctx := c.Request.Context()

	user, err := m.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			m.reject(ReasonBadCredentials)
			err = unprocessable(msgUserNotFound)
		}
		m.respondWithError(c, err, msgServerError)
		return
	}

	ok, err := m.hasher.Verify(ctx, req.Password, user.PasswordHash)
	if err != nil {
		m.respondWithError(c, fmt.Errorf("verify password: %w", err), msgServerError)
		return
	}
	if !ok {
		m.reject(ReasonBadCredentials)
		m.respondWithError(c, unprocessable(msgWrongPassword), msgServerError)
		return
	}

	token, err := m.tokens.Issue(user.ID)
	if err != nil {
		m.respondWithError(c, err, msgServerError)
		return
	}

	telemetry.LoggerFrom(c, m.logger).Info("user logged in", "user_id", user.ID)
	c.JSON(http.StatusOK, gin.H{
		"msg":   msgLoggedIn,
		"token": token,
	})
}

// GetUser は GET /user/:id のハンドラーです。パスワードは返しません。
// トークンの利用者と :id が異なっていても参照を許可します。
func (m *Manager) GetUser(c *gin.Context) {
	id := c.Param("id")
	requester, _ := UserIDFromContext(c)
	telemetry.LoggerFrom(c, m.logger).Debug("user lookup", "user_id", id, "requested_by", requester)

	user, err := m.users.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			err = &RequestError{Status: http.StatusNotFound, Message: msgUserNotFound}
		}
		m.respondWithError(c, err, msgServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
