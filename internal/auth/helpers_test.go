package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/auth-api/internal/users"
)

const testSecret = "test-secret"

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) RecordRejection(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = make(map[string]int)
	}
	r.counts[reason]++
}

func (r *countingRecorder) count(reason string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[reason]
}

// failingDirectory は常にストア障害を返す Directory です。
type failingDirectory struct {
	findErr   error
	createErr error
}

func (d *failingDirectory) Create(ctx context.Context, user *users.User) error {
	return d.createErr
}

func (d *failingDirectory) FindByID(ctx context.Context, id string) (*users.User, error) {
	return nil, d.findErr
}

func (d *failingDirectory) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	return nil, d.findErr
}

func (d *failingDirectory) Close(ctx context.Context) error { return nil }

var errStoreDown = errors.New("store down")

func newTestManager(t *testing.T, dir users.Directory, secret string) (*Manager, *countingRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := &countingRecorder{}
	return &Manager{
		users:      dir,
		hasher:     fastHasher(),
		tokens:     NewTokenIssuer(secret),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		rejections: rec,
	}, rec
}

func newTestRouter(m *Manager) *gin.Engine {
	router := gin.New()
	router.POST("/auth/register", m.Register)
	router.POST("/auth/login", m.Login)
	router.GET("/user/:id", m.RequireToken(), m.GetUser)
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, header http.Header) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(v)
	default:
		data, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var payload map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload), rec.Body.String())
	}
	return rec, payload
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + token}}
}
