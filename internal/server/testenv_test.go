package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"agora/internal/config"
	"agora/internal/models"
	"agora/internal/service"
	"agora/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret-key-12345678901234567890"

type testEnv struct {
	t   *testing.T
	srv *Server
	app *fiber.App
	db  *gorm.DB
	mr  *miniredis.Miniredis
}

func testConfig() *config.Config {
	return &config.Config{
		Env:            "test",
		Port:           "0",
		JWTSecret:      testSecret,
		JWTTTLHours:    1,
		AllowedOrigins: "http://localhost:5173",
		FeatureFlags:   "notifications_read_on_fetch=on",
		RateLimitAuth:  100,
		RateLimitWrite: 100,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	srv, err := NewServerWithDeps(testConfig(), db, rdb)
	require.NoError(t, err)
	return &testEnv{t: t, srv: srv, app: srv.NewApp(), db: db, mr: mr}
}

// user creates an account and returns it with a valid token.
func (e *testEnv) user(name string) (*models.User, string) {
	e.t.Helper()
	u := testutil.CreateUser(e.t, e.db, name)
	token, err := e.srv.tokens.Issue(u.ID, u.Username)
	require.NoError(e.t, err)
	return u, token
}

// grant puts the user into one of the default permission groups.
func (e *testEnv) grant(u *models.User, group string) {
	e.t.Helper()
	ctx := e.t.Context()
	require.NoError(e.t, e.srv.permissionService.SyncGroups(ctx, service.DefaultGroups()))
	require.NoError(e.t, e.srv.permissionService.AddMember(ctx, group, u.ID))
}

// do sends a request and returns the status and raw body.
func (e *testEnv) do(method, path string, payload any, token string) (int, []byte) {
	e.t.Helper()
	var reader io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(e.t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	return resp.StatusCode, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}
