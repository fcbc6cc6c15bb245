package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func signToken(t *testing.T, userID uint, issuer, audience string, exp time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": issuer,
		"aud": audience,
		"exp": time.Now().Add(exp).Unix(),
		"jti": "test-jti",
	}
	str, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return str
}

func TestTokenManager_AuthRequired(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour, nil)
	app := fiber.New()
	app.Get("/protected", tm.AuthRequired(), func(c *fiber.Ctx) error {
		uid, ok := UserIDFromContext(c.UserContext())
		require.True(t, ok)
		return c.JSON(fiber.Map{"userID": uid, "local": c.Locals("userID")})
	})

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{"Valid Token", "Bearer " + signToken(t, 123, TokenIssuer, TokenAudience, time.Hour), http.StatusOK},
		{"Expired Token", "Bearer " + signToken(t, 123, TokenIssuer, TokenAudience, -time.Hour), http.StatusUnauthorized},
		{"Invalid Issuer", "Bearer " + signToken(t, 123, "wrong-issuer", TokenAudience, time.Hour), http.StatusUnauthorized},
		{"Invalid Audience", "Bearer " + signToken(t, 123, TokenIssuer, "wrong-audience", time.Hour), http.StatusUnauthorized},
		{"Zero Subject", "Bearer " + signToken(t, 0, TokenIssuer, TokenAudience, time.Hour), http.StatusUnauthorized},
		{"Missing Header", "", http.StatusUnauthorized},
		{"Malformed Bearer Format", "Token abc", http.StatusUnauthorized},
		{"Garbage Token", "Bearer not-a-jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestTokenManager_IssueAndParse(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour, nil)

	token, err := tm.Issue(42, "alice")
	require.NoError(t, err)

	claims, err := tm.Parse(context.Background(), token)
	require.NoError(t, err)
	uid, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), uid)
	assert.Equal(t, "alice", claims.Username)
	assert.NotEmpty(t, claims.ID)

	other := NewTokenManager("another-secret-another-secret-another", time.Hour, nil)
	_, err = other.Parse(context.Background(), token)
	assert.Error(t, err)
}

func TestTokenManager_RevokeBlacklistsJTI(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	tm := NewTokenManager(testSecret, time.Hour, rdb)
	token, err := tm.Issue(7, "bob")
	require.NoError(t, err)

	claims, err := tm.Parse(context.Background(), token)
	require.NoError(t, err)
	require.NoError(t, tm.Revoke(context.Background(), claims))

	assert.True(t, mr.Exists(blacklistPrefix+claims.ID))
	ttl := mr.TTL(blacklistPrefix + claims.ID)
	assert.Greater(t, ttl, 59*time.Minute)

	_, err = tm.Parse(context.Background(), token)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestTokenManager_OptionalAuth(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour, nil)
	app := fiber.New()
	app.Get("/maybe", tm.OptionalAuth(), func(c *fiber.Ctx) error {
		uid, _ := c.Locals("userID").(uint)
		return c.SendString(strconv.FormatUint(uint64(uid), 10))
	})

	req := httptest.NewRequest(http.MethodGet, "/maybe", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/maybe", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTokenManager_WebSocketAcceptsQueryToken(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour, nil)
	app := fiber.New()
	app.Get("/ws", tm.WebSocketAuthRequired(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/api", tm.AuthRequired(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	token := signToken(t, 5, TokenIssuer, TokenAudience, time.Hour)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api?token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
