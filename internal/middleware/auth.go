package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Token issuer and audience checked on every request.
const (
	TokenIssuer   = "agora-api"
	TokenAudience = "agora-client"

	blacklistPrefix = "blacklist:"
)

var (
	// ErrTokenRevoked is returned for a token whose jti was blacklisted by logout.
	ErrTokenRevoked = errors.New("token has been revoked")
	// ErrMissingToken is returned when no bearer token was supplied.
	ErrMissingToken = errors.New("authorization required")
)

// Claims are the JWT claims issued at login.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid subject %q", c.Subject)
	}
	return uint(id), nil
}

// TokenManager issues, verifies and revokes access tokens. Revocation needs Redis;
// without it logout is a no-op on the server side.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	rdb    *redis.Client
	now    func() time.Time
}

// NewTokenManager creates a TokenManager signing with secret.
func NewTokenManager(secret string, ttl time.Duration, rdb *redis.Client) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		rdb:    rdb,
		now:    time.Now,
	}
}

// Issue signs a token for the user.
func (m *TokenManager) Issue(userID uint, username string) (string, error) {
	if len(m.secret) == 0 {
		return "", errors.New("JWT secret not configured")
	}
	now := m.now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse verifies signature, expiry, issuer and audience, then checks the blacklist.
func (m *TokenManager) Parse(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}

	if claims.ID != "" && m.rdb != nil {
		revoked, err := m.rdb.Exists(ctx, blacklistPrefix+claims.ID).Result()
		if err == nil && revoked > 0 {
			return nil, ErrTokenRevoked
		}
	}
	return claims, nil
}

// Revoke blacklists the token's jti until it would have expired anyway.
func (m *TokenManager) Revoke(ctx context.Context, claims *Claims) error {
	if m.rdb == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(m.now())
	}
	if ttl <= 0 {
		return nil
	}
	return m.rdb.Set(ctx, blacklistPrefix+claims.ID, "1", ttl).Err()
}

func bearerToken(c *fiber.Ctx) string {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func (m *TokenManager) authenticate(c *fiber.Ctx, allowQuery bool) (*Claims, error) {
	tokenString := bearerToken(c)
	if tokenString == "" && allowQuery {
		tokenString = c.Query("token")
	}
	if tokenString == "" {
		return nil, ErrMissingToken
	}
	return m.Parse(c.UserContext(), tokenString)
}

func setIdentity(c *fiber.Ctx, claims *Claims) uint {
	userID, _ := claims.UserID()
	c.Locals("userID", userID)
	c.Locals("claims", claims)
	c.SetUserContext(WithUserID(c.UserContext(), userID))
	return userID
}

// AuthRequired rejects requests without a valid bearer token with 401.
func (m *TokenManager) AuthRequired() fiber.Handler {
	return m.authRequired(false)
}

// WebSocketAuthRequired also accepts the token as a ?token= query parameter,
// since browsers cannot set headers on websocket upgrades.
func (m *TokenManager) WebSocketAuthRequired() fiber.Handler {
	return m.authRequired(true)
}

func (m *TokenManager) authRequired(allowQuery bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := m.authenticate(c, allowQuery)
		if err != nil {
			msg := "Invalid or expired token"
			switch {
			case errors.Is(err, ErrMissingToken):
				msg = "Authentication credentials were not provided"
			case errors.Is(err, ErrTokenRevoked):
				msg = "Token has been revoked"
			}
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewAuthenticationRequiredError(msg))
		}
		setIdentity(c, claims)
		return c.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is present and never rejects.
func (m *TokenManager) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claims, err := m.authenticate(c, false); err == nil {
			setIdentity(c, claims)
		}
		return c.Next()
	}
}

// ClaimsFromCtx returns the claims stored by the auth middleware.
func ClaimsFromCtx(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals("claims").(*Claims)
	return claims, ok
}
