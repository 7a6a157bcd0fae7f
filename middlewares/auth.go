package middlewares

import (
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"taskboard-backend/apperrors"
	"taskboard-backend/config"
	"taskboard-backend/models"
	"taskboard-backend/policy"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const (
	authHeader   = "Authorization"
	bearerPrefix = "Bearer "

	identityLocal = "identity"

	tokenTypeRefresh = "refresh"
)

// Claims is our custom JWT payload: subject=userID plus the attributes the
// policy layer evaluates.
type Claims struct {
	Role         string           `json:"role"`
	Premium      bool             `json:"premium,omitempty"`
	PremiumUntil *jwt.NumericDate `json:"premium_until,omitempty"`
	TokenType    string           `json:"typ,omitempty"`
	jwt.RegisteredClaims
}

var (
	secretOnce sync.Once
	jwtSecret  []byte
	secretErr  error
)

func loadJWTSecret() error {
	secretOnce.Do(func() {
		// Prefer JWT_SECRET_KEY, fallback to JWT_SECRET
		sec := os.Getenv("JWT_SECRET_KEY")
		if strings.TrimSpace(sec) == "" {
			sec = os.Getenv("JWT_SECRET")
		}
		if strings.TrimSpace(sec) == "" {
			secretErr = errors.New("JWT secret not configured (set JWT_SECRET_KEY or JWT_SECRET)")
			return
		}
		jwtSecret = []byte(sec)
	})
	return secretErr
}

// ResolveIdentity derives an optional caller identity from the Authorization
// header and stashes it in c.Locals. It never fails the request: absent,
// malformed and expired tokens all degrade to anonymous. Routes that require
// authentication layer RequireAuth on top.
func ResolveIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := loadJWTSecret(); err != nil {
			return c.Next() // no secret configured; everyone is anonymous
		}

		h := c.Get(authHeader)
		if h == "" || !strings.HasPrefix(strings.ToLower(h), strings.ToLower(bearerPrefix)) {
			return c.Next()
		}
		raw := strings.TrimSpace(h[len(bearerPrefix):])
		if raw == "" {
			return c.Next()
		}

		claims, err := parseToken(raw)
		if err != nil || claims.TokenType == tokenTypeRefresh {
			// Refresh tokens are not bearer credentials.
			return c.Next()
		}

		ident := &policy.Identity{
			ID:        claims.Subject,
			Role:      models.Role(claims.Role),
			IsPremium: claims.Premium,
		}
		if !ident.Role.Valid() || ident.ID == "" {
			return c.Next()
		}
		if claims.PremiumUntil != nil {
			t := claims.PremiumUntil.Time
			ident.SubscriptionExpiry = &t
		}
		c.Locals(identityLocal, ident)
		return c.Next()
	}
}

// RequireAuth rejects requests for which ResolveIdentity produced no identity.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if IdentityFromCtx(c) == nil {
			if c.Get(authHeader) != "" {
				return apperrors.AuthInvalid()
			}
			return apperrors.AuthMissing()
		}
		return c.Next()
	}
}

// IdentityFromCtx returns the resolved caller identity, or nil for anonymous.
func IdentityFromCtx(c *fiber.Ctx) *policy.Identity {
	ident, _ := c.Locals(identityLocal).(*policy.Identity)
	return ident
}

// CallerScope is the identifier used for idempotency scoping and rate-limit
// bucketing: user:<id> for authenticated callers, anon:<addr> otherwise.
func CallerScope(c *fiber.Ctx) string {
	if ident := IdentityFromCtx(c); ident != nil {
		return "user:" + ident.ID
	}
	return "anon:" + c.IP()
}

func parseToken(raw string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	var claims Claims
	token, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, errors.New("token missing subject")
	}
	return &claims, nil
}

// GenerateTokenPair signs an HS256 access token carrying the user's policy
// attributes, plus a refresh token that is only accepted by the refresh
// endpoint.
func GenerateTokenPair(user models.User) (access string, refresh string, err error) {
	if err := loadJWTSecret(); err != nil {
		return "", "", err
	}
	now := time.Now()
	accessTTL := time.Duration(config.Int("ACCESS_TOKEN_TTL_MINUTES", 60)) * time.Minute
	refreshTTL := time.Duration(config.Int("REFRESH_TOKEN_TTL_HOURS", 24*7)) * time.Hour

	accessClaims := &Claims{
		Role:    string(user.Role),
		Premium: user.IsPremium,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Id,
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	if user.SubscriptionExpiry != nil {
		accessClaims.PremiumUntil = jwt.NewNumericDate(*user.SubscriptionExpiry)
	}
	access, err = jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(jwtSecret)
	if err != nil {
		return "", "", err
	}

	refreshClaims := &Claims{
		TokenType: tokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Id,
			ExpiresAt: jwt.NewNumericDate(now.Add(refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	refresh, err = jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(jwtSecret)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// ParseRefreshToken validates a refresh token and returns the user id it was
// minted for. Access tokens presented here are rejected.
func ParseRefreshToken(raw string) (string, error) {
	if err := loadJWTSecret(); err != nil {
		return "", err
	}
	claims, err := parseToken(raw)
	if err != nil {
		return "", err
	}
	if claims.TokenType != tokenTypeRefresh {
		return "", errors.New("not a refresh token")
	}
	return claims.Subject, nil
}
