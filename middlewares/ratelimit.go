package middlewares

import (
	"strconv"

	"taskboard-backend/apperrors"
	"taskboard-backend/config"
	"taskboard-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimit is a fixed-window per-caller limiter with role-aware quotas.
// Buckets are keyed user:<id> for authenticated callers and anon:<ip>
// otherwise, so it must run after ResolveIdentity. One limiter instance is
// built per role at startup and the request is dispatched to its role's
// instance; a caller always lands on the same instance, so its counter state
// is coherent. On allowed requests the limiter exposes
// X-RateLimit-Limit/Remaining/Reset; on rejection those three plus
// Retry-After are set before the RATE_LIMITED error is rendered.
func RateLimit() fiber.Handler {
	window := config.RateLimitWindow()
	quota := func(max int) fiber.Handler {
		return limiter.New(limiter.Config{
			Expiration:   window,
			Max:          max,
			KeyGenerator: CallerScope,
			LimitReached: func(c *fiber.Ctx) error {
				// The limiter has already set Retry-After with the seconds
				// to the window boundary; mirror the metadata headers it
				// only emits on allowed requests.
				retry := c.GetRespHeader(fiber.HeaderRetryAfter)
				c.Set("X-RateLimit-Limit", strconv.Itoa(max))
				c.Set("X-RateLimit-Remaining", "0")
				c.Set("X-RateLimit-Reset", retry)
				return apperrors.RateLimited().WithDetails(fiber.Map{
					"retry_after_seconds": retry,
				})
			},
		})
	}

	anon := quota(config.Int("RATE_LIMIT_ANON", 30))
	user := quota(config.Int("RATE_LIMIT_USER", 60))
	premium := quota(config.Int("RATE_LIMIT_PREMIUM", 120))
	admin := quota(config.Int("RATE_LIMIT_ADMIN", 1000))

	return func(c *fiber.Ctx) error {
		ident := IdentityFromCtx(c)
		switch {
		case ident == nil:
			return anon(c)
		case ident.Role == models.RoleAdmin:
			return admin(c)
		case ident.Role == models.RolePremium || ident.IsPremium:
			return premium(c)
		default:
			return user(c)
		}
	}
}
