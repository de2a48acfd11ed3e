package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/bcpschool/portal-api/internal/observability"
	"github.com/bcpschool/portal-api/internal/service"
	"github.com/bcpschool/portal-api/internal/utils"
)

// Locals keys populated by the Authenticate middleware.
const (
	LocalUserID   = "user_id"
	LocalUsername = "username"
	LocalUserRole = "user_role"
)

// TokenVerifier resolves a raw bearer token into an identity.
type TokenVerifier interface {
	Verify(raw string) (service.Identity, error)
}

// UserChecker reports whether the account behind a token still exists.
type UserChecker interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

// Authenticate returns the bearer-token guard. It extracts and verifies the
// token, then re-checks per request that the account still exists, so a token
// outstanding after account deletion stops working immediately. On success the
// resolved identity is attached to the request locals.
func Authenticate(tokens TokenVerifier, users UserChecker, logger zerolog.Logger) fiber.Handler {
	authLogger := logger.With().Str("component", "auth_guard").Logger()

	return func(c *fiber.Ctx) error {
		authorization := c.Get(fiber.HeaderAuthorization)
		if authorization == "" {
			observability.AuthFailures().WithLabelValues("missing_token").Inc()
			return utils.SendError(c, fiber.StatusUnauthorized, "no token provided")
		}

		const bearer = "bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), bearer) {
			observability.AuthFailures().WithLabelValues("malformed_header").Inc()
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		raw := strings.TrimSpace(authorization[len(bearer):])
		if raw == "" {
			observability.AuthFailures().WithLabelValues("missing_token").Inc()
			return utils.SendError(c, fiber.StatusUnauthorized, "no token provided")
		}

		identity, err := tokens.Verify(raw)
		if err != nil {
			reason := "invalid_token"
			if errors.Is(err, service.ErrTokenExpired) {
				reason = "expired_token"
			}
			observability.AuthFailures().WithLabelValues(reason).Inc()
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid or expired token")
		}

		exists, err := users.Exists(c.Context(), identity.UserID)
		if err != nil {
			authLogger.Error().Err(err).Uint("user_id", identity.UserID).Msg("user existence check failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
		}
		if !exists {
			observability.AuthFailures().WithLabelValues("user_gone").Inc()
			return utils.SendError(c, fiber.StatusUnauthorized, "user no longer exists")
		}

		c.Locals(LocalUserID, identity.UserID)
		c.Locals(LocalUsername, identity.Username)
		c.Locals(LocalUserRole, identity.Role)

		return c.Next()
	}
}

// IdentityFromCtx reads the identity the guard attached to the request.
// The second return value is false on unauthenticated requests.
func IdentityFromCtx(c *fiber.Ctx) (service.Identity, bool) {
	userID, ok := c.Locals(LocalUserID).(uint)
	if !ok || userID == 0 {
		return service.Identity{}, false
	}

	username, _ := c.Locals(LocalUsername).(string)
	role, _ := c.Locals(LocalUserRole).(string)

	return service.Identity{
		UserID:   userID,
		Username: username,
		Role:     role,
	}, true
}
