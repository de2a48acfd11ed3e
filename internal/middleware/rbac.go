package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/bcpschool/portal-api/internal/observability"
	"github.com/bcpschool/portal-api/internal/utils"
)

// RequireRole ensures that the authenticated user possesses one of the allowed
// roles. Routes without a role restriction simply omit this middleware.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		normalized := strings.ToLower(strings.TrimSpace(role))
		if normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalUserRole).(string)
		if _, ok := allowed[strings.ToLower(strings.TrimSpace(role))]; !ok {
			observability.AuthFailures().WithLabelValues("forbidden_role").Inc()
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}
