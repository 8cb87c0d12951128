package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	util "github.com/spec-kit/helpdesk-service/pkg/util"
)

// RequireStaff restricts a route to agents and admins.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := UserFromContext(c)
		if !ok {
			return util.NewUnauthorized("authentication required")
		}
		if !user.Role.IsStaff() {
			return util.NewForbidden("staff access required")
		}
		return c.Next()
	}
}

// RequireAdmin restricts a route to admins.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := UserFromContext(c)
		if !ok {
			return util.NewUnauthorized("authentication required")
		}
		if user.Role != domain.RoleAdmin {
			return util.NewForbidden("admin access required")
		}
		return c.Next()
	}
}
