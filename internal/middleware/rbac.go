package middleware

import (
	"github.com/gofiber/fiber/v2"

	"khrental/internal/domain"
)

func RequireAnyRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := MustGetActor(c)
		if err != nil {
			return err
		}

		if !actor.HasRole(roles...) {
			return Forbidden("Insufficient permissions for this operation")
		}

		return c.Next()
	}
}

func RequireAdmin() fiber.Handler {
	return RequireAnyRole(domain.RoleAdmin)
}

// RequireStaff admits admins and both staff roles.
func RequireStaff() fiber.Handler {
	return RequireAnyRole(domain.RoleAdmin, domain.RoleStaff, domain.RoleMaintenance)
}
