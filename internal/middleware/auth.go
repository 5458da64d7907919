package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"khrental/internal/domain"
	"khrental/internal/service/auth"
)

const ActorContextKey = "actor"

func AuthRequired(authService auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return Unauthorized("Missing authorization header")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return Unauthorized("Invalid authorization header format")
		}

		actor, err := authService.Authenticate(c.UserContext(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrInvalidToken):
				return Unauthorized("Invalid or expired token")
			case errors.Is(err, auth.ErrInactiveUser):
				return Unauthorized("Account is inactive")
			}
			return err
		}

		c.Locals(ActorContextKey, actor)
		return c.Next()
	}
}

func GetActor(c *fiber.Ctx) (domain.Actor, bool) {
	actor, ok := c.Locals(ActorContextKey).(domain.Actor)
	return actor, ok
}

// MustGetActor is for handlers mounted behind AuthRequired.
func MustGetActor(c *fiber.Ctx) (domain.Actor, error) {
	actor, ok := GetActor(c)
	if !ok || actor.ID == uuid.Nil {
		return domain.Actor{}, Unauthorized("User not authenticated")
	}
	return actor, nil
}
