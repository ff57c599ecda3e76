package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"taskhub/models"
	"taskhub/utils"
)

// UserLookup loads the account a token refers to
type UserLookup interface {
	ByID(ctx context.Context, id uint) (*models.User, error)
}

// TokenFrom reads the access token from the Authorization header, falling
// back to the access_token cookie.
func TokenFrom(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", false
		}
		return parts[1], parts[1] != ""
	}
	token := c.Cookies("access_token")
	return token, token != ""
}

func Protected(users UserLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := TokenFrom(c)
		if !ok {
			if c.Get("Authorization") != "" {
				return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid authorization format")
			}
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Authorization required")
		}

		claims, err := utils.ParseJWTToken(token)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}

		user, err := users.ByID(c.UserContext(), claims.UserID)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "User not found")
		}

		c.Locals("user", user)
		c.Locals("userID", user.ID)
		return c.Next()
	}
}

// UserID returns the id stored by Protected, or 0
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}
