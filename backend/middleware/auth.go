package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Aqib6220/lms/backend/config"
	"github.com/Aqib6220/lms/backend/utils"
)

const (
	LocalUserID   = "userID"
	LocalUserRole = "userRole"
)

// Protect verifies the bearer credential and, when roles are given, requires
// the embedded role claim to be one of them (case-insensitively). The decoded
// identity is attached to the request context for downstream handlers.
func Protect(cfg *config.Config, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return utils.Fail(c, fiber.StatusUnauthorized, "Access denied. No token provided.")
		}

		claims, err := utils.ValidateToken(tokenString, cfg)
		if err != nil {
			return utils.Fail(c, fiber.StatusUnauthorized, "Invalid token")
		}

		if len(roles) > 0 {
			userRole := strings.ToLower(claims.Role)
			allowed := false
			for _, r := range roles {
				if strings.ToLower(r) == userRole {
					allowed = true
					break
				}
			}
			if !allowed {
				return utils.Fail(c, fiber.StatusForbidden, "Forbidden: You do not have access.")
			}
		}

		c.Locals(LocalUserID, claims.ID)
		c.Locals(LocalUserRole, claims.Role)
		return c.Next()
	}
}

// OptionalAuth attaches the identity when a valid credential is presented
// but never rejects the request. Used on routes readable by anonymous
// callers, where handlers decide visibility themselves.
func OptionalAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenString := bearerToken(c); tokenString != "" {
			if claims, err := utils.ValidateToken(tokenString, cfg); err == nil {
				c.Locals(LocalUserID, claims.ID)
				c.Locals(LocalUserRole, claims.Role)
			}
		}
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get("Authorization")
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}

// UserID returns the authenticated caller's id, or "" for anonymous.
func UserID(c *fiber.Ctx) string {
	if v, ok := c.Locals(LocalUserID).(string); ok {
		return v
	}
	return ""
}

// UserRole returns the authenticated caller's role, or "" for anonymous.
func UserRole(c *fiber.Ctx) string {
	if v, ok := c.Locals(LocalUserRole).(string); ok {
		return v
	}
	return ""
}
