// Package middleware provides the Fiber request middleware: JWT
// validation and role gating for the protected API surface.
package middleware

import (
	"log"
	"strings"

	"kopa/internal/models"
	"kopa/internal/services/auth"

	"github.com/gofiber/fiber/v2"
)

// Auth validates the bearer token and stores the claims on the request
// context under "claims".
func Auth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
		}
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization format"})
		}

		claims, err := auth.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			log.Printf("token rejected: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}

		c.Locals("claims", claims)
		return c.Next()
	}
}

// RequireRole gates a route group on a minimum role.
func RequireRole(required string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*models.UserClaims)
		if !ok || claims == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		if !hasRequiredRole(claims.Role, required) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Insufficient permissions"})
		}
		return c.Next()
	}
}

// Claims extracts the validated claims from the request context.
func Claims(c *fiber.Ctx) *models.UserClaims {
	claims, _ := c.Locals("claims").(*models.UserClaims)
	return claims
}

func hasRequiredRole(userRole, required string) bool {
	hierarchy := map[string]int{
		models.RoleUser:       1,
		models.RoleMerchant:   2,
		models.RoleThirdParty: 3,
		models.RoleAdmin:      4,
	}
	// Merchants can hit user endpoints.
	if userRole == models.RoleMerchant && required == models.RoleUser {
		return true
	}
	return hierarchy[userRole] >= hierarchy[required]
}
