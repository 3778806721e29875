package middleware

import (
	"strings"

	"go-product-cms/internal/repository"
	"go-product-cms/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth validates the bearer token, confirms the account still exists
// and is active, and sets the caller's identity in the request context.
func RequireAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := claimsFromHeader(c, userRepo)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": err.Error()})
		}

		setIdentity(c, claims)
		return c.Next()
	}
}

// OptionalAuth resolves the caller's identity when a valid token is present
// but lets anonymous requests through. Used on routes that are public with
// restricted visibility, like fetching a single product.
func OptionalAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claims, err := claimsFromHeader(c, userRepo); err == nil {
			setIdentity(c, claims)
		}
		return c.Next()
	}
}

func claimsFromHeader(c *fiber.Ctx, userRepo repository.UserRepository) (*jwt.Claims, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, jwt.ErrMissingToken
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, jwt.ErrInvalidToken
	}

	claims, err := jwt.ValidateToken(parts[1])
	if err != nil {
		return nil, jwt.ErrInvalidToken
	}

	user, err := userRepo.FindByID(claims.UserID)
	if err != nil || !user.IsActive {
		return nil, jwt.ErrInvalidToken
	}

	return claims, nil
}

func setIdentity(c *fiber.Ctx, claims *jwt.Claims) {
	c.Locals("user_id", claims.UserID.String())
	c.Locals("user_email", claims.Email)
	c.Locals("user_name", claims.Name)
}
