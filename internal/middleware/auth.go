// Package middleware provides authentication, logging, metrics and tracing middleware for the application.
package middleware

import (
	"context"
	"strings"

	"proconnect/internal/models"

	"github.com/gofiber/fiber/v2"
)

// TokenVerifier resolves a bearer token to the user ID it was issued for.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setUser(c *fiber.Ctx, userID string) {
	c.Locals("userID", userID)
	// Sync to UserContext for logging and downstream services
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
}

// AuthRequired rejects requests without a valid bearer token and stores the
// caller's user ID in c.Locals("userID").
func AuthRequired(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			RecordAppError(models.CodeUnauthorized, fiber.StatusUnauthorized)
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		token, ok := bearerToken(c)
		if !ok {
			RecordAppError(models.CodeUnauthorized, fiber.StatusUnauthorized)
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid authorization header format"))
		}

		userID, err := verifier.Verify(token)
		if err != nil {
			RecordAppError(models.CodeAuth, fiber.StatusUnauthorized)
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}

		setUser(c, userID)
		return c.Next()
	}
}

// OptionalAuth stores the caller's user ID when a valid bearer token is
// present and otherwise lets the request through anonymously.
func OptionalAuth(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token, ok := bearerToken(c); ok {
			if userID, err := verifier.Verify(token); err == nil {
				setUser(c, userID)
			}
		}
		return c.Next()
	}
}

// UserID returns the authenticated caller's ID, if any.
func UserID(c *fiber.Ctx) (string, bool) {
	id, ok := c.Locals("userID").(string)
	return id, ok && id != ""
}
