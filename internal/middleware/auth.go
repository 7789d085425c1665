// Package middleware provides authentication and authorization middleware for the application.
package middleware

import (
	"context"
	"strings"

	"hoopsnews/internal/auth"
	"hoopsnews/internal/models"
	"hoopsnews/internal/policy"

	"github.com/gofiber/fiber/v2"
)

// IdentityKey is the fiber locals key under which the resolved identity is stored.
const IdentityKey = "identity"

// UserSource loads users when resolving token subjects. The repository
// layer satisfies it.
type UserSource interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

// IdentityMiddleware resolves the caller's identity from a bearer token.
type IdentityMiddleware struct {
	tokens *auth.TokenManager
	users  UserSource
}

// NewIdentityMiddleware creates an IdentityMiddleware.
func NewIdentityMiddleware(tokens *auth.TokenManager, users UserSource) *IdentityMiddleware {
	return &IdentityMiddleware{tokens: tokens, users: users}
}

// resolve parses the Authorization header and loads the matching user.
// A missing header yields the anonymous identity with no error; a
// present but invalid token yields an error.
func (m *IdentityMiddleware) resolve(c *fiber.Ctx) (policy.Identity, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return policy.Anonymous, nil
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return policy.Anonymous, models.NewUnauthenticatedError("invalid authorization header format")
	}

	claims, err := m.tokens.Parse(parts[1])
	if err != nil {
		return policy.Anonymous, models.NewUnauthenticatedError("invalid or expired token")
	}

	user, err := m.users.GetUserByID(c.UserContext(), claims.UserID)
	if err != nil || user == nil {
		return policy.Anonymous, models.NewUnauthenticatedError("token subject no longer exists")
	}
	if !user.IsActive {
		return policy.Anonymous, models.NewUnauthenticatedError("account is deactivated")
	}

	// Admin status comes from the user record, not the token, so a
	// demotion takes effect immediately.
	return policy.Identity{UserID: user.ID, IsAdmin: user.IsAdmin}, nil
}

func (m *IdentityMiddleware) store(c *fiber.Ctx, id policy.Identity) {
	c.Locals(IdentityKey, id)
	if id.Authenticated() {
		c.Locals("userID", id.UserID)
		c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, id.UserID))
	}
}

// Required rejects requests without a valid authenticated identity.
func (m *IdentityMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := m.resolve(c)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}
		if !identity.Authenticated() {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("authentication required"))
		}
		m.store(c, identity)
		return c.Next()
	}
}

// Optional resolves an identity when a token is present but lets
// anonymous requests through. An invalid token is still rejected so
// that clients notice expired credentials instead of silently losing
// their privileges.
func (m *IdentityMiddleware) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := m.resolve(c)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}
		m.store(c, identity)
		return c.Next()
	}
}

// AdminRequired rejects any identity that is not an administrator. It
// must run after Required.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := IdentityFromCtx(c)
		if !identity.IsAdmin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("administrator access required"))
		}
		return c.Next()
	}
}

// IdentityFromCtx returns the identity stored by the auth middleware,
// or the anonymous identity when none was resolved.
func IdentityFromCtx(c *fiber.Ctx) policy.Identity {
	if id, ok := c.Locals(IdentityKey).(policy.Identity); ok {
		return id
	}
	return policy.Anonymous
}
