package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"hoopsnews/internal/auth"
	"hoopsnews/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUserSource struct {
	users map[uint]*models.User
}

func (s *stubUserSource) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, models.NewNotFoundError("user")
}

func newTestApp(t *testing.T) (*fiber.App, *auth.TokenManager, *stubUserSource) {
	t.Helper()

	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	users := &stubUserSource{users: map[uint]*models.User{
		1: {ID: 1, Username: "alice", IsActive: true},
		2: {ID: 2, Username: "bob", IsAdmin: true, IsActive: true},
		3: {ID: 3, Username: "mallory", IsActive: false},
	}}

	app := fiber.New()
	mw := NewIdentityMiddleware(tokens, users)

	app.Get("/protected", mw.Required(), func(c *fiber.Ctx) error {
		id := IdentityFromCtx(c)
		return c.JSON(fiber.Map{"user_id": id.UserID, "is_admin": id.IsAdmin})
	})
	app.Get("/public", mw.Optional(), func(c *fiber.Ctx) error {
		id := IdentityFromCtx(c)
		return c.JSON(fiber.Map{"authenticated": id.Authenticated()})
	})
	app.Get("/admin", mw.Required(), AdminRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	return app, tokens, users
}

func TestRequired_NoToken(t *testing.T) {
	app, _, _ := newTestApp(t)

	req := httptest.NewRequest("GET", "/protected", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequired_ValidToken(t *testing.T) {
	app, tokens, _ := newTestApp(t)

	token, err := tokens.Issue(1, false)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequired_MalformedHeader(t *testing.T) {
	app, tokens, _ := newTestApp(t)

	token, err := tokens.Issue(1, false)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequired_DeletedUser(t *testing.T) {
	app, tokens, _ := newTestApp(t)

	token, err := tokens.Issue(99, false)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequired_DeactivatedUser(t *testing.T) {
	app, tokens, _ := newTestApp(t)

	token, err := tokens.Issue(3, false)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestOptional_AnonymousAllowed(t *testing.T) {
	app, _, _ := newTestApp(t)

	req := httptest.NewRequest("GET", "/public", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestOptional_InvalidTokenRejected(t *testing.T) {
	app, _, _ := newTestApp(t)

	req := httptest.NewRequest("GET", "/public", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRequired(t *testing.T) {
	app, tokens, _ := newTestApp(t)

	userToken, err := tokens.Issue(1, false)
	require.NoError(t, err)
	adminToken, err := tokens.Issue(2, true)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAdminFlagComesFromUserRecord(t *testing.T) {
	app, tokens, users := newTestApp(t)

	// Token says admin, the user record no longer does.
	users.users[1].IsAdmin = false
	token, err := tokens.Issue(1, true)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
