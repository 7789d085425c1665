package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"hoopsnews/internal/config"
	"hoopsnews/internal/database"
	"hoopsnews/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// apiEnv runs the full handler stack against an in-memory database.
type apiEnv struct {
	t   *testing.T
	db  *gorm.DB
	app *fiber.App
}

func setupServer(t *testing.T) *apiEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		Port:            "0",
		Env:             "test",
		JWTSecret:       "test-secret",
		TokenTTLSeconds: 3600,
	}
	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	return &apiEnv{t: t, db: db, app: srv.App()}
}

func pathID(base string, id int) string {
	return fmt.Sprintf("%s/%d", base, id)
}

// request performs a JSON request against the app and decodes the response
// body into a generic map.
func (e *apiEnv) request(method, path, token string, body any) (*http.Response, map[string]any) {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)

	decoded := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	_ = resp.Body.Close()
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

// registerUser creates an account through the API and returns its token.
func (e *apiEnv) registerUser(username string) string {
	e.t.Helper()

	resp, body := e.request(http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(e.t, http.StatusCreated, resp.StatusCode, "register %s: %v", username, body)

	token, _ := body["token"].(string)
	require.NotEmpty(e.t, token)
	return token
}

// registerAdmin creates an account and flips its admin flag directly.
func (e *apiEnv) registerAdmin(username string) string {
	e.t.Helper()

	token := e.registerUser(username)
	err := e.db.Model(&models.User{}).Where("username = ?", username).UpdateColumn("is_admin", true).Error
	require.NoError(e.t, err)
	return token
}

// createArticle publishes an article through the API and returns its slug.
func (e *apiEnv) createArticle(token, title string, extra map[string]any) (string, map[string]any) {
	e.t.Helper()

	payload := map[string]any{
		"title":   title,
		"content": fmt.Sprintf("content for %s", title),
	}
	for k, v := range extra {
		payload[k] = v
	}

	resp, body := e.request(http.MethodPost, "/api/articles", token, payload)
	require.Equal(e.t, http.StatusCreated, resp.StatusCode, "create article: %v", body)

	slug, _ := body["slug"].(string)
	require.NotEmpty(e.t, slug)
	return slug, body
}
