package server

import (
	"net/http"
	"testing"

	"hoopsnews/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminStatsEndpoint(t *testing.T) {
	env := setupServer(t)
	alice := env.registerUser("alice")
	admin := env.registerAdmin("carol")

	hot, _ := env.createArticle(alice, "Hot Story", nil)
	warm, _ := env.createArticle(alice, "Warm Story", nil)
	cold, _ := env.createArticle(alice, "Cold Story", nil)
	for slug, views := range map[string]int64{hot: 10, warm: 5, cold: 1} {
		err := env.db.Model(&models.Article{}).Where("slug = ?", slug).UpdateColumn("views", views).Error
		require.NoError(t, err)
	}

	// Non-admins are turned away.
	resp, _ := env.request(http.MethodGet, "/api/admin/stats", alice, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = env.request(http.MethodGet, "/api/admin/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := env.request(http.MethodGet, "/api/admin/stats", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, float64(2), body["totalUsers"])
	assert.Equal(t, float64(3), body["totalArticles"])
	assert.Equal(t, float64(16), body["totalViews"])

	popular, ok := body["popularArticles"].([]any)
	require.True(t, ok)
	require.Len(t, popular, 3)
	views := make([]float64, 0, 3)
	for _, p := range popular {
		views = append(views, p.(map[string]any)["views"].(float64))
	}
	assert.Equal(t, []float64{10, 5, 1}, views)
}

func TestAdminModerationEndpoints(t *testing.T) {
	env := setupServer(t)
	alice := env.registerUser("alice")
	admin := env.registerAdmin("carol")

	slug, _ := env.createArticle(alice, "Commented Story", nil)
	resp, comment := env.request(http.MethodPost, "/api/articles/"+slug+"/comments", alice, map[string]any{
		"content": "great read",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	commentID := int(comment["id"].(float64))

	// Reject, twice: the second flip is a no-op, not an error.
	path := "/api/admin/comments"
	resp, body := env.request(http.MethodPost, pathID(path, commentID)+"/reject", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["is_approved"])
	resp, body = env.request(http.MethodPost, pathID(path, commentID)+"/reject", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["is_approved"])

	// Rejected comments vanish from the public listing.
	resp, body = env.request(http.MethodGet, "/api/articles/"+slug+"/comments", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["comments"])

	// Moderation requires admin.
	resp, _ = env.request(http.MethodPost, pathID(path, commentID)+"/approve", alice, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = env.request(http.MethodPost, pathID(path, commentID)+"/approve", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["is_approved"])

	// The moderation queue filter.
	resp, body = env.request(http.MethodGet, "/api/admin/comments?approved=true", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	comments := body["comments"].([]any)
	assert.Len(t, comments, 1)
}

func TestAdminUserManagement(t *testing.T) {
	env := setupServer(t)
	alice := env.registerUser("alice")
	admin := env.registerAdmin("carol")

	var target models.User
	require.NoError(t, env.db.Where("username = ?", "alice").First(&target).Error)

	resp, body := env.request(http.MethodPost, pathID("/api/admin/users", int(target.ID))+"/deactivate", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["is_active"])

	// A deactivated account's token stops working.
	resp, _ = env.request(http.MethodGet, "/api/auth/me", alice, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = env.request(http.MethodPost, pathID("/api/admin/users", int(target.ID))+"/activate", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["is_active"])

	resp, _ = env.request(http.MethodDelete, pathID("/api/admin/users", int(target.ID)), admin, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = env.request(http.MethodGet, "/api/users/profile/alice", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminListUsersEndpoint(t *testing.T) {
	env := setupServer(t)
	env.registerUser("alice")
	env.registerUser("bob")
	admin := env.registerAdmin("carol")

	resp, body := env.request(http.MethodGet, "/api/admin/users?search=ali", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	users := body["users"].([]any)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].(map[string]any)["username"])

	meta := body["meta"].(map[string]any)
	assert.Equal(t, float64(1), meta["total"])
}
