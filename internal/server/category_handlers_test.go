package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryEndpoints(t *testing.T) {
	env := setupServer(t)
	alice := env.registerUser("alice")
	admin := env.registerAdmin("root")

	resp, _ := env.request(http.MethodPost, "/api/categories", alice, map[string]any{
		"name": "Game Recaps",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := env.request(http.MethodPost, "/api/categories", admin, map[string]any{
		"name":        "Game Recaps",
		"description": "Nightly recaps",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "%v", body)
	assert.Equal(t, "game-recaps", body["slug"])

	resp, _ = env.request(http.MethodPost, "/api/categories", admin, map[string]any{
		"name": "Game Recaps",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = env.request(http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["categories"].([]any), 1)

	resp, body = env.request(http.MethodGet, "/api/categories/game-recaps", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Game Recaps", body["name"])

	resp, body = env.request(http.MethodPut, "/api/categories/game-recaps", admin, map[string]any{
		"name": "Recaps",
		"slug": "recaps",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "recaps", body["slug"])

	resp, _ = env.request(http.MethodDelete, "/api/categories/recaps", admin, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = env.request(http.MethodGet, "/api/categories/recaps", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCategoryFilterOnArticles(t *testing.T) {
	env := setupServer(t)
	admin := env.registerAdmin("root")

	resp, cat := env.request(http.MethodPost, "/api/categories", admin, map[string]any{"name": "Analysis"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	env.createArticle(admin, "Inside the numbers", map[string]any{"category_id": cat["id"]})
	env.createArticle(admin, "Uncategorized take", nil)

	resp, body := env.request(http.MethodGet, "/api/articles?category=analysis", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	articles := body["articles"].([]any)
	require.Len(t, articles, 1)
	assert.Equal(t, "Inside the numbers", articles[0].(map[string]any)["title"])
}
