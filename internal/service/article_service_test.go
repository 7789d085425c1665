package service

import (
	"context"
	"strings"
	"testing"

	"hoopsnews/internal/models"
	"hoopsnews/internal/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateArticle_SlugFromTitle(t *testing.T) {
	env := setupEnv(t)
	alice := env.createUser(t, "alice", false)

	article := env.createArticle(t, alice, "Hello World", models.ArticleStatusPublished)
	assert.Equal(t, "hello-world", article.Slug)
	assert.NotNil(t, article.PublishedAt)
}

func TestCreateArticle_DuplicateTitleGetsSuffixedSlug(t *testing.T) {
	env := setupEnv(t)
	alice := env.createUser(t, "alice", false)

	first := env.createArticle(t, alice, "Hello World", models.ArticleStatusPublished)
	second := env.createArticle(t, alice, "Hello World", models.ArticleStatusPublished)

	assert.Equal(t, "hello-world", first.Slug)
	assert.NotEqual(t, first.Slug, second.Slug)
	assert.True(t, strings.HasPrefix(second.Slug, "hello-world-"), "got %q", second.Slug)
}

func TestCreateArticle_CallerSuppliedSlugConflicts(t *testing.T) {
	env := setupEnv(t)
	alice := env.createUser(t, "alice", false)
	env.createArticle(t, alice, "Hello World", models.ArticleStatusPublished)

	_, err := env.articles.CreateArticle(context.Background(), CreateArticleInput{
		Identity: alice,
		Title:    "Another Take",
		Content:  "body",
		Slug:     "hello-world",
	})
	assertAppError(t, err, "CONFLICT")
}

func TestCreateArticle_RequiresAuthentication(t *testing.T) {
	env := setupEnv(t)

	_, err := env.articles.CreateArticle(context.Background(), CreateArticleInput{
		Identity: policy.Anonymous,
		Title:    "Anonymous Scoop",
		Content:  "body",
	})
	assertAppError(t, err, "UNAUTHENTICATED")
}

func TestCreateArticle_SanitizesContent(t *testing.T) {
	env := setupEnv(t)
	alice := env.createUser(t, "alice", false)

	article, err := env.articles.CreateArticle(context.Background(), CreateArticleInput{
		Identity: alice,
		Title:    "Injection <script>alert(1)</script>",
		Content:  `<p>fine</p><script>alert(1)</script>`,
	})
	require.NoError(t, err)
	assert.NotContains(t, article.Title, "<script>")
	assert.NotContains(t, article.Content, "<script>")
	assert.Contains(t, article.Content, "<p>fine</p>")
}

func TestGetArticle_DraftHiddenFromOthers(t *testing.T) {
	env := setupEnv(t)
	alice := env.createUser(t, "alice", false)
	bob := env.createUser(t, "bob", false)
	admin := env.createUser(t, "root", true)
	ctx := context.Background()

	draft := env.createArticle(t, alice, "Secret Draft", models.ArticleStatusDraft)
	assert.Nil(t, draft.PublishedAt)

	_, err := env.articles.GetArticle(ctx, draft.Slug, policy.Anonymous)
	assertAppError(t, err, "NOT_FOUND")

	_, err = env.articles.GetArticle(ctx, draft.Slug, bob)
	assertAppError(t, err, "NOT_FOUND")

	got, err := env.articles.GetArticle(ctx, draft.Slug, alice)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)

	_, err = env.articles.GetArticle(ctx, draft.Slug, admin)
	require.NoError(t, err)
}

func TestGetArticle_CountsViews(t *testing.T) {
	env := setupEnv(t)
	alice := env.createUser(t, "alice", false)
	ctx := context.Background()

	article := env.createArticle(t, alice, "View Counter", models.ArticleStatusPublished)

	for i := 0; i < 3; i++ {
		_, err := env.articles.GetArticle(ctx, article.Slug, policy.Anonymous)
		require.NoError(t, err)
	}

	got, err := env.articles.GetArticle(ctx, article.Slug, policy.Anonymous)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.Views)
}

func TestListArticles_AnonymousSeesOnlyPublished(t *testing.T) {
	env := setupEnv(t)
	alice := env.createUser(t, "alice", false)
	ctx := context.Background()

	env.createArticle(t, alice, "Published One", models.ArticleStatusPublished)
	env.createArticle(t, alice, "Published Two", models.ArticleStatusPublished)
	env.createArticle(t, alice, "Hidden Draft", models.ArticleStatusDraft)

	articles, meta, err := env.articles.ListArticles(ctx, ListArticlesInput{Identity: policy.Anonymous})
	require.NoError(t, err)
	assert.Equal(t, int64(2), meta.Total)
	for _, a := range articles {
		assert.Equal(t, models.ArticleStatusPublished, a.Status)
	}
}

func TestListArticles_MetaContract(t *testing.T) {
	env := setupEnv(t)
	alice := env.createUser(t, "alice", false)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		env.createArticle(t, alice, "Story "+strings.Repeat("x", i+1), models.ArticleStatusPublished)
	}

	articles, meta, err := env.articles.ListArticles(ctx, ListArticlesInput{
		Identity: policy.Anonymous,
		Page:     2,
		PerPage:  2,
	})
	require.NoError(t, err)
	assert.Len(t, articles, 2)
	assert.Equal(t, int64(5), meta.Total)
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 2, meta.PerPage)
	assert.Equal(t, 3, meta.TotalPages)
}

func TestListArticles_FilterByTag(t *testing.T) {
	env := setupEnv(t)
	alice := env.createUser(t, "alice", false)
	ctx := context.Background()

	_, err := env.articles.CreateArticle(ctx, CreateArticleInput{
		Identity: alice,
		Title:    "Tagged Story",
		Content:  "body",
		Tags:     []string{"NBA", "Playoffs"},
	})
	require.NoError(t, err)
	env.createArticle(t, alice, "Untagged Story", models.ArticleStatusPublished)

	articles, meta, err := env.articles.ListArticles(ctx, ListArticlesInput{
		Identity: policy.Anonymous,
		Tag:      "nba",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), meta.Total)
	require.Len(t, articles, 1)
	assert.Equal(t, "Tagged Story", articles[0].Title)
}

func TestUpdateArticle_OwnershipEnforced(t *testing.T) {
	env := setupEnv(t)
	alice := env.createUser(t, "alice", false)
	bob := env.createUser(t, "bob", false)
	admin := env.createUser(t, "root", true)
	ctx := context.Background()

	article := env.createArticle(t, alice, "Original Title", models.ArticleStatusPublished)

	newTitle := "Hijacked Title"
	_, err := env.articles.UpdateArticle(ctx, UpdateArticleInput{
		Identity: bob,
		Slug:     article.Slug,
		Title:    &newTitle,
	})
	assertAppError(t, err, "FORBIDDEN")

	adminTitle := "Corrected Title"
	updated, err := env.articles.UpdateArticle(ctx, UpdateArticleInput{
		Identity: admin,
		Slug:     article.Slug,
		Title:    &adminTitle,
	})
	require.NoError(t, err)
	assert.Equal(t, adminTitle, updated.Title)
}

func TestUpdateArticle_PublishedAtSetOnce(t *testing.T) {
	env := setupEnv(t)
	alice := env.createUser(t, "alice", false)
	ctx := context.Background()

	draft := env.createArticle(t, alice, "Slow Burn", models.ArticleStatusDraft)
	require.Nil(t, draft.PublishedAt)

	published := models.ArticleStatusPublished
	first, err := env.articles.UpdateArticle(ctx, UpdateArticleInput{
		Identity: alice,
		Slug:     draft.Slug,
		Status:   &published,
	})
	require.NoError(t, err)
	require.NotNil(t, first.PublishedAt)
	firstPublish := *first.PublishedAt

	// Unpublish and republish; the timestamp must not move.
	draftStatus := models.ArticleStatusDraft
	_, err = env.articles.UpdateArticle(ctx, UpdateArticleInput{
		Identity: alice,
		Slug:     draft.Slug,
		Status:   &draftStatus,
	})
	require.NoError(t, err)

	second, err := env.articles.UpdateArticle(ctx, UpdateArticleInput{
		Identity: alice,
		Slug:     draft.Slug,
		Status:   &published,
	})
	require.NoError(t, err)
	require.NotNil(t, second.PublishedAt)
	assert.True(t, second.PublishedAt.Equal(firstPublish))
}

func TestDeleteArticle_RemovesComments(t *testing.T) {
	env := setupEnv(t)
	alice := env.createUser(t, "alice", false)
	bob := env.createUser(t, "bob", false)
	ctx := context.Background()

	article := env.createArticle(t, alice, "Doomed Story", models.ArticleStatusPublished)
	_, err := env.comments.CreateComment(ctx, CreateCommentInput{
		Identity:  bob,
		ArticleID: &article.ID,
		Content:   "nice read",
	})
	require.NoError(t, err)

	require.NoError(t, env.articles.DeleteArticle(ctx, article.Slug, alice))

	var count int64
	require.NoError(t, env.db.Model(&models.Comment{}).Where("article_id = ?", article.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	_, err = env.articles.GetArticle(ctx, article.Slug, alice)
	assertAppError(t, err, "NOT_FOUND")
}

func TestRelatedArticles_SharedTagsFirst(t *testing.T) {
	env := setupEnv(t)
	alice := env.createUser(t, "alice", false)
	ctx := context.Background()

	base, err := env.articles.CreateArticle(ctx, CreateArticleInput{
		Identity: alice,
		Title:    "Base Story",
		Content:  "body",
		Tags:     []string{"nba", "playoffs"},
	})
	require.NoError(t, err)

	twoShared, err := env.articles.CreateArticle(ctx, CreateArticleInput{
		Identity: alice,
		Title:    "Two Shared",
		Content:  "body",
		Tags:     []string{"nba", "playoffs"},
	})
	require.NoError(t, err)

	oneShared, err := env.articles.CreateArticle(ctx, CreateArticleInput{
		Identity: alice,
		Title:    "One Shared",
		Content:  "body",
		Tags:     []string{"nba"},
	})
	require.NoError(t, err)

	unrelated := env.createArticle(t, alice, "Unrelated", models.ArticleStatusPublished)

	related, err := env.articles.RelatedArticles(ctx, base.Slug, policy.Anonymous)
	require.NoError(t, err)
	require.Len(t, related, 3)
	assert.Equal(t, twoShared.ID, related[0].ID)
	assert.Equal(t, oneShared.ID, related[1].ID)
	assert.Equal(t, unrelated.ID, related[2].ID, "recency backfill fills the remainder")
}
