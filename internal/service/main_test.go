package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"hoopsnews/internal/auth"
	"hoopsnews/internal/database"
	"hoopsnews/internal/models"
	"hoopsnews/internal/policy"
	"hoopsnews/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires real repositories and services onto an in-memory
// database so transactional behavior is exercised, not stubbed.
type testEnv struct {
	db         *gorm.DB
	users      *UserService
	articles   *ArticleService
	threads    *ThreadService
	comments   *CommentService
	categories *CategoryService
	admin      *AdminService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	userRepo := repository.NewUserRepository(db)
	articleRepo := repository.NewArticleRepository(db)
	threadRepo := repository.NewThreadRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	tagRepo := repository.NewTagRepository(db)

	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	return &testEnv{
		db:         db,
		users:      NewUserService(db, userRepo, articleRepo, tokens),
		articles:   NewArticleService(db, articleRepo, categoryRepo, tagRepo),
		threads:    NewThreadService(db, threadRepo, tagRepo),
		comments:   NewCommentService(db, commentRepo, articleRepo, threadRepo),
		categories: NewCategoryService(db, categoryRepo),
		admin:      NewAdminService(userRepo, articleRepo, threadRepo, commentRepo),
	}
}

// createUser inserts an account directly and returns its identity.
func (e *testEnv) createUser(t *testing.T, username string, admin bool) policy.Identity {
	t.Helper()

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hash,
		IsAdmin:  admin,
		IsActive: true,
	}
	require.NoError(t, e.db.Create(user).Error)
	return policy.Identity{UserID: user.ID, IsAdmin: admin}
}

func (e *testEnv) createArticle(t *testing.T, author policy.Identity, title string, status models.ArticleStatus) *models.Article {
	t.Helper()

	article, err := e.articles.CreateArticle(context.Background(), CreateArticleInput{
		Identity: author,
		Title:    title,
		Content:  "content for " + title,
		Status:   status,
	})
	require.NoError(t, err)
	return article
}

func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}
