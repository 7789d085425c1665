package service

import (
	"context"
	"testing"

	"hoopsnews/internal/models"
	"hoopsnews/internal/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Success(t *testing.T) {
	env := setupEnv(t)

	user, token, err := env.users.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "password123",
		FullName: "Alice Johnson",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsAdmin)
	assert.NotEqual(t, "password123", user.Password)
}

func TestRegister_DuplicateUsernameAndEmail(t *testing.T) {
	env := setupEnv(t)

	_, _, err := env.users.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	_, _, err = env.users.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "other@example.com",
		Password: "password123",
	})
	assertAppError(t, err, "CONFLICT")

	_, _, err = env.users.Register(context.Background(), RegisterInput{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "password123",
	})
	assertAppError(t, err, "CONFLICT")
}

func TestRegister_Validation(t *testing.T) {
	env := setupEnv(t)

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"short username", RegisterInput{Username: "ab", Email: "a@b.com", Password: "password123"}},
		{"bad username characters", RegisterInput{Username: "not ok!", Email: "a@b.com", Password: "password123"}},
		{"bad email", RegisterInput{Username: "alice", Email: "not-an-email", Password: "password123"}},
		{"short password", RegisterInput{Username: "alice", Email: "a@b.com", Password: "seven77"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := env.users.Register(context.Background(), tt.in)
			assertAppError(t, err, "VALIDATION_ERROR")
		})
	}
}

func TestLogin(t *testing.T) {
	env := setupEnv(t)
	env.createUser(t, "alice", false)

	user, token, err := env.users.Login(context.Background(), "alice", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice", user.Username)

	// Wrong password and unknown username produce the same message.
	_, _, err = env.users.Login(context.Background(), "alice", "wrong-password")
	assertAppError(t, err, "UNAUTHENTICATED")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "invalid credentials", appErr.Message)

	_, _, err = env.users.Login(context.Background(), "nobody", "password123")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "invalid credentials", appErr.Message)
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	env := setupEnv(t)
	alice := env.createUser(t, "alice", false)
	admin := env.createUser(t, "carol", true)

	_, err := env.users.SetActive(context.Background(), admin, alice.UserID, false)
	require.NoError(t, err)

	_, _, err = env.users.Login(context.Background(), "alice", "password123")
	assertAppError(t, err, "UNAUTHENTICATED")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "account is deactivated", appErr.Message)
}

func TestChangePassword(t *testing.T) {
	env := setupEnv(t)
	alice := env.createUser(t, "alice", false)

	err := env.users.ChangePassword(context.Background(), alice, "wrong", "newpassword1")
	assertAppError(t, err, "UNAUTHENTICATED")

	err = env.users.ChangePassword(context.Background(), alice, "password123", "short")
	assertAppError(t, err, "VALIDATION_ERROR")

	require.NoError(t, env.users.ChangePassword(context.Background(), alice, "password123", "newpassword1"))

	_, _, err = env.users.Login(context.Background(), "alice", "password123")
	assertAppError(t, err, "UNAUTHENTICATED")
	_, _, err = env.users.Login(context.Background(), "alice", "newpassword1")
	require.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	env := setupEnv(t)
	alice := env.createUser(t, "alice", false)
	bob := env.createUser(t, "bob", false)

	bio := "Covers the western conference."
	updated, err := env.users.UpdateProfile(context.Background(), UpdateProfileInput{
		Identity: alice,
		UserID:   alice.UserID,
		Bio:      &bio,
	})
	require.NoError(t, err)
	assert.Equal(t, bio, updated.Bio)

	// Another user cannot edit the profile.
	_, err = env.users.UpdateProfile(context.Background(), UpdateProfileInput{
		Identity: bob,
		UserID:   alice.UserID,
		Bio:      &bio,
	})
	assertAppError(t, err, "FORBIDDEN")

	// Changing to an email that is already registered conflicts.
	taken := "bob@example.com"
	_, err = env.users.UpdateProfile(context.Background(), UpdateProfileInput{
		Identity: alice,
		UserID:   alice.UserID,
		Email:    &taken,
	})
	assertAppError(t, err, "CONFLICT")
}

func TestPublicProfile(t *testing.T) {
	env := setupEnv(t)
	alice := env.createUser(t, "alice", false)
	env.createArticle(t, alice, "First Story", models.ArticleStatusPublished)
	env.createArticle(t, alice, "Second Story", models.ArticleStatusPublished)

	profile, err := env.users.PublicProfile(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, int64(2), profile.ArticlesCount)

	_, err = env.users.PublicProfile(context.Background(), "nobody")
	assertAppError(t, err, "NOT_FOUND")
}

func TestListUsers_AdminOnly(t *testing.T) {
	env := setupEnv(t)
	alice := env.createUser(t, "alice", false)
	admin := env.createUser(t, "carol", true)

	_, _, err := env.users.ListUsers(context.Background(), alice, "", 1, 20)
	assertAppError(t, err, "FORBIDDEN")

	users, meta, err := env.users.ListUsers(context.Background(), admin, "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), meta.Total)
	assert.Len(t, users, 2)

	filtered, meta, err := env.users.ListUsers(context.Background(), admin, "ali", 1, 20)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, int64(1), meta.Total)
	assert.Equal(t, "alice", filtered[0].Username)
}

func TestSetActive(t *testing.T) {
	env := setupEnv(t)
	alice := env.createUser(t, "alice", false)
	admin := env.createUser(t, "carol", true)

	_, err := env.users.SetActive(context.Background(), alice, admin.UserID, false)
	assertAppError(t, err, "FORBIDDEN")

	_, err = env.users.SetActive(context.Background(), admin, admin.UserID, false)
	assertAppError(t, err, "VALIDATION_ERROR")

	user, err := env.users.SetActive(context.Background(), admin, alice.UserID, false)
	require.NoError(t, err)
	assert.False(t, user.IsActive)

	// Reactivating is allowed, and repeating the same state is a no-op.
	user, err = env.users.SetActive(context.Background(), admin, alice.UserID, true)
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	user, err = env.users.SetActive(context.Background(), admin, alice.UserID, true)
	require.NoError(t, err)
	assert.True(t, user.IsActive)
}

func TestDeleteUser_CascadesContent(t *testing.T) {
	env := setupEnv(t)
	alice := env.createUser(t, "alice", false)
	bob := env.createUser(t, "bob", false)
	admin := env.createUser(t, "carol", true)

	article := env.createArticle(t, alice, "Doomed Story", models.ArticleStatusPublished)
	thread := env.createThread(t, alice, "Doomed thread")
	env.createComment(t, alice, &article.ID, nil, nil)
	env.createComment(t, alice, nil, &thread.ID, nil)
	env.createComment(t, bob, &article.ID, nil, nil)

	err := env.users.DeleteUser(context.Background(), bob, alice.UserID)
	assertAppError(t, err, "FORBIDDEN")

	err = env.users.DeleteUser(context.Background(), admin, admin.UserID)
	assertAppError(t, err, "VALIDATION_ERROR")

	require.NoError(t, env.users.DeleteUser(context.Background(), admin, alice.UserID))

	_, err = env.users.Me(context.Background(), alice)
	assertAppError(t, err, "NOT_FOUND")

	var articleCount, threadCount, commentCount int64
	require.NoError(t, env.db.Model(&models.Article{}).Count(&articleCount).Error)
	require.NoError(t, env.db.Model(&models.Thread{}).Count(&threadCount).Error)
	require.NoError(t, env.db.Model(&models.Comment{}).Count(&commentCount).Error)
	assert.Equal(t, int64(0), articleCount)
	assert.Equal(t, int64(0), threadCount)
	// Bob's comment went down with alice's article.
	assert.Equal(t, int64(0), commentCount)
}

func TestMe_RequiresAuthentication(t *testing.T) {
	env := setupEnv(t)

	_, err := env.users.Me(context.Background(), policy.Anonymous)
	assertAppError(t, err, "UNAUTHENTICATED")
}
