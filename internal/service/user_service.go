package service

import (
	"context"
	"errors"
	"strings"

	"hoopsnews/internal/auth"
	"hoopsnews/internal/cache"
	"hoopsnews/internal/models"
	"hoopsnews/internal/policy"
	"hoopsnews/internal/repository"
	"hoopsnews/internal/validation"

	"gorm.io/gorm"
)

// UserService handles registration, login and profile management.
type UserService struct {
	db       *gorm.DB
	users    repository.UserRepository
	articles repository.ArticleRepository
	tokens   *auth.TokenManager
}

// NewUserService creates a UserService.
func NewUserService(db *gorm.DB, users repository.UserRepository, articles repository.ArticleRepository, tokens *auth.TokenManager) *UserService {
	return &UserService{db: db, users: users, articles: articles, tokens: tokens}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
}

type UpdateProfileInput struct {
	Identity  policy.Identity
	UserID    uint
	Email     *string
	FullName  *string
	Bio       *string
	AvatarURL *string
}

// Register creates a new account and returns it with a fresh token.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if err := validation.ValidateUsername(username); err != nil {
		return nil, "", models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, "", models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, "", models.NewValidationError(err.Error())
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: hash,
		FullName: sanitizeText(in.FullName),
		IsActive: true,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)

		if _, err := users.GetByUsername(ctx, username); err == nil {
			return models.NewConflictError("username is already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if _, err := users.GetByEmail(ctx, email); err == nil {
			return models.NewConflictError("email is already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return users.Create(ctx, user)
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID, user.IsAdmin)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}
	return user, token, nil
}

// Login verifies credentials by username and returns the user with a token.
// Wrong username and wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", models.NewUnauthenticatedError("invalid credentials")
		}
		return nil, "", err
	}
	if !user.IsActive {
		return nil, "", models.NewUnauthenticatedError("account is deactivated")
	}
	if !auth.CheckPassword(user.Password, password) {
		return nil, "", models.NewUnauthenticatedError("invalid credentials")
	}

	token, err := s.tokens.Issue(user.ID, user.IsAdmin)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}
	return user, token, nil
}

// Me returns the account behind the identity.
func (s *UserService) Me(ctx context.Context, id policy.Identity) (*models.User, error) {
	if !id.Authenticated() {
		return nil, models.NewUnauthenticatedError("authentication required")
	}
	user, err := s.users.GetByID(ctx, id.UserID)
	if err != nil {
		return nil, wrapNotFound(err, "user")
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, wrapNotFound(err, "user")
	}

	res := policy.Resource{Kind: policy.KindUser, OwnerID: user.ID}
	if err := authorize(policy.ActionUpdate, res, in.Identity); err != nil {
		return nil, err
	}

	if in.FullName != nil {
		user.FullName = sanitizeText(*in.FullName)
	}
	if in.Bio != nil {
		user.Bio = sanitizeText(*in.Bio)
	}
	if in.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*in.AvatarURL)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)

		if in.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*in.Email))
			if email != user.Email {
				if err := validation.ValidateEmail(email); err != nil {
					return models.NewValidationError(err.Error())
				}
				if _, err := users.GetByEmail(ctx, email); err == nil {
					return models.NewConflictError("email is already registered")
				} else if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				user.Email = email
			}
		}

		return users.Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateProfile(ctx, user.Username)
	return user, nil
}

// ChangePassword verifies the current password before setting a new one.
func (s *UserService) ChangePassword(ctx context.Context, id policy.Identity, current, next string) error {
	user, err := s.Me(ctx, id)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(user.Password, current) {
		return models.NewUnauthenticatedError("current password is incorrect")
	}
	if err := validation.ValidatePassword(next); err != nil {
		return models.NewValidationError(err.Error())
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = hash

	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.users.WithTx(tx).Update(ctx, user)
	})
}

// PublicProfile returns the public projection for a username.
func (s *UserService) PublicProfile(ctx context.Context, username string) (*models.PublicProfile, error) {
	var profile models.PublicProfile
	err := cache.Aside(ctx, cache.ProfileKey(username), &profile, cache.ProfileTTL, func() error {
		user, err := s.users.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		count, err := s.articles.CountByAuthor(ctx, user.ID)
		if err != nil {
			return err
		}
		profile = user.Profile(count)
		return nil
	})
	if err != nil {
		return nil, wrapNotFound(err, "user")
	}
	return &profile, nil
}

// ListUsers is the admin account listing.
func (s *UserService) ListUsers(ctx context.Context, id policy.Identity, search string, page, perPage int) ([]*models.User, models.ListMeta, error) {
	if err := authorize(policy.ActionModerate, policy.Resource{Kind: policy.KindUser}, id); err != nil {
		return nil, models.ListMeta{}, err
	}

	page, perPage = clampPage(page, perPage)
	users, total, err := s.users.List(ctx, search, page, perPage)
	if err != nil {
		return nil, models.ListMeta{}, err
	}
	return users, models.NewListMeta(total, page, perPage), nil
}

// SetActive toggles an account's active flag. Admin only; admins cannot
// deactivate themselves.
func (s *UserService) SetActive(ctx context.Context, id policy.Identity, userID uint, active bool) (*models.User, error) {
	if err := authorize(policy.ActionModerate, policy.Resource{Kind: policy.KindUser}, id); err != nil {
		return nil, err
	}
	if userID == id.UserID && !active {
		return nil, models.NewValidationError("you cannot deactivate your own account")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, wrapNotFound(err, "user")
	}
	if user.IsActive == active {
		return user, nil
	}

	user.IsActive = active
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.users.WithTx(tx).Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateProfile(ctx, user.Username)
	return user, nil
}

// DeleteUser removes an account together with its articles, threads and
// comments. Admin only; admins cannot delete themselves.
func (s *UserService) DeleteUser(ctx context.Context, id policy.Identity, userID uint) error {
	res := policy.Resource{Kind: policy.KindUser, OwnerID: userID}
	if err := authorize(policy.ActionDelete, res, id); err != nil {
		return err
	}
	if userID == id.UserID {
		return models.NewValidationError("you cannot delete your own account")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return wrapNotFound(err, "user")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).Where("user_id = ?", user.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		var articleIDs []uint
		if err := tx.WithContext(ctx).Model(&models.Article{}).Where("author_id = ?", user.ID).Pluck("id", &articleIDs).Error; err != nil {
			return err
		}
		arts := s.articles.WithTx(tx)
		for _, articleID := range articleIDs {
			if err := arts.Delete(ctx, articleID); err != nil {
				return err
			}
		}

		var threadIDs []uint
		if err := tx.WithContext(ctx).Model(&models.Thread{}).Where("user_id = ?", user.ID).Pluck("id", &threadIDs).Error; err != nil {
			return err
		}
		for _, threadID := range threadIDs {
			if err := tx.WithContext(ctx).Where("thread_id = ?", threadID).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			var thread models.Thread
			if err := tx.WithContext(ctx).First(&thread, threadID).Error; err != nil {
				return err
			}
			if err := tx.WithContext(ctx).Model(&thread).Association("Tags").Clear(); err != nil {
				return err
			}
			if err := tx.WithContext(ctx).Delete(&models.Thread{}, threadID).Error; err != nil {
				return err
			}
		}

		return s.users.WithTx(tx).Delete(ctx, user.ID)
	})
	if err != nil {
		return err
	}

	cache.InvalidateProfile(ctx, user.Username)
	cache.InvalidateStats(ctx)
	return nil
}
