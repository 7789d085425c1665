package service

import (
	"context"
	"strings"

	"hoopsnews/internal/cache"
	"hoopsnews/internal/models"
	"hoopsnews/internal/policy"
	"hoopsnews/internal/repository"
	"hoopsnews/internal/validation"

	"gorm.io/gorm"
)

// CategoryService handles the flat article classification. Mutations are
// admin only.
type CategoryService struct {
	db         *gorm.DB
	categories repository.CategoryRepository
}

// NewCategoryService creates a CategoryService.
func NewCategoryService(db *gorm.DB, categories repository.CategoryRepository) *CategoryService {
	return &CategoryService{db: db, categories: categories}
}

type CategoryInput struct {
	Identity    policy.Identity
	Name        string
	Slug        string
	Description string
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.categories.List(ctx)
}

func (s *CategoryService) GetCategory(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := cache.Aside(ctx, cache.CategoryKey(slug), &category, cache.CategoryTTL, func() error {
		found, err := s.categories.GetBySlug(ctx, slug)
		if err != nil {
			return wrapNotFound(err, "category")
		}
		category = *found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if err := authorize(policy.ActionCreate, policy.Resource{Kind: policy.KindCategory}, in.Identity); err != nil {
		return nil, err
	}

	name := sanitizeText(strings.TrimSpace(in.Name))
	if name == "" {
		return nil, models.NewValidationError("name is required")
	}

	category := &models.Category{
		Name:        name,
		Description: sanitizeText(in.Description),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		categories := s.categories.WithTx(tx)

		if in.Slug != "" {
			if err := validation.ValidateSlug(in.Slug); err != nil {
				return models.NewValidationError(err.Error())
			}
			taken, err := categories.SlugExists(ctx, in.Slug)
			if err != nil {
				return err
			}
			if taken {
				return models.NewConflictError("slug is already in use")
			}
			category.Slug = in.Slug
		} else {
			slug, err := uniqueSlug(ctx, slugify(name), categories.SlugExists)
			if err != nil {
				return err
			}
			category.Slug = slug
		}

		return categories.Create(ctx, category)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

type UpdateCategoryInput struct {
	Identity    policy.Identity
	Slug        string
	Name        *string
	NewSlug     *string
	Description *string
}

func (s *CategoryService) UpdateCategory(ctx context.Context, in UpdateCategoryInput) (*models.Category, error) {
	if err := authorize(policy.ActionUpdate, policy.Resource{Kind: policy.KindCategory}, in.Identity); err != nil {
		return nil, err
	}

	category, err := s.categories.GetBySlug(ctx, in.Slug)
	if err != nil {
		return nil, wrapNotFound(err, "category")
	}

	if in.Name != nil {
		name := sanitizeText(strings.TrimSpace(*in.Name))
		if name == "" {
			return nil, models.NewValidationError("name cannot be empty")
		}
		category.Name = name
	}
	if in.Description != nil {
		category.Description = sanitizeText(*in.Description)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		categories := s.categories.WithTx(tx)

		if in.NewSlug != nil && *in.NewSlug != category.Slug {
			if err := validation.ValidateSlug(*in.NewSlug); err != nil {
				return models.NewValidationError(err.Error())
			}
			taken, err := categories.SlugExists(ctx, *in.NewSlug)
			if err != nil {
				return err
			}
			if taken {
				return models.NewConflictError("slug is already in use")
			}
			category.Slug = *in.NewSlug
		}

		return categories.Update(ctx, category)
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateCategory(ctx, in.Slug)
	if category.Slug != in.Slug {
		cache.InvalidateCategory(ctx, category.Slug)
	}
	return category, nil
}

// DeleteCategory removes a category. Its articles stay, uncategorized.
func (s *CategoryService) DeleteCategory(ctx context.Context, slug string, id policy.Identity) error {
	if err := authorize(policy.ActionDelete, policy.Resource{Kind: policy.KindCategory}, id); err != nil {
		return err
	}

	category, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		return wrapNotFound(err, "category")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.categories.WithTx(tx).Delete(ctx, category.ID)
	})
	if err != nil {
		return err
	}

	cache.InvalidateCategory(ctx, slug)
	return nil
}
