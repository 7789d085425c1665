package service

import (
	"context"
	"strings"
	"time"

	"hoopsnews/internal/models"
	"hoopsnews/internal/observability"
	"hoopsnews/internal/policy"
	"hoopsnews/internal/repository"
	"hoopsnews/internal/validation"

	"gorm.io/gorm"
)

const relatedArticlesLimit = 4

// ArticleService handles article lifecycle, visibility and view counting.
type ArticleService struct {
	db         *gorm.DB
	articles   repository.ArticleRepository
	categories repository.CategoryRepository
	tags       repository.TagRepository
}

// NewArticleService creates an ArticleService.
func NewArticleService(
	db *gorm.DB,
	articles repository.ArticleRepository,
	categories repository.CategoryRepository,
	tags repository.TagRepository,
) *ArticleService {
	return &ArticleService{
		db:         db,
		articles:   articles,
		categories: categories,
		tags:       tags,
	}
}

type CreateArticleInput struct {
	Identity   policy.Identity
	Title      string
	Slug       string
	Excerpt    string
	Content    string
	ImageURL   string
	Status     models.ArticleStatus
	CategoryID *uint
	Tags       []string
}

type UpdateArticleInput struct {
	Identity   policy.Identity
	Slug       string
	Title      *string
	NewSlug    *string
	Excerpt    *string
	Content    *string
	ImageURL   *string
	Status     *models.ArticleStatus
	CategoryID *uint
	ClearCat   bool
	Tags       []string
}

type ListArticlesInput struct {
	Identity     policy.Identity
	Search       string
	CategorySlug string
	Author       string
	Tag          string
	Status       string
	Sort         string
	Page         int
	PerPage      int
}

func (s *ArticleService) CreateArticle(ctx context.Context, in CreateArticleInput) (*models.Article, error) {
	if err := authorize(policy.ActionCreate, policy.Resource{Kind: policy.KindArticle}, in.Identity); err != nil {
		return nil, err
	}

	title := sanitizeText(strings.TrimSpace(in.Title))
	if title == "" {
		return nil, models.NewValidationError("title is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("content is required")
	}

	status := in.Status
	if status == "" {
		status = models.ArticleStatusPublished
	}
	if !status.Valid() {
		return nil, models.NewValidationError("status must be draft or published")
	}

	if in.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *in.CategoryID); err != nil {
			return nil, wrapNotFound(err, "category")
		}
	}

	article := &models.Article{
		Title:      title,
		Excerpt:    sanitizeText(in.Excerpt),
		Content:    sanitizeContent(in.Content),
		ImageURL:   strings.TrimSpace(in.ImageURL),
		Status:     status,
		AuthorID:   in.Identity.UserID,
		CategoryID: in.CategoryID,
	}
	if status == models.ArticleStatusPublished {
		now := time.Now()
		article.PublishedAt = &now
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		articles := s.articles.WithTx(tx)

		if in.Slug != "" {
			// Caller-supplied slugs surface conflicts instead of being suffixed.
			if err := validation.ValidateSlug(in.Slug); err != nil {
				return models.NewValidationError(err.Error())
			}
			taken, err := articles.SlugExists(ctx, in.Slug)
			if err != nil {
				return err
			}
			if taken {
				return models.NewConflictError("slug is already in use")
			}
			article.Slug = in.Slug
		} else {
			slug, err := uniqueSlug(ctx, slugify(title), articles.SlugExists)
			if err != nil {
				return err
			}
			article.Slug = slug
		}

		if err := articles.Create(ctx, article); err != nil {
			return err
		}

		tags, err := s.resolveTags(ctx, tx, in.Tags)
		if err != nil {
			return err
		}
		if tags != nil {
			return articles.ReplaceTags(ctx, article, tags)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.articles.GetByID(ctx, article.ID)
}

// GetArticle fetches an article by slug for the given viewer. Drafts are
// visible only to their author and admins; everyone else gets not-found.
// Every allowed read counts one view.
func (s *ArticleService) GetArticle(ctx context.Context, slug string, viewer policy.Identity) (*models.Article, error) {
	article, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		return nil, wrapNotFound(err, "article")
	}

	res := policy.Resource{Kind: policy.KindArticle, OwnerID: article.AuthorID, Hidden: !article.Published()}
	if err := authorize(policy.ActionRead, res, viewer); err != nil {
		return nil, err
	}

	if err := s.articles.IncrementViews(ctx, article.ID); err != nil {
		return nil, err
	}
	article.Views++
	observability.ArticleViewsTotal.Inc()

	return article, nil
}

// ResolveSlug returns the article id behind a slug without touching the
// view counter. Visibility of the target is the caller's concern.
func (s *ArticleService) ResolveSlug(ctx context.Context, slug string) (uint, error) {
	article, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		return 0, wrapNotFound(err, "article")
	}
	return article.ID, nil
}

func (s *ArticleService) ListArticles(ctx context.Context, in ListArticlesInput) ([]*models.Article, models.ListMeta, error) {
	page, perPage := clampPage(in.Page, in.PerPage)

	filter := repository.ArticleFilter{
		Search:       in.Search,
		CategorySlug: in.CategorySlug,
		Tag:          validation.NormalizeTagName(in.Tag),
		Sort:         in.Sort,
		Page:         page,
		PerPage:      perPage,
	}

	switch in.Status {
	case "", string(models.ArticleStatusPublished):
		// Published only, the default for everyone.
	case string(models.ArticleStatusDraft):
		// Drafts are listable only by admins, or by an author asking
		// for their own.
		if !in.Identity.IsAdmin {
			return nil, models.ListMeta{}, models.NewForbiddenError("drafts are not publicly listable")
		}
		filter.Status = models.ArticleStatusDraft
	default:
		return nil, models.ListMeta{}, models.NewValidationError("status must be draft or published")
	}

	if in.Author != "" {
		var author models.User
		if err := s.db.WithContext(ctx).Where("username = ?", in.Author).First(&author).Error; err != nil {
			return nil, models.ListMeta{}, wrapNotFound(err, "user")
		}
		filter.AuthorID = &author.ID

		// Authors browsing their own listing see drafts too.
		if filter.Status == "" && (in.Identity.IsAdmin || in.Identity.UserID == author.ID) {
			filter.IncludeDrafts = true
		}
	}

	articles, total, err := s.articles.List(ctx, filter)
	if err != nil {
		return nil, models.ListMeta{}, err
	}
	return articles, models.NewListMeta(total, page, perPage), nil
}

func (s *ArticleService) UpdateArticle(ctx context.Context, in UpdateArticleInput) (*models.Article, error) {
	article, err := s.articles.GetBySlug(ctx, in.Slug)
	if err != nil {
		return nil, wrapNotFound(err, "article")
	}

	res := policy.Resource{Kind: policy.KindArticle, OwnerID: article.AuthorID, Hidden: !article.Published()}
	if err := authorize(policy.ActionUpdate, res, in.Identity); err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := sanitizeText(strings.TrimSpace(*in.Title))
		if title == "" {
			return nil, models.NewValidationError("title cannot be empty")
		}
		article.Title = title
	}
	if in.Excerpt != nil {
		article.Excerpt = sanitizeText(*in.Excerpt)
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, models.NewValidationError("content cannot be empty")
		}
		article.Content = sanitizeContent(*in.Content)
	}
	if in.ImageURL != nil {
		article.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	switch {
	case in.ClearCat:
		article.CategoryID = nil
	case in.CategoryID != nil:
		if _, err := s.categories.GetByID(ctx, *in.CategoryID); err != nil {
			return nil, wrapNotFound(err, "category")
		}
		article.CategoryID = in.CategoryID
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, models.NewValidationError("status must be draft or published")
		}
		// The published timestamp is set on the first publish and
		// survives later unpublishing.
		if *in.Status == models.ArticleStatusPublished && article.PublishedAt == nil {
			now := time.Now()
			article.PublishedAt = &now
		}
		article.Status = *in.Status
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		articles := s.articles.WithTx(tx)

		if in.NewSlug != nil && *in.NewSlug != article.Slug {
			if err := validation.ValidateSlug(*in.NewSlug); err != nil {
				return models.NewValidationError(err.Error())
			}
			taken, err := articles.SlugExists(ctx, *in.NewSlug)
			if err != nil {
				return err
			}
			if taken {
				return models.NewConflictError("slug is already in use")
			}
			article.Slug = *in.NewSlug
		}

		if err := articles.Update(ctx, article); err != nil {
			return err
		}

		if in.Tags != nil {
			tags, err := s.resolveTags(ctx, tx, in.Tags)
			if err != nil {
				return err
			}
			return articles.ReplaceTags(ctx, article, tags)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.articles.GetByID(ctx, article.ID)
}

func (s *ArticleService) DeleteArticle(ctx context.Context, slug string, id policy.Identity) error {
	article, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		return wrapNotFound(err, "article")
	}

	res := policy.Resource{Kind: policy.KindArticle, OwnerID: article.AuthorID, Hidden: !article.Published()}
	if err := authorize(policy.ActionDelete, res, id); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.articles.WithTx(tx).Delete(ctx, article.ID)
	})
}

// RelatedArticles returns published articles sharing tags with the given
// one, most shared tags first, backfilled with recent articles.
func (s *ArticleService) RelatedArticles(ctx context.Context, slug string, viewer policy.Identity) ([]*models.Article, error) {
	article, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		return nil, wrapNotFound(err, "article")
	}

	res := policy.Resource{Kind: policy.KindArticle, OwnerID: article.AuthorID, Hidden: !article.Published()}
	if err := authorize(policy.ActionRead, res, viewer); err != nil {
		return nil, err
	}

	return s.articles.Related(ctx, article, relatedArticlesLimit)
}

// resolveTags normalizes names and gets-or-creates the rows. A nil input
// means "leave tags alone"; an empty slice clears them.
func (s *ArticleService) resolveTags(ctx context.Context, tx *gorm.DB, names []string) ([]models.Tag, error) {
	if names == nil {
		return nil, nil
	}
	normalized := make([]string, 0, len(names))
	for _, name := range names {
		if n := validation.NormalizeTagName(name); n != "" {
			normalized = append(normalized, n)
		}
	}
	tags, err := s.tags.WithTx(tx).GetOrCreate(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	return tags, nil
}
