package repository

import (
	"context"

	"hoopsnews/internal/cache"
	"hoopsnews/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArticleFilter narrows article listings. A zero Status means
// published articles only; drafts appear when Status names them or
// IncludeDrafts is set (admin listings).
type ArticleFilter struct {
	Search        string
	CategorySlug  string
	AuthorID      *uint
	Tag           string
	Status        models.ArticleStatus
	IncludeDrafts bool
	Sort          string
	Page          int
	PerPage       int
}

// ArticleRepository defines the interface for article data operations
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id uint) (*models.Article, error)
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	List(ctx context.Context, filter ArticleFilter) ([]*models.Article, int64, error)
	Update(ctx context.Context, article *models.Article) error
	ReplaceTags(ctx context.Context, article *models.Article, tags []models.Tag) error
	Delete(ctx context.Context, id uint) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	IncrementViews(ctx context.Context, id uint) error
	Related(ctx context.Context, article *models.Article, limit int) ([]*models.Article, error)
	Count(ctx context.Context) (int64, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	SumViews(ctx context.Context) (int64, error)
	Popular(ctx context.Context, limit int) ([]*models.Article, error)
	Recent(ctx context.Context, limit int) ([]*models.Article, error)
	WithTx(tx *gorm.DB) ArticleRepository
}

type articleRepository struct {
	db *gorm.DB
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) WithTx(tx *gorm.DB) ArticleRepository {
	return &articleRepository{db: tx}
}

func (r *articleRepository) Create(ctx context.Context, article *models.Article) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(article).Error
}

func (r *articleRepository) preload(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Category").
		Preload("Tags")
}

func (r *articleRepository) GetByID(ctx context.Context, id uint) (*models.Article, error) {
	var article models.Article
	if err := r.preload(r.db.WithContext(ctx)).First(&article, id).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	var article models.Article
	if err := r.preload(r.db.WithContext(ctx)).Where("slug = ?", slug).First(&article).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) applyFilter(db *gorm.DB, filter ArticleFilter) *gorm.DB {
	query := db.Model(&models.Article{})

	switch {
	case filter.Status != "":
		query = query.Where("articles.status = ?", filter.Status)
	case !filter.IncludeDrafts:
		query = query.Where("articles.status = ?", models.ArticleStatusPublished)
	}

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("articles.title LIKE ? OR articles.content LIKE ?", like, like)
	}
	if filter.CategorySlug != "" {
		query = query.
			Joins("JOIN categories ON categories.id = articles.category_id").
			Where("categories.slug = ?", filter.CategorySlug)
	}
	if filter.AuthorID != nil {
		query = query.Where("articles.author_id = ?", *filter.AuthorID)
	}
	if filter.Tag != "" {
		query = query.
			Joins("JOIN article_tags ON article_tags.article_id = articles.id").
			Joins("JOIN tags ON tags.id = article_tags.tag_id").
			Where("tags.name = ?", filter.Tag)
	}

	return query
}

func (r *articleRepository) applySort(db *gorm.DB, sort string) *gorm.DB {
	switch sort {
	case "views":
		return db.Order("articles.views DESC, articles.id DESC")
	case "oldest":
		return db.Order("articles.created_at ASC, articles.id ASC")
	default: // "newest" and anything unrecognized
		return db.Order("articles.created_at DESC, articles.id DESC")
	}
}

func (r *articleRepository) List(ctx context.Context, filter ArticleFilter) ([]*models.Article, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx), filter)

	var total int64
	if err := query.Distinct("articles.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var articles []*models.Article
	err := r.preload(r.applySort(query, filter.Sort)).
		Distinct("articles.*").
		Limit(filter.PerPage).
		Offset((filter.Page - 1) * filter.PerPage).
		Find(&articles).Error
	return articles, total, err
}

func (r *articleRepository) Update(ctx context.Context, article *models.Article) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(article).Error; err != nil {
		return err
	}
	cache.InvalidateArticle(ctx, article.Slug)
	return nil
}

// ReplaceTags swaps the article's tag set for the given one.
func (r *articleRepository) ReplaceTags(ctx context.Context, article *models.Article, tags []models.Tag) error {
	if err := r.db.WithContext(ctx).Model(article).Association("Tags").Replace(tags); err != nil {
		return err
	}
	article.Tags = tags
	return nil
}

func (r *articleRepository) Delete(ctx context.Context, id uint) error {
	var article models.Article
	if err := r.db.WithContext(ctx).First(&article, id).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Model(&article).Association("Tags").Clear(); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Where("article_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&models.Article{}, id).Error; err != nil {
		return err
	}
	cache.InvalidateArticle(ctx, article.Slug)
	return nil
}

func (r *articleRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Article{}).
		Where("slug = ?", slug).
		Count(&count).Error
	return count > 0, err
}

func (r *articleRepository) IncrementViews(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Article{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

// Related returns published articles sharing the most tags with the
// given one, newest first, backfilled with recent articles when fewer
// than limit share a tag.
func (r *articleRepository) Related(ctx context.Context, article *models.Article, limit int) ([]*models.Article, error) {
	exclude := []uint{article.ID}

	var related []*models.Article
	if len(article.Tags) > 0 {
		tagIDs := make([]uint, 0, len(article.Tags))
		for _, tag := range article.Tags {
			tagIDs = append(tagIDs, tag.ID)
		}

		err := r.preload(r.db.WithContext(ctx)).
			Joins("JOIN article_tags ON article_tags.article_id = articles.id").
			Where("article_tags.tag_id IN ?", tagIDs).
			Where("articles.id != ?", article.ID).
			Where("articles.status = ?", models.ArticleStatusPublished).
			Group("articles.id").
			Order("COUNT(article_tags.tag_id) DESC, articles.id DESC").
			Limit(limit).
			Find(&related).Error
		if err != nil {
			return nil, err
		}
		for _, a := range related {
			exclude = append(exclude, a.ID)
		}
	}

	if len(related) < limit {
		var fill []*models.Article
		err := r.preload(r.db.WithContext(ctx)).
			Where("articles.id NOT IN ?", exclude).
			Where("articles.status = ?", models.ArticleStatusPublished).
			Order("articles.created_at DESC, articles.id DESC").
			Limit(limit - len(related)).
			Find(&fill).Error
		if err != nil {
			return nil, err
		}
		related = append(related, fill...)
	}

	return related, nil
}

func (r *articleRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Article{}).Count(&count).Error
	return count, err
}

func (r *articleRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Article{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}

func (r *articleRepository) SumViews(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Article{}).
		Select("COALESCE(SUM(views), 0)").
		Scan(&total).Error
	return total, err
}

func (r *articleRepository) Popular(ctx context.Context, limit int) ([]*models.Article, error) {
	var articles []*models.Article
	err := r.db.WithContext(ctx).
		Where("status = ?", models.ArticleStatusPublished).
		Order("views DESC, id DESC").
		Limit(limit).
		Find(&articles).Error
	return articles, err
}

func (r *articleRepository) Recent(ctx context.Context, limit int) ([]*models.Article, error) {
	var articles []*models.Article
	err := r.db.WithContext(ctx).
		Preload("Author").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&articles).Error
	return articles, err
}
