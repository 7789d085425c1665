package repository

import (
	"context"

	"hoopsnews/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentFilter narrows admin comment listings.
type CommentFilter struct {
	Approved *bool
	Search   string
	Page     int
	PerPage  int
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListForArticle(ctx context.Context, articleID uint, includeUnapproved bool) ([]*models.Comment, error)
	ListForThread(ctx context.Context, threadID uint, includeUnapproved bool) ([]*models.Comment, error)
	ListAll(ctx context.Context, filter CommentFilter) ([]*models.Comment, int64, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
	Recent(ctx context.Context, limit int) ([]*models.Comment, error)
	WithTx(tx *gorm.DB) CommentRepository
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) WithTx(tx *gorm.DB) CommentRepository {
	return &commentRepository{db: tx}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&comment, id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) listForTarget(ctx context.Context, column string, targetID uint, includeUnapproved bool) ([]*models.Comment, error) {
	query := r.db.WithContext(ctx).
		Preload("User").
		Where(column+" = ?", targetID)
	if !includeUnapproved {
		query = query.Where("is_approved = ?", true)
	}

	var comments []*models.Comment
	err := query.Order("created_at ASC, id ASC").Find(&comments).Error
	return comments, err
}

func (r *commentRepository) ListForArticle(ctx context.Context, articleID uint, includeUnapproved bool) ([]*models.Comment, error) {
	return r.listForTarget(ctx, "article_id", articleID, includeUnapproved)
}

func (r *commentRepository) ListForThread(ctx context.Context, threadID uint, includeUnapproved bool) ([]*models.Comment, error) {
	return r.listForTarget(ctx, "thread_id", threadID, includeUnapproved)
}

func (r *commentRepository) ListAll(ctx context.Context, filter CommentFilter) ([]*models.Comment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Comment{})
	if filter.Approved != nil {
		query = query.Where("is_approved = ?", *filter.Approved)
	}
	if filter.Search != "" {
		query = query.Where("content LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []*models.Comment
	err := query.
		Preload("User").
		Order("created_at DESC, id DESC").
		Limit(filter.PerPage).
		Offset((filter.Page - 1) * filter.PerPage).
		Find(&comments).Error
	return comments, total, err
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(comment).Error
}

// Delete removes a comment together with its reply tree. Replies are
// collected level by level since parent_id only links one level up.
func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	doomed := []uint{id}
	frontier := []uint{id}

	for len(frontier) > 0 {
		var next []uint
		err := r.db.WithContext(ctx).
			Model(&models.Comment{}).
			Where("parent_id IN ?", frontier).
			Pluck("id", &next).Error
		if err != nil {
			return err
		}
		doomed = append(doomed, next...)
		frontier = next
	}

	return r.db.WithContext(ctx).Delete(&models.Comment{}, doomed).Error
}

func (r *commentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Count(&count).Error
	return count, err
}

func (r *commentRepository) Recent(ctx context.Context, limit int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}
