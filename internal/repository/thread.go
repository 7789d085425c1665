package repository

import (
	"context"

	"hoopsnews/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// commentCountSelect exposes the reply total as a column so listings
// do not need a query per thread.
const commentCountSelect = "threads.*, " +
	"(SELECT COUNT(*) FROM comments WHERE comments.thread_id = threads.id AND comments.is_approved) as comment_count"

// ThreadRepository defines the interface for forum thread data operations
type ThreadRepository interface {
	Create(ctx context.Context, thread *models.Thread) error
	GetByID(ctx context.Context, id uint) (*models.Thread, error)
	List(ctx context.Context, search string, page, perPage int) ([]*models.Thread, int64, error)
	Update(ctx context.Context, thread *models.Thread) error
	ReplaceTags(ctx context.Context, thread *models.Thread, tags []models.Tag) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
	Recent(ctx context.Context, limit int) ([]*models.Thread, error)
	WithTx(tx *gorm.DB) ThreadRepository
}

type threadRepository struct {
	db *gorm.DB
}

// NewThreadRepository creates a new thread repository
func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &threadRepository{db: db}
}

func (r *threadRepository) WithTx(tx *gorm.DB) ThreadRepository {
	return &threadRepository{db: tx}
}

func (r *threadRepository) Create(ctx context.Context, thread *models.Thread) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(thread).Error
}

func (r *threadRepository) GetByID(ctx context.Context, id uint) (*models.Thread, error) {
	var thread models.Thread
	err := r.db.WithContext(ctx).
		Select(commentCountSelect).
		Preload("User").
		Preload("Tags").
		First(&thread, id).Error
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *threadRepository) List(ctx context.Context, search string, page, perPage int) ([]*models.Thread, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Thread{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR content LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var threads []*models.Thread
	err := query.
		Select(commentCountSelect).
		Preload("User").
		Preload("Tags").
		Order("threads.created_at DESC, threads.id DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&threads).Error
	return threads, total, err
}

func (r *threadRepository) Update(ctx context.Context, thread *models.Thread) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(thread).Error
}

func (r *threadRepository) ReplaceTags(ctx context.Context, thread *models.Thread, tags []models.Tag) error {
	if err := r.db.WithContext(ctx).Model(thread).Association("Tags").Replace(tags); err != nil {
		return err
	}
	thread.Tags = tags
	return nil
}

func (r *threadRepository) Delete(ctx context.Context, id uint) error {
	var thread models.Thread
	if err := r.db.WithContext(ctx).First(&thread, id).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Model(&thread).Association("Tags").Clear(); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Where("thread_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&models.Thread{}, id).Error
}

func (r *threadRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Thread{}).Count(&count).Error
	return count, err
}

func (r *threadRepository) Recent(ctx context.Context, limit int) ([]*models.Thread, error) {
	var threads []*models.Thread
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&threads).Error
	return threads, err
}
