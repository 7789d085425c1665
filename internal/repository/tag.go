package repository

import (
	"context"

	"hoopsnews/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepository defines the interface for tag data operations
type TagRepository interface {
	GetOrCreate(ctx context.Context, names []string) ([]models.Tag, error)
	List(ctx context.Context) ([]*models.Tag, error)
	WithTx(tx *gorm.DB) TagRepository
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) WithTx(tx *gorm.DB) TagRepository {
	return &tagRepository{db: tx}
}

// GetOrCreate resolves tag names to rows, inserting the ones that do
// not exist yet. Names must already be normalized.
func (r *tagRepository) GetOrCreate(ctx context.Context, names []string) ([]models.Tag, error) {
	if len(names) == 0 {
		return nil, nil
	}

	rows := make([]models.Tag, 0, len(names))
	seen := map[string]struct{}{}
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		rows = append(rows, models.Tag{Name: name})
	}
	if len(rows) == 0 {
		return nil, nil
	}

	// ON CONFLICT DO NOTHING keeps concurrent creates from racing.
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(rows))
	for _, row := range rows {
		keys = append(keys, row.Name)
	}
	var tags []models.Tag
	err = r.db.WithContext(ctx).Where("name IN ?", keys).Find(&tags).Error
	return tags, err
}

func (r *tagRepository) List(ctx context.Context) ([]*models.Tag, error) {
	var tags []*models.Tag
	err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error
	return tags, err
}
