package service

import (
	"context"
	"strings"

	"hoopsnews/internal/models"
	"hoopsnews/internal/policy"
	"hoopsnews/internal/repository"
	"hoopsnews/internal/validation"

	"gorm.io/gorm"
)

// ThreadService handles community forum threads.
type ThreadService struct {
	db      *gorm.DB
	threads repository.ThreadRepository
	tags    repository.TagRepository
}

// NewThreadService creates a ThreadService.
func NewThreadService(db *gorm.DB, threads repository.ThreadRepository, tags repository.TagRepository) *ThreadService {
	return &ThreadService{db: db, threads: threads, tags: tags}
}

type CreateThreadInput struct {
	Identity policy.Identity
	Title    string
	Content  string
	Tags     []string
}

type UpdateThreadInput struct {
	Identity policy.Identity
	ThreadID uint
	Title    *string
	Content  *string
	Tags     []string
}

func (s *ThreadService) CreateThread(ctx context.Context, in CreateThreadInput) (*models.Thread, error) {
	if err := authorize(policy.ActionCreate, policy.Resource{Kind: policy.KindThread}, in.Identity); err != nil {
		return nil, err
	}

	title := sanitizeText(strings.TrimSpace(in.Title))
	if title == "" {
		return nil, models.NewValidationError("title is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("content is required")
	}

	thread := &models.Thread{
		Title:   title,
		Content: sanitizeContent(in.Content),
		UserID:  in.Identity.UserID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		threads := s.threads.WithTx(tx)
		if err := threads.Create(ctx, thread); err != nil {
			return err
		}
		tags, err := s.resolveTags(ctx, tx, in.Tags)
		if err != nil {
			return err
		}
		if tags != nil {
			return threads.ReplaceTags(ctx, thread, tags)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.threads.GetByID(ctx, thread.ID)
}

func (s *ThreadService) GetThread(ctx context.Context, id uint) (*models.Thread, error) {
	thread, err := s.threads.GetByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "thread")
	}
	return thread, nil
}

func (s *ThreadService) ListThreads(ctx context.Context, search string, page, perPage int) ([]*models.Thread, models.ListMeta, error) {
	page, perPage = clampPage(page, perPage)
	threads, total, err := s.threads.List(ctx, search, page, perPage)
	if err != nil {
		return nil, models.ListMeta{}, err
	}
	return threads, models.NewListMeta(total, page, perPage), nil
}

func (s *ThreadService) UpdateThread(ctx context.Context, in UpdateThreadInput) (*models.Thread, error) {
	thread, err := s.threads.GetByID(ctx, in.ThreadID)
	if err != nil {
		return nil, wrapNotFound(err, "thread")
	}

	res := policy.Resource{Kind: policy.KindThread, OwnerID: thread.UserID}
	if err := authorize(policy.ActionUpdate, res, in.Identity); err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := sanitizeText(strings.TrimSpace(*in.Title))
		if title == "" {
			return nil, models.NewValidationError("title cannot be empty")
		}
		thread.Title = title
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, models.NewValidationError("content cannot be empty")
		}
		thread.Content = sanitizeContent(*in.Content)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		threads := s.threads.WithTx(tx)
		if err := threads.Update(ctx, thread); err != nil {
			return err
		}
		if in.Tags != nil {
			tags, err := s.resolveTags(ctx, tx, in.Tags)
			if err != nil {
				return err
			}
			return threads.ReplaceTags(ctx, thread, tags)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.threads.GetByID(ctx, thread.ID)
}

func (s *ThreadService) DeleteThread(ctx context.Context, threadID uint, id policy.Identity) error {
	thread, err := s.threads.GetByID(ctx, threadID)
	if err != nil {
		return wrapNotFound(err, "thread")
	}

	res := policy.Resource{Kind: policy.KindThread, OwnerID: thread.UserID}
	if err := authorize(policy.ActionDelete, res, id); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.threads.WithTx(tx).Delete(ctx, threadID)
	})
}

func (s *ThreadService) resolveTags(ctx context.Context, tx *gorm.DB, names []string) ([]models.Tag, error) {
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
