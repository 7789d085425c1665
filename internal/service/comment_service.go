package service

import (
	"context"
	"strings"

	"hoopsnews/internal/models"
	"hoopsnews/internal/observability"
	"hoopsnews/internal/policy"
	"hoopsnews/internal/repository"

	"gorm.io/gorm"
)

// CommentService handles comments on articles and forum threads,
// including the reply tree and moderation.
type CommentService struct {
	db       *gorm.DB
	comments repository.CommentRepository
	articles repository.ArticleRepository
	threads  repository.ThreadRepository
}

// NewCommentService creates a CommentService.
func NewCommentService(
	db *gorm.DB,
	comments repository.CommentRepository,
	articles repository.ArticleRepository,
	threads repository.ThreadRepository,
) *CommentService {
	return &CommentService{db: db, comments: comments, articles: articles, threads: threads}
}

// CreateCommentInput targets exactly one of ArticleID or ThreadID.
type CreateCommentInput struct {
	Identity  policy.Identity
	ArticleID *uint
	ThreadID  *uint
	ParentID  *uint
	Content   string
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if err := authorize(policy.ActionCreate, policy.Resource{Kind: policy.KindComment}, in.Identity); err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("content is required")
	}

	comment := &models.Comment{
		Content:    sanitizeContent(in.Content),
		UserID:     in.Identity.UserID,
		ArticleID:  in.ArticleID,
		ThreadID:   in.ThreadID,
		ParentID:   in.ParentID,
		IsApproved: true,
	}
	if !comment.HasValidTarget() {
		return nil, models.NewValidationError("comment must target exactly one of an article or a thread")
	}

	// The target must exist and be visible to the commenter before
	// anything is written.
	if in.ArticleID != nil {
		article, err := s.articles.GetByID(ctx, *in.ArticleID)
		if err != nil {
			return nil, wrapNotFound(err, "article")
		}
		res := policy.Resource{Kind: policy.KindArticle, OwnerID: article.AuthorID, Hidden: !article.Published()}
		if err := authorize(policy.ActionRead, res, in.Identity); err != nil {
			return nil, err
		}
	} else {
		if _, err := s.threads.GetByID(ctx, *in.ThreadID); err != nil {
			return nil, wrapNotFound(err, "thread")
		}
	}

	if in.ParentID != nil {
		parent, err := s.comments.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, wrapNotFound(err, "comment")
		}
		if !sameTarget(parent, comment) {
			return nil, models.NewValidationError("reply must target the same article or thread as its parent")
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.comments.WithTx(tx).Create(ctx, comment)
	})
	if err != nil {
		return nil, err
	}

	return s.comments.GetByID(ctx, comment.ID)
}

func sameTarget(parent, child *models.Comment) bool {
	if parent.ArticleID != nil {
		return child.ArticleID != nil && *parent.ArticleID == *child.ArticleID
	}
	return parent.ThreadID != nil && child.ThreadID != nil && *parent.ThreadID == *child.ThreadID
}

// ListForArticle returns the article's comment tree. Unapproved comments
// appear only for admins.
func (s *CommentService) ListForArticle(ctx context.Context, articleSlug string, viewer policy.Identity) ([]*models.Comment, error) {
	article, err := s.articles.GetBySlug(ctx, articleSlug)
	if err != nil {
		return nil, wrapNotFound(err, "article")
	}
	res := policy.Resource{Kind: policy.KindArticle, OwnerID: article.AuthorID, Hidden: !article.Published()}
	if err := authorize(policy.ActionRead, res, viewer); err != nil {
		return nil, err
	}

	comments, err := s.comments.ListForArticle(ctx, article.ID, viewer.IsAdmin)
	if err != nil {
		return nil, err
	}
	return buildCommentTree(comments), nil
}

// ListForThread returns the thread's comment tree.
func (s *CommentService) ListForThread(ctx context.Context, threadID uint, viewer policy.Identity) ([]*models.Comment, error) {
	if _, err := s.threads.GetByID(ctx, threadID); err != nil {
		return nil, wrapNotFound(err, "thread")
	}

	comments, err := s.comments.ListForThread(ctx, threadID, viewer.IsAdmin)
	if err != nil {
		return nil, err
	}
	return buildCommentTree(comments), nil
}

// buildCommentTree nests a flat, created-at-ordered list into top-level
// comments with their replies. Replies whose parent is missing (filtered
// out or deleted) are dropped rather than orphaned at top level.
func buildCommentTree(comments []*models.Comment) []*models.Comment {
	byID := make(map[uint]*models.Comment, len(comments))
	for _, c := range comments {
		c.Replies = nil
		byID[c.ID] = c
	}

	roots := make([]*models.Comment, 0, len(comments))
	for _, c := range comments {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		if parent, ok := byID[*c.ParentID]; ok {
			parent.Replies = append(parent.Replies, *c)
		}
	}
	return roots
}

type UpdateCommentInput struct {
	Identity  policy.Identity
	CommentID uint
	Content   string
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, wrapNotFound(err, "comment")
	}

	res := policy.Resource{Kind: policy.KindComment, OwnerID: comment.UserID}
	if err := authorize(policy.ActionUpdate, res, in.Identity); err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("content cannot be empty")
	}
	comment.Content = sanitizeContent(in.Content)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.comments.WithTx(tx).Update(ctx, comment)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment and its whole reply tree.
func (s *CommentService) DeleteComment(ctx context.Context, commentID uint, id policy.Identity) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return wrapNotFound(err, "comment")
	}

	res := policy.Resource{Kind: policy.KindComment, OwnerID: comment.UserID}
	if err := authorize(policy.ActionDelete, res, id); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.comments.WithTx(tx).Delete(ctx, commentID)
	})
}

// SetApproval moderates a comment. Approving an approved comment or
// rejecting a rejected one is a no-op, not an error.
func (s *CommentService) SetApproval(ctx context.Context, commentID uint, approved bool, id policy.Identity) (*models.Comment, error) {
	if err := authorize(policy.ActionModerate, policy.Resource{Kind: policy.KindComment}, id); err != nil {
		return nil, err
	}

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, wrapNotFound(err, "comment")
	}

	if comment.IsApproved == approved {
		return comment, nil
	}

	comment.IsApproved = approved
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.comments.WithTx(tx).Update(ctx, comment)
	})
	if err != nil {
		return nil, err
	}

	action := "reject"
	if approved {
		action = "approve"
	}
	observability.CommentModerationTotal.WithLabelValues(action).Inc()

	return comment, nil
}

// ListAll is the admin moderation listing across all targets.
func (s *CommentService) ListAll(ctx context.Context, id policy.Identity, approved *bool, search string, page, perPage int) ([]*models.Comment, models.ListMeta, error) {
	if err := authorize(policy.ActionModerate, policy.Resource{Kind: policy.KindComment}, id); err != nil {
		return nil, models.ListMeta{}, err
	}

	page, perPage = clampPage(page, perPage)
	comments, total, err := s.comments.ListAll(ctx, repository.CommentFilter{
		Approved: approved,
		Search:   search,
		Page:     page,
		PerPage:  perPage,
	})
	if err != nil {
		return nil, models.ListMeta{}, err
	}
	return comments, models.NewListMeta(total, page, perPage), nil
}
