package service

import (
	"context"
	"sort"
	"time"

	"hoopsnews/internal/cache"
	"hoopsnews/internal/policy"
	"hoopsnews/internal/repository"
)

const (
	recentActivityLimit = 10
	popularArticleLimit = 5
)

// AdminService aggregates site-wide statistics for the dashboard.
type AdminService struct {
	users    repository.UserRepository
	articles repository.ArticleRepository
	threads  repository.ThreadRepository
	comments repository.CommentRepository
}

// NewAdminService creates an AdminService.
func NewAdminService(
	users repository.UserRepository,
	articles repository.ArticleRepository,
	threads repository.ThreadRepository,
	comments repository.CommentRepository,
) *AdminService {
	return &AdminService{users: users, articles: articles, threads: threads, comments: comments}
}

// Activity is one entry in the recent-activity feed.
type Activity struct {
	Type      string    `json:"type"`
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// PopularArticle is the dashboard's view-ranked article projection.
type PopularArticle struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
	Views int64  `json:"views"`
}

// Stats is the admin dashboard payload.
type Stats struct {
	TotalUsers       int64            `json:"totalUsers"`
	TotalArticles    int64            `json:"totalArticles"`
	TotalComments    int64            `json:"totalComments"`
	TotalViews       int64            `json:"totalViews"`
	RecentActivities []Activity       `json:"recentActivities"`
	PopularArticles  []PopularArticle `json:"popularArticles"`
}

// GetStats computes the dashboard aggregate. Totals count every row
// regardless of status or approval; views sum over all articles.
func (s *AdminService) GetStats(ctx context.Context, id policy.Identity) (*Stats, error) {
	if err := authorize(policy.ActionModerate, policy.Resource{Kind: policy.KindStats}, id); err != nil {
		return nil, err
	}

	var stats Stats
	err := cache.Aside(ctx, cache.StatsKey, &stats, cache.StatsTTL, func() error {
		return s.computeStats(ctx, &stats)
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *AdminService) computeStats(ctx context.Context, stats *Stats) error {
	var err error
	if stats.TotalUsers, err = s.users.Count(ctx); err != nil {
		return err
	}
	if stats.TotalArticles, err = s.articles.Count(ctx); err != nil {
		return err
	}
	if stats.TotalComments, err = s.comments.Count(ctx); err != nil {
		return err
	}
	if stats.TotalViews, err = s.articles.SumViews(ctx); err != nil {
		return err
	}

	activities, err := s.recentActivities(ctx)
	if err != nil {
		return err
	}
	stats.RecentActivities = activities

	popular, err := s.articles.Popular(ctx, popularArticleLimit)
	if err != nil {
		return err
	}
	stats.PopularArticles = make([]PopularArticle, 0, len(popular))
	for _, a := range popular {
		stats.PopularArticles = append(stats.PopularArticles, PopularArticle{
			ID:    a.ID,
			Title: a.Title,
			Slug:  a.Slug,
			Views: a.Views,
		})
	}
	return nil
}

// recentActivities merges the newest articles, comments, threads and
// registrations into a single feed, newest first, capped.
func (s *AdminService) recentActivities(ctx context.Context) ([]Activity, error) {
	feed := make([]Activity, 0, 4*recentActivityLimit)

	articles, err := s.articles.Recent(ctx, recentActivityLimit)
	if err != nil {
		return nil, err
	}
	for _, a := range articles {
		feed = append(feed, Activity{
			Type:      "article",
			ID:        a.ID,
			Title:     a.Title,
			Username:  a.Author.Username,
			CreatedAt: a.CreatedAt,
		})
	}

	comments, err := s.comments.Recent(ctx, recentActivityLimit)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		feed = append(feed, Activity{
			Type:      "comment",
			ID:        c.ID,
			Title:     truncate(c.Content, 80),
			Username:  c.User.Username,
			CreatedAt: c.CreatedAt,
		})
	}

	threads, err := s.threads.Recent(ctx, recentActivityLimit)
	if err != nil {
		return nil, err
	}
	for _, th := range threads {
		feed = append(feed, Activity{
			Type:      "thread",
			ID:        th.ID,
			Title:     th.Title,
			Username:  th.User.Username,
			CreatedAt: th.CreatedAt,
		})
	}

	users, err := s.users.Recent(ctx, recentActivityLimit)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		feed = append(feed, Activity{
			Type:      "user",
			ID:        u.ID,
			Title:     "joined",
			Username:  u.Username,
			CreatedAt: u.CreatedAt,
		})
	}

	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].CreatedAt.After(feed[j].CreatedAt)
	})
	if len(feed) > recentActivityLimit {
		feed = feed[:recentActivityLimit]
	}
	return feed, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
