package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ArticleKeyPrefix  = "article:%s"
	CategoryKeyPrefix = "category:%s"
	ProfileKeyPrefix  = "profile:%s"
	StatsKey          = "admin:stats"
)

const (
	ArticleTTL  = 10 * time.Minute
	CategoryTTL = 30 * time.Minute
	ProfileTTL  = 5 * time.Minute
	StatsTTL    = time.Minute
)

func ArticleKey(slug string) string {
	return fmt.Sprintf(ArticleKeyPrefix, slug)
}

func CategoryKey(slug string) string {
	return fmt.Sprintf(CategoryKeyPrefix, slug)
}

func ProfileKey(username string) string {
	return fmt.Sprintf(ProfileKeyPrefix, username)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateArticle(ctx context.Context, slug string) {
	Invalidate(ctx, ArticleKey(slug), StatsKey)
}

func InvalidateCategory(ctx context.Context, slug string) {
	Invalidate(ctx, CategoryKey(slug))
}

func InvalidateProfile(ctx context.Context, username string) {
	Invalidate(ctx, ProfileKey(username))
}

func InvalidateStats(ctx context.Context) {
	Invalidate(ctx, StatsKey)
}
