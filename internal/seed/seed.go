// Package seed populates the database with demo content for development.
package seed

import (
	"fmt"
	"log"
	"strings"
	"time"

	"hoopsnews/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumArticles int
	NumThreads  int
	ShouldClean bool
}

var categoryNames = map[string]string{
	"News":         "League news and breaking stories",
	"Game Recaps":  "Nightly recaps and box score breakdowns",
	"Analysis":     "Film study and advanced stats",
	"Trade Rumors": "Front office moves and rumor tracking",
	"Draft":        "Prospect profiles and mock drafts",
}

var tagPool = []string{
	"lakers", "celtics", "warriors", "nuggets", "knicks", "heat",
	"playoffs", "mvp-race", "trade-deadline", "free-agency", "rookies",
	"injuries", "defense", "three-point", "coaching",
}

// Seed populates the database with demo data.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding %d users, %d articles, %d threads...", opts.NumUsers, opts.NumArticles, opts.NumThreads)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway")
		}
	}

	f := NewFactory(db)

	admin, err := f.CreateUser(func(u *models.User) {
		u.Username = "admin"
		u.Email = "admin@hoopsnews.local"
		u.FullName = "Site Admin"
		u.IsAdmin = true
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	users := []*models.User{admin}
	for i := 1; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("created %d users (password for all: password123)", len(users))

	categories, err := createCategories(db)
	if err != nil {
		return fmt.Errorf("create categories: %w", err)
	}
	log.Printf("created %d categories", len(categories))

	var articles []*models.Article
	for i := 0; i < opts.NumArticles; i++ {
		author := users[f.rand.Intn(len(users))]
		category := categories[f.rand.Intn(len(categories))]

		article, err := f.CreateArticle(author, func(a *models.Article) {
			a.CategoryID = &category.ID
		})
		if err != nil {
			return fmt.Errorf("create article: %w", err)
		}
		articles = append(articles, article)
	}
	log.Printf("created %d articles", len(articles))

	var threads []*models.Thread
	for i := 0; i < opts.NumThreads; i++ {
		author := users[f.rand.Intn(len(users))]
		thread, err := f.CreateThread(author)
		if err != nil {
			return fmt.Errorf("create thread: %w", err)
		}
		threads = append(threads, thread)
	}
	log.Printf("created %d threads", len(threads))

	commentCount, err := f.SeedDiscussion(users, articles, threads)
	if err != nil {
		return fmt.Errorf("seed comments: %w", err)
	}
	log.Printf("created %d comments", commentCount)

	return nil
}

func createCategories(db *gorm.DB) ([]*models.Category, error) {
	var categories []*models.Category
	for name, description := range categoryNames {
		category := &models.Category{
			Name:        name,
			Slug:        slugFor(name),
			Description: description,
		}
		// Idempotent: a rerun without -clean keeps existing rows.
		if err := db.Where("slug = ?", category.Slug).FirstOrCreate(category).Error; err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, nil
}

func slugFor(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

// clearData removes seeded content in dependency order.
func clearData(db *gorm.DB) error {
	tables := []string{
		"comments", "article_tags", "thread_tags",
		"articles", "threads", "tags", "categories", "users",
	}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	log.Println("cleared existing data")
	return nil
}

// spreadCreatedAt returns a timestamp up to maxDays in the past so listings
// do not look like everything was written in the same second.
func spreadCreatedAt(r interface{ Intn(int) int }, maxDays int) time.Time {
	daysBack := r.Intn(maxDays)
	hoursBack := r.Intn(24)
	minsBack := r.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour -
		time.Duration(minsBack)*time.Minute)
}
