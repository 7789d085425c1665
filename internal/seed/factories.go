package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"hoopsnews/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	rand *rand.Rand

	// bcrypt of "password123", computed once; hashing per user is slow.
	passwordHash string
}

// NewFactory creates a Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	// #nosec G404: acceptable for seeding
	return &Factory{
		db:           db,
		rand:         rand.New(rand.NewSource(time.Now().UnixNano())),
		passwordHash: string(hash),
	}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username:  strings.ToLower(gofakeit.Username()) + fmt.Sprintf("%d", gofakeit.Number(10, 99)),
		Email:     strings.ToLower(gofakeit.Email()),
		Password:  f.passwordHash,
		FullName:  gofakeit.Name(),
		Bio:       gofakeit.Sentence(10),
		AvatarURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		IsActive:  true,
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateArticle constructs and persists a published article for the given
// author, with a unique slug, a view count, and one to three tags.
func (f *Factory) CreateArticle(author *models.User, overrides ...func(*models.Article)) (*models.Article, error) {
	title := gofakeit.Sentence(6)
	title = strings.TrimSuffix(title, ".")

	now := time.Now()
	article := &models.Article{
		Title:       title,
		Slug:        fmt.Sprintf("%s-%d", slugFor(title), gofakeit.Number(1000, 9999)),
		Excerpt:     gofakeit.Sentence(15),
		Content:     gofakeit.Paragraph(3, 5, 8, "\n\n"),
		ImageURL:    fmt.Sprintf("https://picsum.photos/seed/%s/1200/630", gofakeit.UUID()),
		Views:       int64(f.rand.Intn(5000)),
		Status:      models.ArticleStatusPublished,
		AuthorID:    author.ID,
		PublishedAt: &now,
		CreatedAt:   spreadCreatedAt(f.rand, 90),
	}

	// Roughly one in eight stays a draft.
	if f.rand.Intn(8) == 0 {
		article.Status = models.ArticleStatusDraft
		article.PublishedAt = nil
		article.Views = 0
	}

	for _, override := range overrides {
		override(article)
	}

	if err := f.db.Create(article).Error; err != nil {
		return nil, err
	}

	if err := f.attachTags(article, "article_tags", "article_id"); err != nil {
		return nil, err
	}
	return article, nil
}

// CreateThread constructs and persists a forum thread for the given author.
func (f *Factory) CreateThread(author *models.User, overrides ...func(*models.Thread)) (*models.Thread, error) {
	thread := &models.Thread{
		Title:     strings.TrimSuffix(gofakeit.Question(), "?") + "?",
		Content:   gofakeit.Paragraph(1, 3, 6, "\n"),
		UserID:    author.ID,
		CreatedAt: spreadCreatedAt(f.rand, 30),
	}

	for _, override := range overrides {
		override(thread)
	}

	if err := f.db.Create(thread).Error; err != nil {
		return nil, err
	}

	if err := f.attachTags(thread, "thread_tags", "thread_id"); err != nil {
		return nil, err
	}
	return thread, nil
}

// CreateComment persists a comment from user on an article or thread,
// optionally as a reply to parent.
func (f *Factory) CreateComment(user *models.User, articleID, threadID, parentID *uint) (*models.Comment, error) {
	comment := &models.Comment{
		Content:    gofakeit.Sentence(12),
		UserID:     user.ID,
		ArticleID:  articleID,
		ThreadID:   threadID,
		ParentID:   parentID,
		IsApproved: f.rand.Intn(10) != 0,
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// SeedDiscussion scatters comments across articles and threads, replying
// to some of them so listings show nested trees. Returns the number of
// comments created.
func (f *Factory) SeedDiscussion(users []*models.User, articles []*models.Article, threads []*models.Thread) (int, error) {
	count := 0

	for _, article := range articles {
		if !article.Published() {
			continue
		}
		id := article.ID
		n, err := f.seedCommentTree(users, &id, nil)
		if err != nil {
			return count, err
		}
		count += n
	}

	for _, thread := range threads {
		id := thread.ID
		n, err := f.seedCommentTree(users, nil, &id)
		if err != nil {
			return count, err
		}
		count += n
	}

	return count, nil
}

func (f *Factory) seedCommentTree(users []*models.User, articleID, threadID *uint) (int, error) {
	count := 0
	for i := 0; i < f.rand.Intn(6); i++ {
		user := users[f.rand.Intn(len(users))]
		top, err := f.CreateComment(user, articleID, threadID, nil)
		if err != nil {
			return count, err
		}
		count++

		for j := 0; j < f.rand.Intn(3); j++ {
			replier := users[f.rand.Intn(len(users))]
			if _, err := f.CreateComment(replier, articleID, threadID, &top.ID); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

// attachTags links one to three random tags to the owner row through the
// given join table, creating tag rows by name as needed.
func (f *Factory) attachTags(owner any, joinTable, ownerColumn string) error {
	var ownerID uint
	switch v := owner.(type) {
	case *models.Article:
		ownerID = v.ID
	case *models.Thread:
		ownerID = v.ID
	default:
		return fmt.Errorf("attachTags: unsupported owner %T", owner)
	}

	picked := map[string]bool{}
	for i := 0; i < 1+f.rand.Intn(3); i++ {
		picked[tagPool[f.rand.Intn(len(tagPool))]] = true
	}

	for name := range picked {
		tag := &models.Tag{Name: name}
		if err := f.db.Where("name = ?", name).FirstOrCreate(tag).Error; err != nil {
			return err
		}
		err := f.db.Exec(
			fmt.Sprintf("INSERT INTO %s (%s, tag_id) VALUES (?, ?)", joinTable, ownerColumn),
			ownerID, tag.ID,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}
