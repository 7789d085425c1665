package models

import "time"

// ArticleStatus defines the publication state of an article.
type ArticleStatus string

const (
	// ArticleStatusDraft indicates an article visible only to its author and admins.
	ArticleStatusDraft ArticleStatus = "draft"
	// ArticleStatusPublished indicates an article visible to everyone.
	ArticleStatusPublished ArticleStatus = "published"
)

// Valid reports whether the status is one of the known publication states.
func (s ArticleStatus) Valid() bool {
	return s == ArticleStatusDraft || s == ArticleStatusPublished
}

// Article represents a news article written by a user.
type Article struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Title       string        `gorm:"size:255;not null" json:"title"`
	Slug        string        `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Excerpt     string        `gorm:"size:500" json:"excerpt"`
	Content     string        `gorm:"type:text;not null" json:"content"`
	ImageURL    string        `gorm:"size:255" json:"image_url"`
	Views       int64         `gorm:"not null;default:0" json:"views"`
	Status      ArticleStatus `gorm:"type:varchar(20);not null;default:'published'" json:"status"`
	AuthorID    uint          `gorm:"not null;index" json:"author_id"`
	Author      User          `gorm:"foreignKey:AuthorID" json:"author"`
	CategoryID  *uint         `gorm:"index" json:"category_id,omitempty"`
	Category    *Category     `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	PublishedAt *time.Time    `json:"published_at"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	Tags     []Tag     `gorm:"many2many:article_tags;constraint:OnDelete:CASCADE" json:"tags"`
	Comments []Comment `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM.
func (Article) TableName() string {
	return "articles"
}

// Published reports whether the article is publicly visible.
func (a *Article) Published() bool {
	return a.Status == ArticleStatusPublished
}
