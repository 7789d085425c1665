package models

import "time"

// Comment is a reply attached to exactly one of an article or a thread.
// ParentID links replies into a tree rooted at a top-level comment.
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID" json:"user"`
	ArticleID  *uint     `gorm:"index" json:"article_id,omitempty"`
	ThreadID   *uint     `gorm:"index" json:"thread_id,omitempty"`
	ParentID   *uint     `gorm:"index" json:"parent_id,omitempty"`
	IsApproved bool      `gorm:"not null;default:true" json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Replies []Comment `gorm:"foreignKey:ParentID" json:"replies,omitempty"`
}

// TableName specifies the table name for GORM.
func (Comment) TableName() string {
	return "comments"
}

// HasValidTarget reports whether exactly one of the article/thread references is set.
func (c *Comment) HasValidTarget() bool {
	return (c.ArticleID != nil) != (c.ThreadID != nil)
}
