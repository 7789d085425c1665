package models

import "time"

// Thread represents a community forum post.
type Thread struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Tags     []Tag     `gorm:"many2many:thread_tags;constraint:OnDelete:CASCADE" json:"tags"`
	Comments []Comment `gorm:"foreignKey:ThreadID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`

	// CommentCount is not persisted; computed at query time.
	CommentCount int64 `gorm:"->;-:migration" json:"comment_count"`
}

// TableName specifies the table name for GORM.
func (Thread) TableName() string {
	return "threads"
}
