package models

// Tag is a free-form label shared by articles and threads.
// Tags are created lazily by name when first referenced.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:50;not null;uniqueIndex" json:"name"`

	Articles []Article `gorm:"many2many:article_tags" json:"-"`
	Threads  []Thread  `gorm:"many2many:thread_tags" json:"-"`
}

// TableName specifies the table name for GORM.
func (Tag) TableName() string {
	return "tags"
}
