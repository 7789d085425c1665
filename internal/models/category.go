package models

// Category is a flat classification for articles.
type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:50;not null;uniqueIndex" json:"name"`
	Slug        string `gorm:"size:50;not null;uniqueIndex" json:"slug"`
	Description string `gorm:"type:text" json:"description"`

	Articles []Article `gorm:"foreignKey:CategoryID" json:"-"`
}

// TableName specifies the table name for GORM.
func (Category) TableName() string {
	return "categories"
}
