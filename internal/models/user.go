// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents a registered account. Passwords are stored as bcrypt hashes only.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email     string    `gorm:"size:120;not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"size:128;not null" json:"-"`
	FullName  string    `gorm:"size:100" json:"full_name"`
	Bio       string    `gorm:"size:500" json:"bio"`
	AvatarURL string    `gorm:"size:255" json:"avatar_url"`
	IsAdmin   bool      `gorm:"not null;default:false" json:"is_admin"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Articles []Article `gorm:"foreignKey:AuthorID" json:"-"`
	Threads  []Thread  `gorm:"foreignKey:UserID" json:"-"`
	Comments []Comment `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

// PublicProfile is the projection of a user exposed on public endpoints.
type PublicProfile struct {
	ID            uint      `json:"id"`
	Username      string    `json:"username"`
	FullName      string    `json:"full_name"`
	Bio           string    `json:"bio"`
	AvatarURL     string    `json:"avatar_url"`
	CreatedAt     time.Time `json:"created_at"`
	ArticlesCount int64     `json:"articles_count"`
}

// Profile returns the public projection of the user.
func (u *User) Profile(articlesCount int64) PublicProfile {
	return PublicProfile{
		ID:            u.ID,
		Username:      u.Username,
		FullName:      u.FullName,
		Bio:           u.Bio,
		AvatarURL:     u.AvatarURL,
		CreatedAt:     u.CreatedAt,
		ArticlesCount: articlesCount,
	}
}
