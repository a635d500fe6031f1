package models

import (
	"time"

	"gorm.io/gorm"
)

type Post struct {
	gorm.Model
	UserID   uint   `gorm:"column:user_id;not null;index" json:"user_id"`
	Content  string `gorm:"column:content;type:text;not null" json:"content"`
	ImageURL string `gorm:"column:image_url;size:500" json:"image_url,omitempty"`

	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Likes    []Like    `gorm:"foreignKey:PostID" json:"likes,omitempty"`
	Comments []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
}

// Like rows are unique per (user, post); the composite index makes a like a
// set membership rather than a counter, so concurrent toggles cannot
// duplicate it. Unliking is a hard delete so the next like does not collide
// with a tombstone.
type Like struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"column:user_id;not null;uniqueIndex:idx_likes_user_post" json:"user_id"`
	PostID uint `gorm:"column:post_id;not null;uniqueIndex:idx_likes_user_post" json:"post_id"`

	CreatedAt time.Time `json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

type Comment struct {
	gorm.Model
	UserID  uint   `gorm:"column:user_id;not null" json:"user_id"`
	PostID  uint   `gorm:"column:post_id;not null;index" json:"post_id"`
	Content string `gorm:"column:content;type:text;not null" json:"content"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
