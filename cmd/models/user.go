package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username           string `gorm:"column:username;size:50;uniqueIndex;not null" json:"username"`
	Email              string `gorm:"column:email;size:255;uniqueIndex;not null" json:"email"`
	PasswordHash       string `gorm:"column:password_hash;size:255;not null" json:"-"`
	Bio                string `gorm:"column:bio;type:text" json:"bio"`
	ProfilePicturePath string `gorm:"column:profile_picture_path;size:255" json:"profile_picture_path"`

	Posts []Post `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}

// PublicUser is the projection of a user that is safe to return to anyone:
// no email, no password hash.
type PublicUser struct {
	ID                 uint   `json:"id"`
	Username           string `json:"username"`
	ProfilePicturePath string `json:"profile_picture_path"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:                 u.ID,
		Username:           u.Username,
		ProfilePicturePath: u.ProfilePicturePath,
	}
}

type FollowStats struct {
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
}
