package user

import (
	"strings"

	"github.com/linkora/linkora-server/cmd/models"
	"gorm.io/gorm"
)

// SearchUsers matches usernames by case-insensitive substring and returns
// public projections only.
func SearchUsers(gdb *gorm.DB, query string) ([]models.PublicUser, error) {
	users := []models.PublicUser{}

	query = strings.TrimSpace(query)
	if query == "" {
		return users, nil
	}

	pattern := "%" + strings.ToLower(query) + "%"
	err := gdb.Model(&models.User{}).
		Select("id, username, profile_picture_path").
		Where("LOWER(username) LIKE ?", pattern).
		Order("username ASC").
		Scan(&users).Error
	if err != nil {
		return nil, err
	}

	return users, nil
}
