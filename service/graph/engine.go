package graph

import (
	"errors"

	"github.com/linkora/linkora-server/cmd/models"
	"github.com/linkora/linkora-server/db"
	"gorm.io/gorm"
)

// Engine is the single source of truth for follow relationships. All edge
// mutations go through it; handlers never touch the follows table directly.
type Engine struct {
	db *gorm.DB
}

func NewEngine(gdb *gorm.DB) *Engine {
	return &Engine{db: gdb}
}

// Follow creates the edge actor -> target. Following yourself is rejected,
// as is following someone twice; the second case is reported explicitly
// rather than silently succeeding so clients can distinguish a no-op.
func (e *Engine) Follow(actorID, targetID uint) error {
	if actorID == targetID {
		return models.ErrSelfFollow
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		var target models.User
		if err := tx.First(&target, targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrUserNotFound
			}
			return err
		}

		var existing models.Follow
		err := tx.Where("follower_id = ? AND followee_id = ?", actorID, targetID).
			First(&existing).Error
		if err == nil {
			return models.ErrAlreadyFollowing
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		follow := models.Follow{
			FollowerID: actorID,
			FolloweeID: targetID,
		}
		if err := tx.Create(&follow).Error; err != nil {
			// A concurrent follow between the same pair lost the race to
			// the unique index.
			if db.IsDuplicateKey(err) {
				return models.ErrAlreadyFollowing
			}
			return err
		}
		return nil
	})
}

// Unfollow removes the edge actor -> target. The delete is conditional on
// the edge row, so a parallel unfollow that got there first surfaces as
// ErrNotFollowing instead of corrupting anything.
func (e *Engine) Unfollow(actorID, targetID uint) error {
	if actorID == targetID {
		return models.ErrSelfFollow
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		var target models.User
		if err := tx.First(&target, targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrUserNotFound
			}
			return err
		}

		result := tx.Where("follower_id = ? AND followee_id = ?", actorID, targetID).
			Delete(&models.Follow{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.ErrNotFollowing
		}
		return nil
	})
}

// Stats returns follower and following counts for a user.
func (e *Engine) Stats(userID uint) (models.FollowStats, error) {
	var stats models.FollowStats

	var user models.User
	if err := e.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return stats, models.ErrUserNotFound
		}
		return stats, err
	}

	if err := e.db.Model(&models.Follow{}).
		Where("followee_id = ?", userID).
		Count(&stats.FollowersCount).Error; err != nil {
		return stats, err
	}
	if err := e.db.Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Count(&stats.FollowingCount).Error; err != nil {
		return stats, err
	}

	return stats, nil
}

// Followers lists the users following userID, oldest edge first.
func (e *Engine) Followers(userID uint) ([]models.PublicUser, error) {
	return e.listEdgeUsers(userID, "followee_id", "follower_id")
}

// Following lists the users userID follows, oldest edge first.
func (e *Engine) Following(userID uint) ([]models.PublicUser, error) {
	return e.listEdgeUsers(userID, "follower_id", "followee_id")
}

func (e *Engine) listEdgeUsers(userID uint, whereColumn, joinColumn string) ([]models.PublicUser, error) {
	var user models.User
	if err := e.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrUserNotFound
		}
		return nil, err
	}

	users := []models.PublicUser{}
	err := e.db.Model(&models.Follow{}).
		Select("users.id, users.username, users.profile_picture_path").
		Joins("JOIN users ON users.id = follows."+joinColumn).
		Where("follows."+whereColumn+" = ?", userID).
		Order("follows.created_at ASC, follows.id ASC").
		Scan(&users).Error
	if err != nil {
		return nil, err
	}

	return users, nil
}
