package post

import (
	"context"
	"errors"
	"strings"

	"github.com/linkora/linkora-server/cache"
	"github.com/linkora/linkora-server/cmd/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Engine owns every post mutation: creation, deletion, likes and comments.
// Reads live in the feed aggregator.
type Engine struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewEngine(gdb *gorm.DB, c *cache.Cache) *Engine {
	return &Engine{db: gdb, cache: c}
}

// LikeResult reports the state of a post's like set after a toggle.
type LikeResult struct {
	LikesCount int64 `json:"likes_count"`
	Liked      bool  `json:"liked"`
}

// CreatePost creates a post owned by actorID. imageURL may be empty; when
// set it is an opaque URL produced by the image storage collaborator.
func (e *Engine) CreatePost(ctx context.Context, actorID uint, text, imageURL string) (*models.Post, error) {
	if strings.TrimSpace(text) == "" {
		return nil, models.NewValidationError("text", "is required")
	}

	post := &models.Post{
		UserID:   actorID,
		Content:  text,
		ImageURL: imageURL,
	}
	if err := e.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, err
	}

	e.cache.InvalidateFeed(ctx)
	return post, nil
}

// ToggleLike flips actorID's membership in the post's like set and returns
// the resulting count and membership. One call, regardless of prior state.
func (e *Engine) ToggleLike(ctx context.Context, actorID, postID uint) (LikeResult, error) {
	var result LikeResult

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrPostNotFound
			}
			return err
		}

		del := tx.Where("user_id = ? AND post_id = ?", actorID, postID).
			Delete(&models.Like{})
		if del.Error != nil {
			return del.Error
		}

		if del.RowsAffected == 0 {
			// ON CONFLICT DO NOTHING instead of catching the unique
			// violation: on postgres a failed statement aborts the whole
			// transaction, which would take the Count below down with it.
			// A concurrent like from the same actor winning the index is
			// fine either way; membership is what both calls wanted.
			like := models.Like{UserID: actorID, PostID: postID}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
			if res.Error != nil {
				return res.Error
			}
			result.Liked = true
		}

		return tx.Model(&models.Like{}).
			Where("post_id = ?", postID).
			Count(&result.LikesCount).Error
	})
	if err != nil {
		return LikeResult{}, err
	}

	e.cache.InvalidateFeed(ctx)
	return result, nil
}

// AddComment appends a comment to the post's comment sequence.
func (e *Engine) AddComment(ctx context.Context, actorID, postID uint, text string) (*models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, models.NewValidationError("text", "is required")
	}

	var comment *models.Comment
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrPostNotFound
			}
			return err
		}

		comment = &models.Comment{
			UserID:  actorID,
			PostID:  postID,
			Content: text,
		}
		return tx.Create(comment).Error
	})
	if err != nil {
		return nil, err
	}

	e.cache.InvalidateFeed(ctx)
	return comment, nil
}

// DeletePost removes a post together with its likes and comments. Only the
// owner may delete; everything goes in one transaction so a failed delete
// never leaves orphaned comments.
func (e *Engine) DeletePost(ctx context.Context, actorID, postID uint) error {
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrPostNotFound
			}
			return err
		}

		if post.UserID != actorID {
			return models.ErrForbidden
		}

		if err := tx.Where("post_id = ?", postID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		return err
	}

	e.cache.InvalidateFeed(ctx)
	return nil
}
