package feed

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/linkora/linkora-server/cache"
	"github.com/linkora/linkora-server/cmd/models"
	"gorm.io/gorm"
)

// Aggregator is the read path over posts. It never mutates anything; the
// engagement engine owns writes and invalidates the feed cache.
type Aggregator struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewAggregator(gdb *gorm.DB, c *cache.Cache) *Aggregator {
	return &Aggregator{db: gdb, cache: c}
}

// FeedPost is a post joined with its author's public projection.
type FeedPost struct {
	ID            uint              `json:"id"`
	Content       string            `json:"content"`
	ImageURL      string            `json:"image_url,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	Author        models.PublicUser `json:"author"`
	LikesCount    int               `json:"likes_count"`
	CommentsCount int               `json:"comments_count"`
	LikedBy       []uint            `json:"liked_by"`
	Comments      []FeedComment     `json:"comments,omitempty"`
}

type FeedComment struct {
	ID        uint              `json:"id"`
	Content   string            `json:"content"`
	CreatedAt time.Time         `json:"created_at"`
	Author    models.PublicUser `json:"author"`
}

// Global returns every post, newest first, ties broken by id so the order is
// stable. Served from the cache when a fresh copy exists.
func (a *Aggregator) Global(ctx context.Context) ([]FeedPost, error) {
	if payload, ok := a.cache.GetFeed(ctx); ok {
		var feed []FeedPost
		if err := json.Unmarshal(payload, &feed); err == nil {
			return feed, nil
		}
	}

	feed, err := a.queryPosts(ctx, nil)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(feed); err == nil {
		a.cache.SetFeed(ctx, payload)
	}

	return feed, nil
}

// ForUser returns one author's posts in the same order as the global feed.
func (a *Aggregator) ForUser(ctx context.Context, userID uint) ([]FeedPost, error) {
	var user models.User
	if err := a.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrUserNotFound
		}
		return nil, err
	}

	return a.queryPosts(ctx, &userID)
}

// PostByID returns one post with its full comment listing.
func (a *Aggregator) PostByID(ctx context.Context, postID uint) (*FeedPost, error) {
	var post models.Post
	err := a.db.WithContext(ctx).
		Preload("User").
		Preload("Likes").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC, comments.id ASC")
		}).
		Preload("Comments.User").
		First(&post, postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrPostNotFound
		}
		return nil, err
	}

	view := toFeedPost(&post, true)
	return &view, nil
}

func (a *Aggregator) queryPosts(ctx context.Context, userID *uint) ([]FeedPost, error) {
	query := a.db.WithContext(ctx).
		Preload("User").
		Preload("Likes").
		Preload("Comments").
		Order("posts.created_at DESC, posts.id DESC")

	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var posts []models.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}

	feed := make([]FeedPost, 0, len(posts))
	for i := range posts {
		feed = append(feed, toFeedPost(&posts[i], false))
	}
	return feed, nil
}

func toFeedPost(post *models.Post, includeComments bool) FeedPost {
	view := FeedPost{
		ID:            post.ID,
		Content:       post.Content,
		ImageURL:      post.ImageURL,
		CreatedAt:     post.CreatedAt,
		LikesCount:    len(post.Likes),
		CommentsCount: len(post.Comments),
		LikedBy:       make([]uint, 0, len(post.Likes)),
	}

	if post.User != nil {
		view.Author = post.User.Public()
	}

	for _, like := range post.Likes {
		view.LikedBy = append(view.LikedBy, like.UserID)
	}

	if includeComments {
		view.Comments = make([]FeedComment, 0, len(post.Comments))
		for i := range post.Comments {
			comment := &post.Comments[i]
			fc := FeedComment{
				ID:        comment.ID,
				Content:   comment.Content,
				CreatedAt: comment.CreatedAt,
			}
			if comment.User != nil {
				fc.Author = comment.User.Public()
			}
			view.Comments = append(view.Comments, fc)
		}
	}

	return view
}
