package post

import (
	"context"
	"testing"
	"time"

	"github.com/linkora/linkora-server/cmd/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gdb.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Post{},
		&models.Like{},
		&models.Comment{},
	))

	return gdb
}

func createUser(t *testing.T, gdb *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, gdb.Create(user).Error)
	return user
}

func TestCreatePost(t *testing.T) {
	gdb := testDB(t)
	engine := NewEngine(gdb, nil)
	ctx := context.Background()

	alice := createUser(t, gdb, "alice")

	post, err := engine.CreatePost(ctx, alice.ID, "hello", "")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, post.UserID)
	assert.Equal(t, "hello", post.Content)
	assert.NotZero(t, post.ID)
	assert.False(t, post.CreatedAt.IsZero())
}

func TestCreatePost_BlankText(t *testing.T) {
	gdb := testDB(t)
	engine := NewEngine(gdb, nil)
	ctx := context.Background()

	alice := createUser(t, gdb, "alice")

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := engine.CreatePost(ctx, alice.ID, text, "")
		var validationErr *models.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	}
}

func TestToggleLike(t *testing.T) {
	gdb := testDB(t)
	engine := NewEngine(gdb, nil)
	ctx := context.Background()

	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")

	post, err := engine.CreatePost(ctx, alice.ID, "hello", "")
	require.NoError(t, err)

	result, err := engine.ToggleLike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, result.Liked)
	assert.EqualValues(t, 1, result.LikesCount)

	result, err = engine.ToggleLike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, result.Liked)
	assert.EqualValues(t, 0, result.LikesCount)
}

func TestToggleLike_Involution(t *testing.T) {
	gdb := testDB(t)
	engine := NewEngine(gdb, nil)
	ctx := context.Background()

	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")
	carol := createUser(t, gdb, "carol")

	post, err := engine.CreatePost(ctx, alice.ID, "hello", "")
	require.NoError(t, err)

	_, err = engine.ToggleLike(ctx, carol.ID, post.ID)
	require.NoError(t, err)

	// Two toggles by bob leave carol's like as the only one.
	_, err = engine.ToggleLike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	result, err := engine.ToggleLike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, result.Liked)
	assert.EqualValues(t, 1, result.LikesCount)

	var likes []models.Like
	require.NoError(t, gdb.Where("post_id = ?", post.ID).Find(&likes).Error)
	require.Len(t, likes, 1)
	assert.Equal(t, carol.ID, likes[0].UserID)
}

func TestToggleLike_ConcurrentLikeSameActor(t *testing.T) {
	gdb := testDB(t)
	engine := NewEngine(gdb, nil)
	ctx := context.Background()

	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")

	post, err := engine.CreatePost(ctx, alice.ID, "hello", "")
	require.NoError(t, err)

	// Slip bob's like in between the engine's delete and insert, the way a
	// parallel toggle that wins the unique index would.
	injected := false
	require.NoError(t, gdb.Callback().Create().Before("gorm:create").Register("competing_like", func(tx *gorm.DB) {
		if injected {
			return
		}
		if _, ok := tx.Statement.Dest.(*models.Like); !ok {
			return
		}
		injected = true
		tx.Session(&gorm.Session{NewDB: true, SkipHooks: true}).Exec(
			"INSERT INTO likes (user_id, post_id, created_at) VALUES (?, ?, ?)",
			bob.ID, post.ID, time.Now(),
		)
	}))
	defer gdb.Callback().Create().Remove("competing_like")

	// The toggle loses the insert race but still reports membership; the
	// transaction survives and the count reflects the single row.
	result, err := engine.ToggleLike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, injected)
	assert.True(t, result.Liked)
	assert.EqualValues(t, 1, result.LikesCount)

	var likes []models.Like
	require.NoError(t, gdb.Where("post_id = ?", post.ID).Find(&likes).Error)
	require.Len(t, likes, 1)
	assert.Equal(t, bob.ID, likes[0].UserID)
}

func TestToggleLike_PostMissing(t *testing.T) {
	gdb := testDB(t)
	engine := NewEngine(gdb, nil)

	alice := createUser(t, gdb, "alice")

	_, err := engine.ToggleLike(context.Background(), alice.ID, 42)
	assert.ErrorIs(t, err, models.ErrPostNotFound)
}

func TestAddComment(t *testing.T) {
	gdb := testDB(t)
	engine := NewEngine(gdb, nil)
	ctx := context.Background()

	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")

	post, err := engine.CreatePost(ctx, alice.ID, "hello", "")
	require.NoError(t, err)

	comment, err := engine.AddComment(ctx, bob.ID, post.ID, "nice post")
	require.NoError(t, err)
	assert.NotZero(t, comment.ID)
	assert.Equal(t, bob.ID, comment.UserID)
	assert.Equal(t, post.ID, comment.PostID)
	assert.False(t, comment.CreatedAt.IsZero())

	_, err = engine.AddComment(ctx, bob.ID, post.ID, "  ")
	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	_, err = engine.AddComment(ctx, bob.ID, post.ID+100, "hi")
	assert.ErrorIs(t, err, models.ErrPostNotFound)
}

func TestDeletePost(t *testing.T) {
	gdb := testDB(t)
	engine := NewEngine(gdb, nil)
	ctx := context.Background()

	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")

	post, err := engine.CreatePost(ctx, alice.ID, "hello", "")
	require.NoError(t, err)

	_, err = engine.AddComment(ctx, bob.ID, post.ID, "first")
	require.NoError(t, err)
	_, err = engine.ToggleLike(ctx, bob.ID, post.ID)
	require.NoError(t, err)

	require.NoError(t, engine.DeletePost(ctx, alice.ID, post.ID))

	err = gdb.First(&models.Post{}, post.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// No orphaned comments or likes.
	var commentCount, likeCount int64
	require.NoError(t, gdb.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&commentCount).Error)
	require.NoError(t, gdb.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likeCount).Error)
	assert.Zero(t, commentCount)
	assert.Zero(t, likeCount)
}

func TestDeletePost_NotOwner(t *testing.T) {
	gdb := testDB(t)
	engine := NewEngine(gdb, nil)
	ctx := context.Background()

	alice := createUser(t, gdb, "alice")
	carol := createUser(t, gdb, "carol")

	post, err := engine.CreatePost(ctx, alice.ID, "hello", "")
	require.NoError(t, err)

	err = engine.DeletePost(ctx, carol.ID, post.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)

	// Post remains retrievable.
	require.NoError(t, gdb.First(&models.Post{}, post.ID).Error)
}

func TestDeletePost_Missing(t *testing.T) {
	gdb := testDB(t)
	engine := NewEngine(gdb, nil)

	alice := createUser(t, gdb, "alice")

	err := engine.DeletePost(context.Background(), alice.ID, 42)
	assert.ErrorIs(t, err, models.ErrPostNotFound)
}
