package models

import "time"

// Follow is a directed edge from one user to another. Both the followers and
// the following views of a relationship are derived from the same row, so a
// half-written edge is unrepresentable, and the composite unique index
// rejects a duplicate edge created by a concurrent follow.
//
// Deletes are hard deletes: a removed edge must not block the pair from
// following again.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"column:follower_id;not null;uniqueIndex:idx_follows_edge" json:"follower_id"`
	FolloweeID uint      `gorm:"column:followee_id;not null;uniqueIndex:idx_follows_edge;index" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`

	Follower *User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Followee *User `gorm:"foreignKey:FolloweeID" json:"followee,omitempty"`
}
