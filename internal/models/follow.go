package models

import (
	"time"
)

// Follow represents a follow relationship between two users
type Follow struct {
	FollowerID int64     `gorm:"primaryKey;column:follower_id"`
	FollowedID int64     `gorm:"primaryKey;column:followed_id"`
	CreatedAt  time.Time `gorm:"not null;column:created_at"`

	// Relationships
	Follower *User `gorm:"foreignKey:FollowerID;references:ID"`
	Followed *User `gorm:"foreignKey:FollowedID;references:ID"`
}

// TableName specifies the table name for Follow
func (Follow) TableName() string {
	return "burrow_follows"
}
