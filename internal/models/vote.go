package models

import "time"

// VoteDirection is the direction of a cast vote
type VoteDirection int16

// Vote direction constants
const (
	VoteUp   VoteDirection = 1
	VoteDown VoteDirection = -1
)

// String returns the wire name of the direction
func (d VoteDirection) String() string {
	switch d {
	case VoteUp:
		return "up"
	case VoteDown:
		return "down"
	}
	return "unknown"
}

// Vote represents one user's vote on a post or comment.
// The unique index over (user_id, target_type, target_id) guarantees a user
// appears in at most one of a target's vote sets.
type Vote struct {
	ID        int64         `gorm:"primaryKey;autoIncrement;column:id"`
	UserID    int64         `gorm:"not null;index:burrow_votes_ix1;column:user_id"`
	Target    TargetRef     `gorm:"embedded"`
	Direction VoteDirection `gorm:"type:smallint;not null;column:direction"`
	CreatedAt time.Time     `gorm:"not null;column:created_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID;references:ID"`
}

// TableName specifies the table name for Vote
func (Vote) TableName() string {
	return "burrow_votes"
}
