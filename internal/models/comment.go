package models

import (
	"database/sql"
	"time"
)

// Comment represents a threaded comment on a post
type Comment struct {
	ID       int64         `gorm:"primaryKey;autoIncrement;column:id"`
	PostID   int64         `gorm:"not null;index:burrow_comments_ix1;column:post_id"`
	ParentID sql.NullInt64 `gorm:"index:burrow_comments_ix2;column:parent_id"`
	AuthorID int64         `gorm:"not null;index:burrow_comments_ix3;column:author_id"`
	Body     string        `gorm:"type:text;not null;default:'';column:body"`

	// Path is the materialized path "postID/commentID", set in a second
	// write after insert since the id is generated by the database
	Path string `gorm:"type:varchar(64);not null;default:'';column:path"`

	UpvoteCount   int64 `gorm:"not null;default:0;column:upvote_count"`
	DownvoteCount int64 `gorm:"not null;default:0;column:downvote_count"`
	Score         int64 `gorm:"not null;default:0;column:score"`
	RepliesCount  int64 `gorm:"not null;default:0;column:replies_count"`

	Status        string          `gorm:"type:varchar(16);not null;default:'active';column:status"`
	SpamScore     sql.NullFloat64 `gorm:"column:spam_score"`
	ToxicityScore sql.NullFloat64 `gorm:"column:toxicity_score"`

	CreatedAt time.Time `gorm:"not null;column:created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at"`

	// Relationships
	Post     *Post     `gorm:"foreignKey:PostID;references:ID"`
	Parent   *Comment  `gorm:"foreignKey:ParentID;references:ID"`
	Children []Comment `gorm:"foreignKey:ParentID;references:ID"`
	Author   *User     `gorm:"foreignKey:AuthorID;references:ID"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "burrow_comments"
}
