package models

import (
	"database/sql"
	"time"
)

// Post represents a post
type Post struct {
	ID          int64          `gorm:"primaryKey;autoIncrement;column:id"`
	Title       string         `gorm:"type:varchar(300);not null;column:title"`
	Body        string         `gorm:"type:text;not null;default:'';column:body"`
	AuthorID    int64          `gorm:"not null;index:burrow_posts_ix1;column:author_id"`
	CommunityID sql.NullInt64  `gorm:"index:burrow_posts_ix2;column:community_id"`
	Type        string         `gorm:"type:varchar(16);not null;default:'text';column:type"`
	URL         sql.NullString `gorm:"type:varchar(2048);column:url"`

	// Media attachment, set by the object storage gateway
	MediaPublicID string `gorm:"type:varchar(255);not null;default:'';column:media_public_id"`
	MediaURL      string `gorm:"type:varchar(1024);not null;default:'';column:media_url"`

	// Vote bookkeeping; the burrow_votes relation is the source of truth
	// and score is always upvote_count - downvote_count
	UpvoteCount   int64 `gorm:"not null;default:0;column:upvote_count"`
	DownvoteCount int64 `gorm:"not null;default:0;column:downvote_count"`
	Score         int64 `gorm:"not null;default:0;column:score"`
	NumComments   int64 `gorm:"not null;default:0;column:num_comments"`

	Status        string          `gorm:"type:varchar(16);not null;default:'active';column:status"`
	SpamScore     sql.NullFloat64 `gorm:"column:spam_score"`
	ToxicityScore sql.NullFloat64 `gorm:"column:toxicity_score"`

	CreatedAt time.Time `gorm:"not null;column:created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at"`

	// Relationships
	Author    *User      `gorm:"foreignKey:AuthorID;references:ID"`
	Community *Community `gorm:"foreignKey:CommunityID;references:ID"`

	// Tags live in burrow_post_tags and are loaded on read paths
	Tags []string `gorm:"-"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "burrow_posts"
}

// Post type constants
const (
	PostTypeText  = "text"
	PostTypeLink  = "link"
	PostTypeImage = "image"
	PostTypeVideo = "video"
)

// Content status constants, shared by posts and comments
const (
	StatusActive  = "active"
	StatusFlagged = "flagged"
	StatusRemoved = "removed"
)

// MaxTitleLength is the longest accepted post title
const MaxTitleLength = 300

// ValidPostType reports whether t is a known post type
func ValidPostType(t string) bool {
	switch t {
	case PostTypeText, PostTypeLink, PostTypeImage, PostTypeVideo:
		return true
	}
	return false
}

// RequiresBody reports whether the post type requires a non-empty body
func RequiresBody(t string) bool {
	return t == PostTypeText || t == PostTypeLink
}

// PostTag represents a post-to-tag mapping
type PostTag struct {
	PostID int64  `gorm:"primaryKey;column:post_id"`
	Tag    string `gorm:"type:varchar(32);primaryKey;column:tag"`
}

// TableName specifies the table name for PostTag
func (PostTag) TableName() string {
	return "burrow_post_tags"
}
