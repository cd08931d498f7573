package models

import (
	"database/sql"
	"time"
)

// User represents a platform account
type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement;column:id"`
	Username     string `gorm:"type:varchar(32);not null;uniqueIndex:burrow_users_ux1;column:username"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex:burrow_users_ux2;column:email"`
	// Phone is optional; unset reads as NULL so accounts without one
	// never collide on the unique index
	Phone        sql.NullString `gorm:"type:varchar(32);uniqueIndex:burrow_users_ux3;column:phone"`
	PasswordHash string         `gorm:"type:varchar(255);not null;column:password_hash"`
	Role         string         `gorm:"type:varchar(16);not null;default:'user';column:role"`
	IsVerified   bool           `gorm:"not null;default:false;column:is_verified"`

	// Profile fields
	Bio       sql.NullString `gorm:"type:varchar(500);column:bio"`
	Gender    sql.NullString `gorm:"type:varchar(16);column:gender"`
	Website   sql.NullString `gorm:"type:varchar(255);column:website"`
	AvatarID  string         `gorm:"type:varchar(255);not null;default:'';column:avatar_id"`
	AvatarURL string         `gorm:"type:varchar(1024);not null;default:'';column:avatar_url"`

	// Denormalized counters, kept in sync with their source relations
	// by every mutating operation
	NumPosts     int64 `gorm:"not null;default:0;column:num_posts"`
	NumComments  int64 `gorm:"not null;default:0;column:num_comments"`
	NumFollowers int64 `gorm:"not null;default:0;column:num_followers"`
	NumFollowing int64 `gorm:"not null;default:0;column:num_following"`

	CreatedAt time.Time `gorm:"not null;column:created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "burrow_users"
}

// Role constants
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// SavedPost represents an entry in a user's saved-posts set
type SavedPost struct {
	UserID    int64     `gorm:"primaryKey;column:user_id"`
	PostID    int64     `gorm:"primaryKey;column:post_id"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID;references:ID"`
	Post *Post `gorm:"foreignKey:PostID;references:ID"`
}

// TableName specifies the table name for SavedPost
func (SavedPost) TableName() string {
	return "burrow_saved_posts"
}
