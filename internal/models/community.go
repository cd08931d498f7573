package models

import (
	"database/sql"
	"time"
)

// Community represents a community
type Community struct {
	ID          int64          `gorm:"primaryKey;autoIncrement;column:id"`
	Name        string         `gorm:"type:varchar(32);not null;uniqueIndex:burrow_communities_ux1;column:name"`
	Title       string         `gorm:"type:varchar(64);not null;default:'';column:title"`
	Description string         `gorm:"type:varchar(5000);not null;default:'';column:description"`
	Rules       sql.NullString `gorm:"type:text;column:rules"`
	CreatorID   int64          `gorm:"not null;column:creator_id"`
	IsPrivate   bool           `gorm:"not null;default:false;column:is_private"`

	// MembersCount mirrors the burrow_community_members relation
	MembersCount int64 `gorm:"not null;default:0;column:members_count"`

	CreatedAt time.Time `gorm:"not null;column:created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at"`

	// Relationships
	Creator *User `gorm:"foreignKey:CreatorID;references:ID"`
}

// TableName specifies the table name for Community
func (Community) TableName() string {
	return "burrow_communities"
}

// CommunityModerator represents a community's moderator set.
// The creator is inserted here at community creation and cannot be removed.
type CommunityModerator struct {
	CommunityID int64     `gorm:"primaryKey;column:community_id"`
	UserID      int64     `gorm:"primaryKey;column:user_id"`
	CreatedAt   time.Time `gorm:"not null;column:created_at"`

	// Relationships
	Community *Community `gorm:"foreignKey:CommunityID;references:ID"`
	User      *User      `gorm:"foreignKey:UserID;references:ID"`
}

// TableName specifies the table name for CommunityModerator
func (CommunityModerator) TableName() string {
	return "burrow_community_moderators"
}

// CommunityMember represents a community membership
type CommunityMember struct {
	CommunityID int64     `gorm:"primaryKey;column:community_id"`
	UserID      int64     `gorm:"primaryKey;column:user_id"`
	CreatedAt   time.Time `gorm:"not null;column:created_at"`

	// Relationships
	Community *Community `gorm:"foreignKey:CommunityID;references:ID"`
	User      *User      `gorm:"foreignKey:UserID;references:ID"`
}

// TableName specifies the table name for CommunityMember
func (CommunityMember) TableName() string {
	return "burrow_community_members"
}
