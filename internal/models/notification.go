package models

import (
	"database/sql"
	"time"
)

// Notification represents a notification
type Notification struct {
	ID      int64  `gorm:"primaryKey;autoIncrement;column:id"`
	UserID  int64  `gorm:"not null;index:burrow_notifs_ix1;column:user_id"`
	Type    int16  `gorm:"type:smallint;not null;column:type_id"`
	Message string `gorm:"type:varchar(500);not null;column:message"`

	ActorID     sql.NullInt64 `gorm:"column:actor_id"`
	PostID      sql.NullInt64 `gorm:"column:post_id"`
	CommentID   sql.NullInt64 `gorm:"column:comment_id"`
	CommunityID sql.NullInt64 `gorm:"column:community_id"`

	IsRead    bool      `gorm:"not null;default:false;column:is_read"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`

	// Relationships
	User      *User      `gorm:"foreignKey:UserID;references:ID"`
	Actor     *User      `gorm:"foreignKey:ActorID;references:ID"`
	Post      *Post      `gorm:"foreignKey:PostID;references:ID"`
	Comment   *Comment   `gorm:"foreignKey:CommentID;references:ID"`
	Community *Community `gorm:"foreignKey:CommunityID;references:ID"`
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "burrow_notifications"
}

// Notification type constants
const (
	NotifyTypeUpvote          int16 = 1
	NotifyTypeDownvote        int16 = 2
	NotifyTypeComment         int16 = 3
	NotifyTypeReply           int16 = 4
	NotifyTypeMention         int16 = 5
	NotifyTypeFollow          int16 = 6
	NotifyTypeCommunityInvite int16 = 7
)

// NotifyTypeName returns the wire name of a notification type
func NotifyTypeName(typeID int16) string {
	names := map[int16]string{
		NotifyTypeUpvote:          "upvote",
		NotifyTypeDownvote:        "downvote",
		NotifyTypeComment:         "comment",
		NotifyTypeReply:           "reply",
		NotifyTypeMention:         "mention",
		NotifyTypeFollow:          "follow",
		NotifyTypeCommunityInvite: "community_invite",
	}
	if name, ok := names[typeID]; ok {
		return name
	}
	return "unknown"
}
