package models

import (
	"database/sql"
	"time"
)

// Report represents a spam/abuse report against a post, comment or user.
// Reports are filed by users or by the moderation classifier (nil reporter),
// are never deleted, and only transition open -> resolved.
type Report struct {
	ID         int64         `gorm:"primaryKey;autoIncrement;column:id"`
	ReporterID sql.NullInt64 `gorm:"column:reporter_id"`
	Target     TargetRef     `gorm:"embedded"`
	Reason     string        `gorm:"type:varchar(500);not null;column:reason"`
	Status     string        `gorm:"type:varchar(16);not null;default:'open';column:status"`
	Severity   string        `gorm:"type:varchar(16);not null;default:'low';column:severity"`

	SpamScore     sql.NullFloat64 `gorm:"column:spam_score"`
	ToxicityScore sql.NullFloat64 `gorm:"column:toxicity_score"`

	ActionTaken sql.NullString `gorm:"type:varchar(255);column:action_taken"`
	HandledBy   sql.NullInt64  `gorm:"column:handled_by"`

	CreatedAt time.Time `gorm:"not null;column:created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at"`

	// Relationships
	Reporter *User `gorm:"foreignKey:ReporterID;references:ID"`
	Handler  *User `gorm:"foreignKey:HandledBy;references:ID"`
}

// TableName specifies the table name for Report
func (Report) TableName() string {
	return "burrow_reports"
}

// Report status constants
const (
	ReportStatusOpen     = "open"
	ReportStatusResolved = "resolved"
)

// Report severity constants
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)
