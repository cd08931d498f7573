package models

import "fmt"

// TargetKind discriminates the entity a vote or report points at.
// Keeping it a typed constant (rather than a free-form string column)
// lets resolving code switch exhaustively.
type TargetKind int16

// Target kind constants
const (
	TargetPost    TargetKind = 1
	TargetComment TargetKind = 2
	TargetUser    TargetKind = 3
)

// String returns the wire name of the target kind
func (k TargetKind) String() string {
	switch k {
	case TargetPost:
		return "post"
	case TargetComment:
		return "comment"
	case TargetUser:
		return "user"
	}
	return "unknown"
}

// Valid reports whether k is a known target kind
func (k TargetKind) Valid() bool {
	switch k {
	case TargetPost, TargetComment, TargetUser:
		return true
	}
	return false
}

// ParseTargetKind parses a wire name into a TargetKind
func ParseTargetKind(s string) (TargetKind, error) {
	switch s {
	case "post":
		return TargetPost, nil
	case "comment":
		return TargetComment, nil
	case "user":
		return TargetUser, nil
	}
	return 0, fmt.Errorf("unknown target kind: %q", s)
}

// TargetRef is a tagged reference to a post, comment or user.
// It is embedded in Vote and Report and persisted as the
// target_type/target_id column pair.
type TargetRef struct {
	Kind TargetKind `gorm:"type:smallint;not null;column:target_type"`
	ID   int64      `gorm:"not null;column:target_id"`
}

// PostRef builds a TargetRef for a post
func PostRef(id int64) TargetRef { return TargetRef{Kind: TargetPost, ID: id} }

// CommentRef builds a TargetRef for a comment
func CommentRef(id int64) TargetRef { return TargetRef{Kind: TargetComment, ID: id} }

// UserRef builds a TargetRef for a user
func UserRef(id int64) TargetRef { return TargetRef{Kind: TargetUser, ID: id} }
