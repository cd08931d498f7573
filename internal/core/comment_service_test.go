package core

import (
	"database/sql"
	"reflect"
	"testing"

	"github.com/burrowhq/burrow/internal/models"
)

func TestMaterializePath(t *testing.T) {
	tests := []struct {
		name      string
		postID    int64
		commentID int64
		want      string
	}{
		{"top level", 12, 34, "12/34"},
		{"reply uses the same shape", 12, 56, "12/56"},
		// Stays within the varchar(64) column even at the id ceiling
		{"max ids", 9223372036854775807, 9223372036854775807, "9223372036854775807/9223372036854775807"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := materializePath(tt.postID, tt.commentID)
			if got != tt.want {
				t.Errorf("materializePath() = %q, want %q", got, tt.want)
			}
			if len(got) > 64 {
				t.Errorf("path %q exceeds the column width", got)
			}
		})
	}
}

func TestExtractMentions(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"none", "plain text", nil},
		{"single", "thanks @alice!", []string{"alice"}},
		{"multiple", "@alice and @bob_2", []string{"alice", "bob_2"}},
		{"duplicates collapse", "@alice @alice @alice", []string{"alice"}},
		{"email is still a mention", "mail me at x@example.com", []string{"example"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractMentions(tt.body); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("extractMentions() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildThread(t *testing.T) {
	parent := func(id int64) sql.NullInt64 { return sql.NullInt64{Int64: id, Valid: true} }

	comments := []*models.Comment{
		{ID: 1, PostID: 9},
		{ID: 2, PostID: 9, ParentID: parent(1)},
		{ID: 3, PostID: 9, ParentID: parent(1)},
		{ID: 4, PostID: 9, ParentID: parent(2)},
		{ID: 5, PostID: 9},
	}

	roots := buildThread(comments)
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}
	if roots[0].ID != 1 || roots[1].ID != 5 {
		t.Errorf("unexpected root order: %d, %d", roots[0].ID, roots[1].ID)
	}
	if len(roots[0].Replies) != 2 {
		t.Fatalf("expected 2 replies under comment 1, got %d", len(roots[0].Replies))
	}
	if len(roots[0].Replies[0].Replies) != 1 || roots[0].Replies[0].Replies[0].ID != 4 {
		t.Error("nested reply not attached to comment 2")
	}
}

// A reply whose parent was hard-deleted must still appear in the thread.
func TestBuildThreadOrphan(t *testing.T) {
	comments := []*models.Comment{
		{ID: 7, PostID: 9, ParentID: sql.NullInt64{Int64: 99, Valid: true}},
	}

	roots := buildThread(comments)
	if len(roots) != 1 || roots[0].ID != 7 {
		t.Fatalf("orphaned reply should surface as a root, got %v", roots)
	}
}
