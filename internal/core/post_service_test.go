package core

import (
	"strings"
	"testing"

	"github.com/burrowhq/burrow/internal/models"
)

func TestValidatePostInput(t *testing.T) {
	tests := []struct {
		name    string
		input   PostInput
		wantErr bool
	}{
		{"text post", PostInput{Title: "hello", Body: "world", Type: models.PostTypeText}, false},
		{"link post", PostInput{Title: "hello", Body: "see this", Type: models.PostTypeLink, URL: "https://example.com"}, false},
		{"image post without body", PostInput{Title: "pic", Type: models.PostTypeImage}, false},
		{"missing title", PostInput{Body: "world", Type: models.PostTypeText}, true},
		{"whitespace title", PostInput{Title: "   ", Body: "world", Type: models.PostTypeText}, true},
		{"title too long", PostInput{Title: strings.Repeat("a", models.MaxTitleLength+1), Body: "b", Type: models.PostTypeText}, true},
		{"title at limit", PostInput{Title: strings.Repeat("a", models.MaxTitleLength), Body: "b", Type: models.PostTypeText}, false},
		{"unknown type", PostInput{Title: "hello", Body: "world", Type: "poll"}, true},
		{"text without body", PostInput{Title: "hello", Type: models.PostTypeText}, true},
		{"link without url", PostInput{Title: "hello", Body: "b", Type: models.PostTypeLink}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePostInput(&tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validatePostInput() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && KindOf(err) != KindValidation {
				t.Errorf("expected validation kind, got %v", KindOf(err))
			}
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name    string
		tags    []string
		want    []string
		wantErr bool
	}{
		{"nil", nil, []string{}, false},
		{"lowercased and trimmed", []string{" Go ", "WebDev"}, []string{"go", "webdev"}, false},
		{"dedupe keeps first occurrence", []string{"go", "rust", "GO"}, []string{"go", "rust"}, false},
		{"empties dropped", []string{"", "  ", "go"}, []string{"go"}, false},
		{"hyphens allowed", []string{"self-hosted"}, []string{"self-hosted"}, false},
		{"leading hyphen rejected", []string{"-go"}, nil, true},
		{"spaces inside rejected", []string{"go lang"}, nil, true},
		{"too long rejected", []string{strings.Repeat("a", 33)}, nil, true},
		{"too many", []string{"a", "b", "c", "d", "e", "f"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeTags(tt.tags)
			if (err != nil) != tt.wantErr {
				t.Fatalf("normalizeTags() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if KindOf(err) != KindValidation {
					t.Errorf("expected validation kind, got %v", KindOf(err))
				}
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("normalizeTags() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("normalizeTags()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestApplyScreening(t *testing.T) {
	t.Run("unscreened leaves row untouched", func(t *testing.T) {
		post := models.Post{Status: models.StatusActive}
		applyScreening(&Screening{}, &post.Status, &post.SpamScore, &post.ToxicityScore)
		if post.Status != models.StatusActive || post.SpamScore.Valid {
			t.Errorf("unexpected change: %+v", post)
		}
	})

	t.Run("clean verdict keeps status, stores scores", func(t *testing.T) {
		post := models.Post{Status: models.StatusActive}
		applyScreening(&Screening{Screened: true, SpamScore: 0.1, ToxicityScore: 0.2},
			&post.Status, &post.SpamScore, &post.ToxicityScore)
		if post.Status != models.StatusActive {
			t.Errorf("status changed: %s", post.Status)
		}
		if !post.SpamScore.Valid || post.SpamScore.Float64 != 0.1 {
			t.Errorf("spam score not stored: %+v", post.SpamScore)
		}
	})

	t.Run("flag verdict sets flagged status", func(t *testing.T) {
		post := models.Post{Status: models.StatusActive}
		applyScreening(&Screening{Screened: true, Flagged: true, SpamScore: 0.8},
			&post.Status, &post.SpamScore, &post.ToxicityScore)
		if post.Status != models.StatusFlagged {
			t.Errorf("expected flagged status, got %s", post.Status)
		}
	})
}

func TestFlagReport(t *testing.T) {
	ev := flagReport(models.PostRef(7), &Screening{Flagged: true, SpamScore: 0.8, Severity: "high"})
	report, ok := ev.(ReportEvent)
	if !ok {
		t.Fatalf("expected ReportEvent, got %T", ev)
	}
	if report.Target.ID != 7 || report.Severity != "high" {
		t.Errorf("unexpected report: %+v", report)
	}

	// A classifier that reports no severity still yields a usable report.
	ev = flagReport(models.CommentRef(3), &Screening{Flagged: true})
	if ev.(ReportEvent).Severity != models.SeverityMedium {
		t.Errorf("expected default severity, got %s", ev.(ReportEvent).Severity)
	}
}

func TestFeedCacheKey(t *testing.T) {
	if feedCacheKey(20, 0) != feedCacheKey(20, 0) {
		t.Error("same page must hash to the same key")
	}
	if feedCacheKey(20, 0) == feedCacheKey(20, 20) {
		t.Error("different pages must hash to different keys")
	}
}
