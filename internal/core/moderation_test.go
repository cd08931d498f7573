package core

import (
	"context"
	"errors"
	"testing"

	"github.com/burrowhq/burrow/internal/gateway/moderation"
	"github.com/burrowhq/burrow/pkg/config"
)

type fakeClassifier struct {
	enabled bool
	verdict *moderation.Verdict
	err     error
}

func (f *fakeClassifier) Enabled() bool { return f.enabled }

func (f *fakeClassifier) Classify(context.Context, string) (*moderation.Verdict, error) {
	return f.verdict, f.err
}

func testModerationConfig() *config.ModerationConfig {
	return &config.ModerationConfig{RejectThreshold: 0.95, FlagThreshold: 0.75}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name    string
		verdict moderation.Verdict
		want    verdictAction
	}{
		{"clean", moderation.Verdict{SpamScore: 0.1, ToxicityScore: 0.2}, actionClean},
		{"spam score flags", moderation.Verdict{SpamScore: 0.8}, actionFlag},
		{"toxicity score flags", moderation.Verdict{ToxicityScore: 0.76}, actionFlag},
		{"is_spam flags below threshold", moderation.Verdict{IsSpam: true, SpamScore: 0.4}, actionFlag},
		{"rejects at threshold", moderation.Verdict{SpamScore: 0.95}, actionReject},
		{"worst score wins", moderation.Verdict{SpamScore: 0.2, ToxicityScore: 0.99}, actionReject},
		{"flag boundary", moderation.Verdict{SpamScore: 0.75}, actionFlag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decide(&tt.verdict, 0.95, 0.75); got != tt.want {
				t.Errorf("decide() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScreenDisabled(t *testing.T) {
	p := NewModerationPolicy(&fakeClassifier{enabled: false}, testModerationConfig())
	s, err := p.Screen(context.Background(), "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Screened || s.Flagged {
		t.Errorf("disabled classifier must yield a clean, unscreened result: %+v", s)
	}
}

func TestScreenClassifierFailureIsClean(t *testing.T) {
	p := NewModerationPolicy(&fakeClassifier{enabled: true, err: errors.New("timeout")}, testModerationConfig())
	s, err := p.Screen(context.Background(), "anything")
	if err != nil {
		t.Fatalf("classifier failure must not fail the operation: %v", err)
	}
	if s.Screened {
		t.Error("failed screening should not carry scores")
	}
}

func TestScreenReject(t *testing.T) {
	p := NewModerationPolicy(&fakeClassifier{
		enabled: true,
		verdict: &moderation.Verdict{SpamScore: 0.99, Severity: "high"},
	}, testModerationConfig())

	_, err := p.Screen(context.Background(), "buy now")
	if err == nil {
		t.Fatal("expected rejection")
	}
	if KindOf(err) != KindValidation {
		t.Errorf("expected validation kind, got %v", KindOf(err))
	}
}

func TestScreenFlag(t *testing.T) {
	p := NewModerationPolicy(&fakeClassifier{
		enabled: true,
		verdict: &moderation.Verdict{SpamScore: 0.8, ToxicityScore: 0.3, Severity: "medium"},
	}, testModerationConfig())

	s, err := p.Screen(context.Background(), "borderline")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Flagged || !s.Screened {
		t.Errorf("expected flagged screening: %+v", s)
	}
	if s.SpamScore != 0.8 || s.Severity != "medium" {
		t.Errorf("scores not carried: %+v", s)
	}
}
