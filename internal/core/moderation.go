package core

import (
	"context"

	"go.uber.org/zap"

	"github.com/burrowhq/burrow/internal/gateway/moderation"
	"github.com/burrowhq/burrow/pkg/config"
	"github.com/burrowhq/burrow/pkg/logging"
)

type classifier interface {
	Enabled() bool
	Classify(ctx context.Context, content string) (*moderation.Verdict, error)
}

// Screening is the outcome of running content through the moderation policy.
// Flagged content is persisted with status "flagged" and a classifier report
// is filed; clean content persists normally.
type Screening struct {
	Screened      bool
	Flagged       bool
	SpamScore     float64
	ToxicityScore float64
	Severity      string
}

// ModerationPolicy applies the reject/flag thresholds to classifier verdicts.
// The classifier is advisory: if it is disabled or unreachable the content is
// treated as clean, and only an affirmative verdict above the reject
// threshold blocks a write.
type ModerationPolicy struct {
	client          classifier
	rejectThreshold float64
	flagThreshold   float64
	logger          *zap.Logger
}

// NewModerationPolicy creates a moderation policy
func NewModerationPolicy(client classifier, cfg *config.ModerationConfig) *ModerationPolicy {
	return &ModerationPolicy{
		client:          client,
		rejectThreshold: cfg.RejectThreshold,
		flagThreshold:   cfg.FlagThreshold,
		logger:          logging.WithComponent("moderation-policy"),
	}
}

type verdictAction int

const (
	actionClean verdictAction = iota
	actionFlag
	actionReject
)

// decide maps a verdict to an action using the worst of the two scores
func decide(v *moderation.Verdict, rejectThreshold, flagThreshold float64) verdictAction {
	worst := v.SpamScore
	if v.ToxicityScore > worst {
		worst = v.ToxicityScore
	}
	switch {
	case worst >= rejectThreshold:
		return actionReject
	case worst >= flagThreshold || v.IsSpam:
		return actionFlag
	}
	return actionClean
}

// Screen classifies content and applies the thresholds. It returns a
// validation error only when the verdict crosses the reject threshold.
func (p *ModerationPolicy) Screen(ctx context.Context, content string) (*Screening, error) {
	if p == nil || p.client == nil || !p.client.Enabled() {
		return &Screening{}, nil
	}

	verdict, err := p.client.Classify(ctx, content)
	if err != nil {
		p.logger.Warn("classifier unavailable, treating content as clean", zap.Error(err))
		return &Screening{}, nil
	}

	s := &Screening{
		Screened:      true,
		SpamScore:     verdict.SpamScore,
		ToxicityScore: verdict.ToxicityScore,
		Severity:      verdict.Severity,
	}

	switch decide(verdict, p.rejectThreshold, p.flagThreshold) {
	case actionReject:
		return nil, Validationf("content rejected by moderation")
	case actionFlag:
		s.Flagged = true
	}
	return s, nil
}
