package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/burrowhq/burrow/pkg/config"
	"github.com/burrowhq/burrow/pkg/logging"
	"github.com/burrowhq/burrow/pkg/telemetry"
)

// Verdict is the classifier's judgement of a piece of content
type Verdict struct {
	IsSpam        bool    `json:"is_spam"`
	SpamScore     float64 `json:"spam_score"`
	ToxicityScore float64 `json:"toxicity_score"`
	Severity      string  `json:"severity"`
}

// Client calls the external spam/toxicity classifier
type Client struct {
	url        string
	enabled    bool
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a new moderation client
func New(cfg *config.ModerationConfig) *Client {
	return &Client{
		url:     cfg.URL,
		enabled: cfg.Enabled,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: logging.GetLogger().With(zap.String("component", "moderation-client")),
	}
}

// Enabled reports whether a classifier endpoint is configured
func (c *Client) Enabled() bool {
	return c != nil && c.enabled
}

// Classify submits content to the classifier and returns its verdict
func (c *Client) Classify(ctx context.Context, content string) (*Verdict, error) {
	ctx, span := telemetry.StartSpan(ctx, "moderation.classify")
	defer span.End()

	if !c.Enabled() {
		return nil, fmt.Errorf("moderation classifier is not configured")
	}

	payload, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var verdict Verdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return nil, fmt.Errorf("failed to decode classifier response: %w", err)
	}

	c.logger.Debug("Classified content",
		zap.Bool("is_spam", verdict.IsSpam),
		zap.Float64("spam_score", verdict.SpamScore),
		zap.Float64("toxicity_score", verdict.ToxicityScore))

	return &verdict, nil
}
