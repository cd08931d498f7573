package moderation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/burrowhq/burrow/pkg/config"
)

func newTestClient(url string) *Client {
	return New(&config.ModerationConfig{
		URL:            url,
		Enabled:        url != "",
		TimeoutSeconds: 2,
	})
}

func TestClassify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"is_spam": true, "spam_score": 0.91, "toxicity_score": 0.4, "severity": "high"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	verdict, err := client.Classify(context.Background(), "buy cheap swamp boats")
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}

	if !verdict.IsSpam {
		t.Error("Expected is_spam true")
	}
	if verdict.SpamScore != 0.91 {
		t.Errorf("Expected spam_score 0.91, got %f", verdict.SpamScore)
	}
	if verdict.Severity != "high" {
		t.Errorf("Expected severity high, got %s", verdict.Severity)
	}
}

func TestClassifyServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	if _, err := client.Classify(context.Background(), "content"); err == nil {
		t.Error("Expected error for 500 response")
	}
}

func TestClassifyDisabled(t *testing.T) {
	client := newTestClient("")
	if client.Enabled() {
		t.Error("Client without URL should be disabled")
	}
	if _, err := client.Classify(context.Background(), "content"); err == nil {
		t.Error("Expected error when classifier is not configured")
	}
}
