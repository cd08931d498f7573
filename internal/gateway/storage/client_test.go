package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/burrowhq/burrow/pkg/config"
)

func newTestClient(url string) *Client {
	return New(&config.StorageConfig{
		URL:            url,
		Enabled:        url != "",
		TimeoutSeconds: 2,
		Folder:         "burrow-test",
	})
}

func TestUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("Failed to parse multipart form: %v", err)
		}
		if folder := r.FormValue("folder"); folder != "burrow-test/posts" {
			t.Errorf("Expected folder burrow-test/posts, got %s", folder)
		}
		if owner := r.FormValue("owner"); owner != "42" {
			t.Errorf("Expected owner 42, got %s", owner)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"public_id": "abc123", "secure_url": "https://cdn.example.com/abc123.png"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	obj, err := client.Upload(context.Background(), strings.NewReader("fake-image-bytes"), "gator.png", "posts", 42)
	if err != nil {
		t.Fatalf("Upload() error: %v", err)
	}

	if obj.PublicID != "abc123" {
		t.Errorf("Expected public_id abc123, got %s", obj.PublicID)
	}
	if obj.SecureURL != "https://cdn.example.com/abc123.png" {
		t.Errorf("Unexpected secure_url: %s", obj.SecureURL)
	}
}

func TestUploadIncompleteResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing public_id", `{"secure_url": "https://cdn.example.com/x.png"}`},
		{"missing secure_url", `{"public_id": "abc123"}`},
		{"empty object", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := newTestClient(srv.URL)
			if _, err := client.Upload(context.Background(), strings.NewReader("x"), "f.png", "posts", 1); err == nil {
				t.Error("Expected error for incomplete storage response")
			}
		})
	}
}

func TestDeleteTolerated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	// A 404 means the object is already gone; not an error
	if err := client.Delete(context.Background(), "missing-id"); err != nil {
		t.Errorf("Delete() of missing object should not error, got: %v", err)
	}

	// Empty public_id is a no-op
	if err := client.Delete(context.Background(), ""); err != nil {
		t.Errorf("Delete() with empty public_id should be a no-op, got: %v", err)
	}
}
