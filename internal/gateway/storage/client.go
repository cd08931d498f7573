package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/burrowhq/burrow/pkg/config"
	"github.com/burrowhq/burrow/pkg/logging"
	"github.com/burrowhq/burrow/pkg/telemetry"
)

// Object identifies an uploaded media object
type Object struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
}

// Client calls the external object storage service
type Client struct {
	url        string
	enabled    bool
	folder     string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a new storage client
func New(cfg *config.StorageConfig) *Client {
	return &Client{
		url:     cfg.URL,
		enabled: cfg.Enabled,
		folder:  cfg.Folder,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: logging.GetLogger().With(zap.String("component", "storage-client")),
	}
}

// Enabled reports whether a storage endpoint is configured
func (c *Client) Enabled() bool {
	return c != nil && c.enabled
}

// Upload stores the file under the given category for the owner and returns
// the resulting object. A response missing public_id or secure_url is a
// failure regardless of HTTP status.
func (c *Client) Upload(ctx context.Context, file io.Reader, filename, category string, ownerID int64) (*Object, error) {
	ctx, span := telemetry.StartSpan(ctx, "storage.upload")
	defer span.End()

	if !c.Enabled() {
		return nil, fmt.Errorf("object storage is not configured")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read upload content: %w", err)
	}

	if err := writer.WriteField("folder", c.folder+"/"+category); err != nil {
		return nil, fmt.Errorf("failed to set upload folder: %w", err)
	}
	if err := writer.WriteField("owner", fmt.Sprintf("%d", ownerID)); err != nil {
		return nil, fmt.Errorf("failed to set upload owner: %w", err)
	}
	// The storage service derives its key from this when provided
	if err := writer.WriteField("public_id", uuid.NewString()); err != nil {
		return nil, fmt.Errorf("failed to set upload public_id: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("storage service returned status %d", resp.StatusCode)
	}

	var obj Object
	if err := json.NewDecoder(resp.Body).Decode(&obj); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	if obj.PublicID == "" || obj.SecureURL == "" {
		return nil, fmt.Errorf("storage service returned incomplete object")
	}

	c.logger.Debug("Uploaded media object",
		zap.String("public_id", obj.PublicID),
		zap.Int64("owner_id", ownerID))

	return &obj, nil
}

// Delete removes a stored object by public ID. Callers treat failures as
// best-effort: log and continue.
func (c *Client) Delete(ctx context.Context, publicID string) error {
	ctx, span := telemetry.StartSpan(ctx, "storage.delete")
	defer span.End()

	if !c.Enabled() {
		return fmt.Errorf("object storage is not configured")
	}
	if publicID == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.url+"/objects/"+publicID, nil)
	if err != nil {
		return fmt.Errorf("failed to build delete request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("storage service returned status %d", resp.StatusCode)
	}

	return nil
}
