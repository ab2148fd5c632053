package plagiarism

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Checker is the external plagiarism collaborator. Nothing is consumed
// synchronously from it; the worker only cares whether delivery succeeded.
type Checker interface {
	Check(ctx context.Context, submissionID uuid.UUID) error
}

// HTTPClient delivers check requests to the plagiarism service over HTTP.
type HTTPClient struct {
	url    string
	client *http.Client
}

// NewHTTPClient creates a client for the given endpoint.
func NewHTTPClient(url string) *HTTPClient {
	return &HTTPClient{
		url: url,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Check posts a "check this submission" notification.
func (c *HTTPClient) Check(ctx context.Context, submissionID uuid.UUID) error {
	body, err := json.Marshal(map[string]string{"submission_id": submissionID.String()})
	if err != nil {
		return fmt.Errorf("marshal check request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build check request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post check request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("plagiarism service returned %d", resp.StatusCode)
	}
	return nil
}

var _ Checker = (*HTTPClient)(nil)
