// Package classifier asks a remote model which waste type an image shows.
package classifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"recycle-backend/internal/config"

	"github.com/tidwall/gjson"
)

const maxResponseBytes = 1 << 20

// ErrNotConfigured is returned when no classifier URL is set
var ErrNotConfigured = errors.New("classifier is not configured")

// HTTPClassifier posts image bytes to a classification endpoint
type HTTPClassifier struct {
	url       string
	apiKey    string
	labelPath string
	client    *http.Client
}

// NewHTTPClassifier creates a classifier from the classifier section of the configuration
func NewHTTPClassifier(cfg config.ClassifierConfig) *HTTPClassifier {
	labelPath := cfg.LabelPath
	if labelPath == "" {
		labelPath = "label"
	}
	return &HTTPClassifier{
		url:       cfg.URL,
		apiKey:    cfg.APIKey,
		labelPath: labelPath,
		client:    &http.Client{Timeout: cfg.Timeout},
	}
}

// Classify returns the waste-type label the endpoint assigns to the image
func (c *HTTPClassifier) Classify(ctx context.Context, image []byte) (string, error) {
	if c.url == "" {
		return "", ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(image))
	if err != nil {
		return "", fmt.Errorf("failed to build classifier request: %w", err)
	}
	req.Header.Set("Content-Type", http.DetectContentType(image))
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read classifier response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return "", errors.New("classifier returned invalid json")
	}

	label := gjson.GetBytes(body, c.labelPath)
	if !label.Exists() || strings.TrimSpace(label.String()) == "" {
		return "", fmt.Errorf("classifier response has no value at %q", c.labelPath)
	}
	return strings.ToLower(strings.TrimSpace(label.String())), nil
}
