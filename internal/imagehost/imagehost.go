package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Uploader stores images on an external hosting service and removes them again.
type Uploader interface {
	// Upload pushes a local file to the image host and returns its public URL.
	Upload(ctx context.Context, localPath string) (string, error)

	// Destroy removes a previously uploaded asset by its public ID.
	Destroy(ctx context.Context, publicID string) error
}

// Client is an HTTP client for the image hosting service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new image host Client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

// Upload pushes a local file to the image host and returns its public URL.
func (c *Client) Upload(ctx context.Context, localPath string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	publicID := uuid.NewString() + path.Ext(localPath)
	part, err := writer.CreateFormFile("file", publicID)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("image host upload failed: %s", resp.Status)
	}

	var uploaded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", err
	}

	if uploaded.SecureURL == "" {
		return "", errors.New("image host returned no secure URL")
	}

	return uploaded.SecureURL, nil
}

// Destroy removes a previously uploaded asset by its public ID.
func (c *Client) Destroy(ctx context.Context, publicID string) error {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodDelete,
		c.baseURL+"/assets/"+url.PathEscape(publicID),
		nil,
	)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("image host destroy failed: %s", resp.Status)
	}

	return nil
}

// PublicIDFromURL derives an asset's public ID by stripping the file
// extension from the last path segment of its URL.
func PublicIDFromURL(rawURL string) string {
	segment := path.Base(rawURL)
	return strings.TrimSuffix(segment, path.Ext(segment))
}
