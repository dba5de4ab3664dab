// Package fetch retrieves Postman collections and workspaces, either from the
// Postman API or from exported JSON files, and persists them for the linter.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jonathan/postman-lint/internal/types"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "postman-lint/1.0"

// APIKeyHeader carries the Postman API key.
const APIKeyHeader = "x-api-key"

// Document is a decoded JSON value: map[string]any, []any, string,
// json.Number, bool or nil.
type Document = any

// Options configures the Postman API client.
type Options struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	UserAgent string
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		BaseURL:   "https://api.postman.com",
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Client talks to the Postman API.
type Client struct {
	baseURL   string
	apiKey    string
	userAgent string
	http      *http.Client
}

// NewClient creates a client. Zero-valued options fall back to DefaultOptions.
func NewClient(opts *Options) *Client {
	defaults := DefaultOptions()
	if opts == nil {
		opts = defaults
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaults.BaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaults.Timeout
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaults.UserAgent
	}

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    opts.APIKey,
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}
}

// ResourceURL returns the canonical endpoint for a resource.
func (c *Client) ResourceURL(resourceType types.ResourceType, id string) (string, error) {
	var collectionPath string
	switch resourceType {
	case types.ResourceCollection:
		collectionPath = "collections"
	case types.ResourceWorkspace:
		collectionPath = "workspaces"
	default:
		return "", fmt.Errorf("invalid resource type %q", resourceType)
	}
	if id == "" {
		return "", fmt.Errorf("%s identifier is empty", resourceType)
	}
	return fmt.Sprintf("%s/%s/%s", c.baseURL, collectionPath, url.PathEscape(id)), nil
}

// Fetch retrieves a collection or workspace by identifier and decodes it.
func (c *Client) Fetch(ctx context.Context, resourceType types.ResourceType, id string) (Document, int, error) {
	endpoint, err := c.ResourceURL(resourceType, id)
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, &UpstreamError{
			URL:     endpoint,
			Message: "failed to create request",
			Cause:   err,
		}
	}
	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, &UpstreamError{
			URL:     endpoint,
			Message: "HTTP request failed",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &UpstreamError{
			URL:     endpoint,
			Status:  resp.StatusCode,
			Message: "failed to read response body",
			Cause:   err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, len(body), &UpstreamError{
			URL:     endpoint,
			Status:  resp.StatusCode,
			Body:    string(body),
			Message: fmt.Sprintf("HTTP status %d", resp.StatusCode),
		}
	}

	doc, err := Decode(body)
	if err != nil {
		return nil, len(body), &UpstreamError{
			URL:     endpoint,
			Status:  resp.StatusCode,
			Body:    string(body),
			Message: "response is not valid JSON",
			Cause:   err,
		}
	}

	return doc, len(body), nil
}

// LoadFile reads and decodes a JSON document from disk.
func LoadFile(path string) (Document, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, &MalformedInputError{
			Path:    path,
			Message: "failed to read input file",
			Cause:   err,
		}
	}

	doc, err := Decode(data)
	if err != nil {
		return nil, len(data), &MalformedInputError{
			Path:    path,
			Message: "input file is not valid JSON",
			Cause:   err,
		}
	}
	return doc, len(data), nil
}

// Decode parses a single JSON value, keeping numbers as json.Number so that
// re-encoding does not alter them.
func Decode(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected trailing data after JSON value")
	}
	return doc, nil
}

// Persist writes the document with four-space indentation and returns the byte count.
func Persist(doc Document, path string) (int, error) {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return 0, fmt.Errorf("failed to marshal document: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return len(data), nil
}
