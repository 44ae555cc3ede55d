// Package client talks to the candidates HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/fmuoria/candidate-manager/internal/models"
	"github.com/google/uuid"
)

// ResourcePath is appended to the configured API URL
const ResourcePath = "/candidates"

// RequestIDHeader carries a per-request correlation id
const RequestIDHeader = "X-Request-Id"

// maxErrorBody bounds how much of a failed response is kept for the log
const maxErrorBody = 1024

var (
	// ErrRequestFailed wraps every failure reported by the client
	ErrRequestFailed = errors.New("candidate service request failed")
	// ErrMissingID is returned when updating a candidate that was never saved
	ErrMissingID = errors.New("candidate has no id")
)

// UploadRequest is the multipart payload used to create a candidate
type UploadRequest struct {
	Name     string
	Surname  string
	FileName string
	File     []byte
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request failures
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client wraps the four candidate endpoints
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a client for the API rooted at apiURL
func New(apiURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(apiURL, "/") + ResourcePath,
		httpClient: http.DefaultClient,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the resolved resource URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// List fetches all candidates
func (c *Client) List(ctx context.Context) ([]models.Candidate, error) {
	var candidates []models.Candidate
	if err := c.do(ctx, "list", http.MethodGet, "", nil, "", &candidates); err != nil {
		return nil, err
	}
	if candidates == nil {
		candidates = []models.Candidate{}
	}
	return candidates, nil
}

// Create uploads the spreadsheet together with the name fields and returns
// the record the backend created
func (c *Client) Create(ctx context.Context, upload UploadRequest) (models.Candidate, error) {
	body, contentType, err := encodeUpload(upload)
	if err != nil {
		return models.Candidate{}, c.handleError("create", "", err)
	}

	var created models.Candidate
	if err := c.do(ctx, "create", http.MethodPost, "/upload", body, contentType, &created); err != nil {
		return models.Candidate{}, err
	}
	return created, nil
}

// Update sends the full record to PUT /candidates/{id}
func (c *Client) Update(ctx context.Context, candidate models.Candidate) (models.Candidate, error) {
	if !candidate.HasID() {
		return models.Candidate{}, c.handleError("update", "", ErrMissingID)
	}

	data, err := json.Marshal(candidate)
	if err != nil {
		return models.Candidate{}, c.handleError("update", "", fmt.Errorf("failed to marshal candidate: %w", err))
	}

	var updated models.Candidate
	path := "/" + strconv.Itoa(*candidate.ID)
	if err := c.do(ctx, "update", http.MethodPut, path, bytes.NewReader(data), "application/json", &updated); err != nil {
		return models.Candidate{}, err
	}
	return updated, nil
}

// Delete removes the candidate with the given id
func (c *Client) Delete(ctx context.Context, id int) error {
	return c.do(ctx, "delete", http.MethodDelete, "/"+strconv.Itoa(id), nil, "", nil)
}

// do performs one request and decodes a JSON response into out when out is non-nil
func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string, out any) error {
	requestID := uuid.NewString()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return c.handleError(op, requestID, fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.handleError(op, requestID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return c.handleError(op, requestID, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return c.handleError(op, requestID, fmt.Errorf("failed to decode response: %w", err))
		}
	}

	c.logger.Debug("Candidate service request completed", "op", op, "method", method, "status", resp.StatusCode, "request_id", requestID)
	return nil
}

// handleError is the single failure path: log, then re-signal a generic failure.
// The cause is kept in the chain for logs but callers only branch on ErrRequestFailed.
func (c *Client) handleError(op, requestID string, err error) error {
	c.logger.Error("Candidate service request failed", "op", op, "request_id", requestID, "err", err)
	return fmt.Errorf("%w: %s: %w", ErrRequestFailed, op, err)
}

// encodeUpload builds the multipart body with fields name, surname and file
func encodeUpload(upload UploadRequest) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("name", upload.Name); err != nil {
		return nil, "", fmt.Errorf("failed to write name field: %w", err)
	}
	if err := w.WriteField("surname", upload.Surname); err != nil {
		return nil, "", fmt.Errorf("failed to write surname field: %w", err)
	}

	if upload.FileName != "" || len(upload.File) > 0 {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, upload.FileName))
		h.Set("Content-Type", models.SpreadsheetMIMEType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create file part: %w", err)
		}
		if _, err := part.Write(upload.File); err != nil {
			return nil, "", fmt.Errorf("failed to write file part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
