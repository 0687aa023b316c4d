// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Configuration constants for the assessment service API.
const (
	// DefaultBaseURL is the fallback service URL used when no
	// configuration is supplied.
	DefaultBaseURL = "https://recognaize-api.onrender.com"

	// DefaultTimeout bounds chat and upload requests. The free-tier
	// deployment can take the better part of a minute to cold start.
	DefaultTimeout = 90 * time.Second

	// WarmupTimeout bounds the best-effort startup health ping.
	WarmupTimeout = 120 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

	// MaxUploadSize is the largest report file the client will send.
	MaxUploadSize = 20 * 1024 * 1024 // 20MB limit
)

// sharedHTTPClient is used for all service requests. Per-request
// deadlines come from the caller's context, not a client timeout, so a
// long upload and a short health ping can share the pool.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
}

// UploadExtensions lists the report file extensions shown in the upload
// prompt. Advisory only: the service performs the real validation.
var UploadExtensions = []string{".pdf", ".txt", ".csv", ".json", ".xlsx", ".xls"}

// Error variables for common service failures.
var (
	// ErrTimeout indicates the request deadline passed, usually a
	// cold-started deployment that has not come up yet.
	ErrTimeout = errors.New("request timed out")

	// ErrUnreachable indicates the service could not be contacted.
	ErrUnreachable = errors.New("service unreachable")

	// ErrFileTooLarge indicates the report file exceeds MaxUploadSize.
	ErrFileTooLarge = errors.New("file too large")
)

// APIError is an application-level error the service reported inside a
// well-formed response. Its message is safe to show to the user.
type APIError struct {
	Message string
	Status  int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("service error (HTTP %d): %s", e.Status, e.Message)
	}
	return "service error: " + e.Message
}

// Turn is one prior conversation entry sent with a chat request.
type Turn struct {
	Role    string `json:"role"`    // "user" or "assistant"
	Content string `json:"content"` // The message content
}

// chatRequest is the JSON body for POST /chat.
type chatRequest struct {
	Message             string  `json:"message"`
	ConversationHistory []Turn  `json:"conversation_history"`
	FileContext         *string `json:"file_context"`
}

// chatResponse is the JSON body returned by POST /chat.
type chatResponse struct {
	Reply string `json:"reply"`
	Error string `json:"error,omitempty"`
}

// UploadResult is the service's view of a successfully parsed report.
type UploadResult struct {
	Filename  string `json:"filename"`
	FileType  string `json:"file_type"`
	SizeBytes int64  `json:"size_bytes"`
	Content   string `json:"content"`
}

// uploadResponse is the raw JSON body returned by POST /upload. A
// populated Error field means the service rejected the file.
type uploadResponse struct {
	UploadResult
	Error string `json:"error,omitempty"`
}

// Client talks to the remote assessment service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
}

// NewClient creates a service client for the given base URL. An empty
// URL falls back to DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: sharedHTTPClient,
		timeout:    DefaultTimeout,
		userAgent:  "recognaize-companion/0.1.0",
	}
}

// WithTimeout sets the per-request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.timeout = timeout
	return c
}

// WithHTTPClient swaps the underlying HTTP client, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// BaseURL returns the configured service URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ============================================================================
// Chat
// ============================================================================

// Chat sends a user message together with the prior conversation and
// the active report context, and returns the assistant's reply text.
// fileContext may be empty when no report has been uploaded.
func (c *Client) Chat(ctx context.Context, message string, history []Turn, fileContext string) (string, error) {
	reqBody := chatRequest{
		Message:             message,
		ConversationHistory: history,
	}
	if fileContext != "" {
		reqBody.FileContext = &fileContext
	}
	if reqBody.ConversationHistory == nil {
		reqBody.ConversationHistory = []Turn{}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", mapTransportError(err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return "", err
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", &APIError{Message: http.StatusText(resp.StatusCode), Status: resp.StatusCode}
		}
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if chatResp.Error != "" {
		return "", &APIError{Message: chatResp.Error, Status: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Message: http.StatusText(resp.StatusCode), Status: resp.StatusCode}
	}
	return chatResp.Reply, nil
}

// ============================================================================
// Upload
// ============================================================================

// Upload sends a report file as multipart form data and returns the
// extracted text the service produced from it.
func (c *Client) Upload(ctx context.Context, path string) (*UploadResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() > MaxUploadSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrFileTooLarge, filepath.Base(path), info.Size())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, mapTransportError(err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	var uploadResp uploadResponse
	if err := json.Unmarshal(body, &uploadResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &APIError{Message: http.StatusText(resp.StatusCode), Status: resp.StatusCode}
		}
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if uploadResp.Error != "" {
		return nil, &APIError{Message: uploadResp.Error, Status: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Message: http.StatusText(resp.StatusCode), Status: resp.StatusCode}
	}
	return &uploadResp.UploadResult, nil
}

// ============================================================================
// Health
// ============================================================================

// Warmup pings the health endpoint to kick a cold-started deployment
// awake. The response is discarded and failures are reported only so
// the caller can log them; they are never surfaced to the user.
func (c *Client) Warmup(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, WarmupTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return mapTransportError(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
	return nil
}

// ============================================================================
// Helpers
// ============================================================================

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// mapTransportError folds the errors a round trip can produce into the
// two sentinels the UI distinguishes.
func mapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}

// UserMessage maps a service failure to the short notice shown in the
// error toast. Application-level messages pass through verbatim.
func UserMessage(err error) string {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, ErrTimeout):
		return "The server is taking too long to respond. It may be waking up, please try again."
	case errors.Is(err, ErrFileTooLarge):
		return "That file is too large to upload."
	case errors.Is(err, ErrUnreachable):
		return "Could not reach the server. Please check your connection and try again."
	default:
		return "Something went wrong. Please try again."
	}
}
