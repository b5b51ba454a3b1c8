package product

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/weft-dev/weft/pkg/upload"
)

// APIError is a non-2xx response from the product API.
type APIError struct {
	StatusCode int
	Message    string
}

// Error returns the message the server sent, without decoration;
// callers prepend their own framing.
func (e *APIError) Error() string {
	return e.Message
}

// Client calls the product image API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	requestID  func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the client's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithRequestID replaces the X-Request-ID generator.
func WithRequestID(gen func() string) Option {
	return func(c *Client) { c.requestID = gen }
}

// NewClient returns a client for the API at baseURL. The default HTTP
// client carries no timeout: an image upload runs as long as it runs,
// and the caller decides whether to wait.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     slog.Default(),
		requestID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UploadImage posts the file as multipart field "image" to
// POST {base}/api/products/{productID}/image.
//
// A 2xx response returns nil. Any other status returns an *APIError
// whose Message is the response body's JSON "message" field when
// present, otherwise the trimmed body text. Transport failures are
// returned as-is so their message reaches the caller verbatim.
//
// The file's Reader is consumed but not closed.
func (c *Client) UploadImage(ctx context.Context, productID string, file *upload.File) error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, file.Filename))
	if file.ContentType != "" {
		h.Set("Content-Type", file.ContentType)
	}
	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("product: build form: %w", err)
	}
	if _, err := io.Copy(part, file.Reader); err != nil {
		return fmt.Errorf("product: read file: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("product: build form: %w", err)
	}

	endpoint := c.baseURL + "/api/products/" + url.PathEscape(productID) + "/image"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return fmt.Errorf("product: build request: %w", err)
	}
	requestID := c.requestID()
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("X-Request-ID", requestID)

	c.logger.Debug("uploading product image",
		"product_id", productID,
		"filename", file.Filename,
		"size", file.Size,
		"request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    extractMessage(raw),
	}
	c.logger.Debug("product image upload rejected",
		"product_id", productID,
		"status", resp.StatusCode,
		"request_id", requestID)
	return apiErr
}

// extractMessage prefers a JSON "message" field, then falls back to
// the raw body.
func extractMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(body))
}
