package homeclip

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store defines the remote operations the sync engine depends on.
// This interface is implemented by *Client and can be used for testing.
type Store interface {
	FetchContent(ctx context.Context) (*ContentResponse, error)
	SaveContent(ctx context.Context, content string) error
	ListFiles(ctx context.Context) ([]Attachment, error)
	UploadFile(ctx context.Context, fileName string, body io.Reader) (*Attachment, error)
	DownloadFile(ctx context.Context, id string, dst io.Writer) (int64, error)
	DeleteFile(ctx context.Context, id string) error
}

// Ensure Client implements Store at compile time.
var _ Store = (*Client)(nil)

// Client talks to the homeclip HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultServer         = "127.0.0.1:8080"
	defaultUserAgent      = "homeclip-term/0.1"
	defaultRequestTimeout = 10 * time.Second
	maxErrorBody          = 4 << 10
)

// NewClient builds a Client for the given server address. A bare host:port is
// treated as http. A zero timeout uses the default.
func NewClient(server string, timeout time.Duration) (*Client, error) {
	base, err := parseBaseURL(server)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalized server URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// FetchContent retrieves the document, its attachments and expiration.
func (c *Client) FetchContent(ctx context.Context) (*ContentResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload ContentResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/content", nil, &payload); err != nil {
		return nil, err
	}
	payload.ExpiresAt = normalizeExpiry(payload.ExpiresAt)
	payload.Attachments = normalizeAttachments(payload.Attachments)
	return &payload, nil
}

// SaveContent replaces the remote document with content. The response body is
// ignored.
func (c *Client) SaveContent(ctx context.Context, content string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.doJSON(ctx, http.MethodPost, "/api/content", SaveRequest{Content: content}, nil)
}

// ListFiles retrieves the attachment list in server order.
func (c *Client) ListFiles(ctx context.Context) ([]Attachment, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload []Attachment
	if err := c.doJSON(ctx, http.MethodGet, "/api/files", nil, &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		payload = []Attachment{}
	}
	return normalizeAttachments(payload), nil
}

// UploadFile streams body as the multipart field "file".
func (c *Client) UploadFile(ctx context.Context, fileName string, body io.Reader) (*Attachment, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	name := filepath.Base(strings.TrimSpace(fileName))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, fmt.Errorf("file name required")
	}

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	go func() {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
		header.Set("Content-Type", detectContentType(name))
		part, err := form.CreatePart(header)
		if err == nil {
			_, err = io.Copy(part, body)
		}
		if err == nil {
			err = form.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	op := "upload " + name
	resp, err := c.send(ctx, op, http.MethodPost, "/api/files/upload", pr, form.FormDataContentType())
	if err != nil {
		_ = pr.CloseWithError(err)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var payload UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !payload.Success {
		return nil, &ApplicationError{Op: op, Message: payload.Error}
	}
	payload.Attachment.ExpiresAt = normalizeExpiry(payload.Attachment.ExpiresAt)
	return &payload.Attachment, nil
}

// DownloadFile copies the attachment bytes into dst.
func (c *Client) DownloadFile(ctx context.Context, id string, dst io.Writer) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(id) == "" {
		return 0, fmt.Errorf("attachment id required")
	}
	path := "/api/files/" + url.PathEscape(id)
	resp, err := c.send(ctx, "download "+id, http.MethodGet, path, nil, "")
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	n, err := io.Copy(dst, resp.Body)
	if err != nil {
		return n, fmt.Errorf("read download: %w", err)
	}
	return n, nil
}

// DeleteFile removes an attachment.
func (c *Client) DeleteFile(ctx context.Context, id string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("attachment id required")
	}
	return c.doJSON(ctx, http.MethodDelete, "/api/files/"+url.PathEscape(id), nil, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, dest any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}

	resp, err := c.send(ctx, method+" "+path, method, path, body, contentType)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// send executes a request and maps transport failures and non-2xx replies onto
// NetworkError and HTTPError. On success the caller owns resp.Body.
func (c *Client) send(ctx context.Context, op, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		return nil, &HTTPError{Op: op, StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}
	return resp, nil
}

func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return strings.TrimSpace(body.Error)
	}
	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, "{") {
		return ""
	}
	return text
}

func detectContentType(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func parseBaseURL(server string) (*url.URL, error) {
	trimmed := strings.TrimSpace(server)
	if trimmed == "" {
		trimmed = defaultServer
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse server %q: %w", server, err)
	}
	if u.Host == "" {
		return nil, errors.New("server host is empty")
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
