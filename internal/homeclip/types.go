package homeclip

import (
	"time"
)

// ContentResponse mirrors the payload returned by GET /api/content.
type ContentResponse struct {
	Content     string       `json:"content"`
	LastUpdated time.Time    `json:"lastUpdated"`
	ExpiresAt   *time.Time   `json:"expiresAt,omitempty"`
	Version     int          `json:"version"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// HasAttachments reports whether the server included the attachment list.
// A nil slice means the field was absent; an empty slice is a real empty list.
func (c ContentResponse) HasAttachments() bool {
	return c.Attachments != nil
}

// SaveRequest is the body for POST /api/content.
type SaveRequest struct {
	Content string `json:"content"`
}

// Attachment describes a file attached to the document in transport form.
type Attachment struct {
	ID         string     `json:"id"`
	FileName   string     `json:"fileName"`
	MimeType   string     `json:"mimeType,omitempty"`
	Size       uint64     `json:"size"`
	UploadedAt time.Time  `json:"uploadedAt"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

// Expires reports whether the attachment carries an expiration.
func (a Attachment) Expires() bool {
	return a.ExpiresAt != nil
}

// UploadResponse mirrors POST /api/files/upload.
type UploadResponse struct {
	Success    bool       `json:"success"`
	Attachment Attachment `json:"attachment"`
	Error      string     `json:"error,omitempty"`
}

// errorBody is the JSON error shape the server uses for non-2xx replies.
type errorBody struct {
	Error   string `json:"error"`
	Success *bool  `json:"success,omitempty"`
}

// The server encodes "no expiration" as the zero time rather than null.
func normalizeExpiry(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := *t
	return &v
}

func normalizeAttachments(items []Attachment) []Attachment {
	for i := range items {
		items[i].ExpiresAt = normalizeExpiry(items[i].ExpiresAt)
	}
	return items
}
