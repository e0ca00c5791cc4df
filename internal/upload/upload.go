// Package upload normalizes image references returned by the backend and
// uploads inline data-URL images before they are referenced by a record.
package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gabriel-vasile/mimetype"

	"github.com/oarkflow/mebel/internal/apiclient"
)

// Placeholders used when a record has no image.
const (
	ProductPlaceholder = "/placeholder.svg"
	AvatarPlaceholder  = "https://ui-avatars.com/api/?name=User&background=e5e7eb&color=9ca3af"
)

// DefaultMIME is assumed when a data URL declares no type and sniffing fails.
const DefaultMIME = "image/jpeg"

// ImagePath is the backend upload endpoint.
const ImagePath = "/upload/image"

// ErrNotDataURL is returned by ParseDataURL for anything that is not data:...
var ErrNotDataURL = errors.New("not a data URL")

// NormalizeImageURL turns the backend's image field (a list of URLs, a
// string, or nothing) into one displayable URL. Relative upload paths are
// made root-relative; anything else is passed through.
func NormalizeImageURL(field any, placeholder string) string {
	var url string
	switch v := field.(type) {
	case []any:
		if len(v) > 0 {
			url, _ = v[0].(string)
		}
	case []string:
		if len(v) > 0 {
			url = v[0]
		}
	case string:
		url = strings.TrimSpace(v)
	}

	if url == "" {
		return placeholder
	}
	if strings.HasPrefix(url, "/uploads") {
		return url
	}
	if strings.HasPrefix(url, "uploads/") {
		return "/" + url
	}
	return url
}

// IsDataURL reports whether s is an inline data URL.
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// IsHTTPURL reports whether s is an absolute http(s) URL.
func IsHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// IsUploadPath reports whether s points into the backend's uploads area.
func IsUploadPath(s string) bool {
	return strings.HasPrefix(s, "/uploads") || strings.HasPrefix(s, "uploads/")
}

// IsReference reports whether s can be stored as-is (absolute or upload URL).
func IsReference(s string) bool {
	return IsHTTPURL(s) || IsUploadPath(s)
}

// ParseDataURL decodes a base64 data URL. When no MIME type is declared the
// content is sniffed, falling back to DefaultMIME.
func ParseDataURL(s string) (string, []byte, error) {
	if !IsDataURL(s) {
		return "", nil, ErrNotDataURL
	}
	meta, payload, found := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !found {
		return "", nil, fmt.Errorf("malformed data URL: missing payload")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return "", nil, fmt.Errorf("malformed data URL: only base64 payloads are supported")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("malformed data URL: %w", err)
	}

	mimeType := strings.TrimSuffix(meta, ";base64")
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	if mimeType == "" {
		mimeType = sniff(data)
	}
	return mimeType, data, nil
}

// EncodeDataURL builds a data URL for raw image bytes, sniffing the type.
func EncodeDataURL(data []byte) string {
	return "data:" + sniff(data) + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func sniff(data []byte) string {
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return m.String()
		}
	}
	return DefaultMIME
}

// FileName derives "<prefix>_<unix-ms>.<ext>" from the MIME subtype.
func FileName(prefix, mimeType string, now time.Time) string {
	ext := "jpg"
	if _, sub, ok := strings.Cut(mimeType, "/"); ok && sub != "" {
		ext = sub
	}
	return fmt.Sprintf("%s_%d.%s", prefix, now.UnixMilli(), ext)
}

// Error reports a failed upload. Label is the user-facing noun (gambar,
// avatar).
type Error struct {
	Label string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("Gagal mengunggah %s: %v", e.Label, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Uploader posts images to the backend upload endpoint.
type Uploader struct {
	client *apiclient.Client
	now    func() time.Time
}

// Option configures an Uploader
type Option func(*Uploader)

// WithClock overrides the clock used for file names
func WithClock(now func() time.Time) Option {
	return func(u *Uploader) {
		u.now = now
	}
}

// NewUploader creates an uploader on top of the API client.
func NewUploader(client *apiclient.Client, opts ...Option) *Uploader {
	u := &Uploader{client: client, now: time.Now}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// UploadDataURL decodes a data URL, uploads it as multipart field "file" and
// returns the URL the backend reports. A response without a URL is a failure.
func (u *Uploader) UploadDataURL(ctx context.Context, token, dataURL, prefix, label string) (string, error) {
	mimeType, data, err := ParseDataURL(dataURL)
	if err != nil {
		return "", &Error{Label: label, Err: err}
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return "", &Error{Label: label, Err: fmt.Errorf("unsupported type %s", mimeType)}
	}
	return u.Upload(ctx, token, FileName(prefix, mimeType, u.now()), mimeType, data, label)
}

// Upload sends raw bytes under the given file name.
func (u *Uploader) Upload(ctx context.Context, token, fileName, mimeType string, data []byte, label string) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreatePart(fileHeader(fileName, mimeType))
	if err != nil {
		return "", &Error{Label: label, Err: err}
	}
	if _, err := part.Write(data); err != nil {
		return "", &Error{Label: label, Err: err}
	}
	if err := writer.Close(); err != nil {
		return "", &Error{Label: label, Err: err}
	}

	log.Debug("Uploading image", "file", fileName, "type", mimeType, "size", len(data))

	resp, err := u.client.Do(ctx, apiclient.Request{
		Method:      http.MethodPost,
		Path:        ImagePath,
		Token:       token,
		Body:        &buf,
		ContentType: writer.FormDataContentType(),
	})
	if err != nil {
		return "", &Error{Label: label, Err: err}
	}
	if !resp.OK() {
		text := strings.TrimSpace(string(resp.Body))
		if text == "" {
			text = "Upload gagal"
		}
		return "", &Error{Label: label, Err: errors.New(text)}
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := resp.Decode(&out); err != nil {
		return "", &Error{Label: label, Err: err}
	}
	if out.URL == "" {
		return "", &Error{Label: label, Err: errors.New("server tidak mengembalikan URL")}
	}
	return out.URL, nil
}
