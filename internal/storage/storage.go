// Package storage is the file backend boundary: durable put of uploaded
// bytes and best-effort delete by locator.
package storage

import (
	"context"
	"io"
	"strings"
)

// Upload constraints for product galleries.
const (
	MaxProductImages = 8             // 1 main + 7 additional
	MaxFileSize      = 5 << 20       // 5 MiB per file
	PlaceholderFile  = "/placeholder.jpg"
)

// AllowedImageType reports whether the multipart content type is an image
// we accept.
func AllowedImageType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// UploadedFile is the result of a completed upload. Exactly one of the two
// fields is set: Location for a remote-storage URL/key, Filename for a bare
// local filename.
type UploadedFile struct {
	Location string `json:"location,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// Locator returns the string stored on the asset row.
func (f UploadedFile) Locator() string {
	if f.Location != "" {
		return f.Location
	}
	return f.Filename
}

// PublicURL returns the URL a browser can fetch the file from: the remote
// location as-is, or the local filename under the /uploads static route.
func (f UploadedFile) PublicURL() string {
	if f.Location != "" {
		return f.Location
	}
	return "/uploads/" + f.Filename
}

// Backend stores uploaded binaries. Put must be durable before it returns;
// Delete is best-effort and callers are expected to swallow its errors.
type Backend interface {
	Put(ctx context.Context, r io.Reader, name string) (UploadedFile, error)
	Delete(ctx context.Context, locator string) error
}
