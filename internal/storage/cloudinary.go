package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"storefront/internal/apperr"
)

// Cloudinary stores files in a Cloudinary media library.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinary builds a backend from a cloudinary:// URL.
func NewCloudinary(rawURL string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &Cloudinary{cld: cld}, nil
}

func (c *Cloudinary) Put(ctx context.Context, r io.Reader, name string) (UploadedFile, error) {
	publicID := fmt.Sprintf("product-%d-%s", time.Now().UnixNano(), strings.TrimSuffix(name, path.Ext(name)))
	res, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{PublicID: publicID})
	if err != nil {
		return UploadedFile{}, apperr.Upstream("upload failed: %v", err)
	}
	return UploadedFile{Location: res.SecureURL}, nil
}

func (c *Cloudinary) Delete(ctx context.Context, locator string) error {
	if locator == "" || locator == PlaceholderFile {
		return nil
	}
	publicID := publicIDFromLocator(locator)
	if publicID == "" {
		return nil
	}
	_, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	return err
}

// publicIDFromLocator resolves the tagged locator once at the backend
// boundary: a non-URL string is already a public id; a delivery URL has the
// shape <host>/<cloud>/image/upload/v<n>/<public_id>.<ext>.
func publicIDFromLocator(locator string) string {
	if !strings.HasPrefix(locator, "http") {
		return strings.TrimSuffix(locator, path.Ext(locator))
	}
	u, err := url.Parse(locator)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.TrimPrefix(u.Path, "/"), "/")
	for i, p := range parts {
		if p == "upload" && i+1 < len(parts) {
			rest := parts[i+1:]
			if len(rest) > 0 && strings.HasPrefix(rest[0], "v") {
				rest = rest[1:]
			}
			id := strings.Join(rest, "/")
			id, _ = url.PathUnescape(id)
			return strings.TrimSuffix(id, path.Ext(id))
		}
	}
	return ""
}
