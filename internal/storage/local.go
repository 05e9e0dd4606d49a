package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Local stores files on disk under Dir and hands out bare filenames. Used
// when no remote storage is configured; the server serves Dir at /uploads.
type Local struct {
	Dir string
}

func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Local{Dir: dir}, nil
}

func (l *Local) Put(ctx context.Context, r io.Reader, name string) (UploadedFile, error) {
	ext := strings.ToLower(filepath.Ext(name))
	fname := fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)
	dst, err := os.Create(filepath.Join(l.Dir, fname))
	if err != nil {
		return UploadedFile{}, err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(dst.Name())
		return UploadedFile{}, err
	}
	return UploadedFile{Filename: fname}, nil
}

func (l *Local) Delete(ctx context.Context, locator string) error {
	if locator == "" || locator == PlaceholderFile {
		return nil
	}
	// Stored locators are bare filenames; strip a "/uploads/" prefix in case
	// a full public path was persisted.
	locator = strings.TrimPrefix(locator, "/uploads/")
	return os.Remove(filepath.Join(l.Dir, filepath.Base(locator)))
}
