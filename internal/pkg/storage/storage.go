package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
)

var (
	ErrFileNotFound    = errors.New("file not found")
	ErrInvalidPath     = errors.New("invalid file path")
	ErrFileTooLarge    = errors.New("file exceeds the maximum size")
	ErrExtensionDenied = errors.New("file type is not allowed")
)

// FileStorage holds employee documents addressed by slash-separated keys.
type FileStorage interface {
	// Save writes r under key and returns the cleaned key. A partial
	// write never becomes visible.
	Save(ctx context.Context, key string, r io.Reader) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Remove deletes key. Missing files are not an error.
	Remove(ctx context.Context, key string) error
	URL(key string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
}

type UploadOptions struct {
	MaxSize     int64
	AllowedExts []string
}

// DocumentUploadOptions restricts employee documents to common office formats.
var DocumentUploadOptions = UploadOptions{
	MaxSize:     10 << 20,
	AllowedExts: []string{".pdf", ".png", ".jpg", ".jpeg", ".doc", ".docx"},
}

// Validate checks a file name and size against the options.
func (o UploadOptions) Validate(fileName string, size int64) error {
	if o.MaxSize > 0 && size > o.MaxSize {
		return ErrFileTooLarge
	}
	if len(o.AllowedExts) > 0 {
		ext := strings.ToLower(filepath.Ext(fileName))
		if !slices.Contains(o.AllowedExts, ext) {
			return fmt.Errorf("%w: %q", ErrExtensionDenied, ext)
		}
	}
	return nil
}
