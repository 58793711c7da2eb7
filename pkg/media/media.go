// Package media stores image attachments and avatars.
//
// A Store turns uploaded bytes into a hosted URL, which then travels as the
// content of an `img` message or as an avatar/cover reference. DiskStore
// serves development setups from a local directory; S3Store backs
// production off an S3 bucket.
package media

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrTooLarge is returned when a file exceeds the size limit.
var ErrTooLarge = errors.New("media: file too large")

// ErrUnsupportedType is returned for content types outside the allow list.
var ErrUnsupportedType = errors.New("media: unsupported content type")

// Store is a media storage backend.
type Store interface {
	// Save stores the content and returns the URL messages reference it by.
	// Identical content maps to the same URL.
	Save(ctx context.Context, filename, contentType string, size int64, r io.Reader) (string, error)
}

// Config bounds what a store accepts.
type Config struct {
	// MaxFileSize is the maximum file size in bytes. 0 means no limit.
	MaxFileSize int64

	// AllowedTypes lists accepted MIME types. Empty accepts everything.
	AllowedTypes []string

	// TempExpiry is how long interrupted writes live before Cleanup removes
	// them.
	TempExpiry time.Duration
}

// DefaultConfig returns limits suitable for chat images.
func DefaultConfig() Config {
	return Config{
		MaxFileSize:  10 << 20,
		AllowedTypes: []string{"image/png", "image/jpeg", "image/gif", "image/webp"},
		TempExpiry:   time.Hour,
	}
}

func (c Config) allows(contentType string) bool {
	if len(c.AllowedTypes) == 0 {
		return true
	}
	for _, t := range c.AllowedTypes {
		if t == contentType {
			return true
		}
	}
	return false
}
