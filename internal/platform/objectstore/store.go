package objectstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

var (
	// ErrObjectExists is returned by a no-clobber upload when the key is taken.
	ErrObjectExists = errors.New("object already exists")
	// ErrObjectNotFound is returned when downloading a missing key.
	ErrObjectNotFound = errors.New("object not found")
)

const (
	ContentTypeMP3  = "audio/mpeg"
	ContentTypeText = "text/plain"
	ContentTypeZip  = "application/zip"
)

type UploadOptions struct {
	ContentType string
	// NoClobber makes the upload fail with ErrObjectExists instead of
	// replacing an existing object.
	NoClobber bool
}

type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
	Updated     time.Time
}

// Store is the binary object store addressed by hierarchical string keys.
type Store interface {
	Upload(ctx context.Context, key string, body io.Reader, opts UploadOptions) error
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	PublicURL(key string) string
}

// ContentTypeForKey guesses a content type from the key's extension.
func ContentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch {
	case strings.HasSuffix(s, ".mp3"):
		return ContentTypeMP3
	case strings.HasSuffix(s, ".txt"):
		return ContentTypeText
	case strings.HasSuffix(s, ".zip"):
		return ContentTypeZip
	case strings.HasSuffix(s, ".json"):
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// CleanKey strips surrounding whitespace and leading slashes.
func CleanKey(key string) string {
	return strings.TrimLeft(strings.TrimSpace(key), "/")
}
