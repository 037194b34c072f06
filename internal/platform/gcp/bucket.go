package gcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/lclrke/dawa-dashboard/internal/platform/logger"
	"github.com/lclrke/dawa-dashboard/internal/platform/objectstore"
)

// BucketStore is an objectstore.Store backed by a single GCS bucket.
type BucketStore struct {
	log    *logger.Logger
	client *storage.Client
	cfg    Config
}

func NewBucketStore(ctx context.Context, log *logger.Logger, cfg Config) (*BucketStore, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	client, err := newStorageClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	serviceLog := log.With("service", "GCSBucketStore")
	serviceLog.Info(
		"Object storage initialized",
		"mode", cfg.Mode,
		"bucket", cfg.Bucket,
		"emulator_host", cfg.EmulatorHost,
		"public_base_url", cfg.PublicBaseURL,
	)
	return &BucketStore{log: serviceLog, client: client, cfg: cfg}, nil
}

func newStorageClient(ctx context.Context, cfg Config) (*storage.Client, error) {
	if cfg.IsEmulatorMode() {
		_ = os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	}
	opts := ClientOptionsFromEnv()
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	return storage.NewClient(ctx, opts...)
}

func (s *BucketStore) object(key string) *storage.ObjectHandle {
	return s.client.Bucket(s.cfg.Bucket).Object(objectstore.CleanKey(key))
}

func (s *BucketStore) Upload(ctx context.Context, key string, body io.Reader, opts objectstore.UploadOptions) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	obj := s.object(key)
	if opts.NoClobber {
		obj = obj.If(storage.Conditions{DoesNotExist: true})
	}
	w := obj.NewWriter(ctx)
	w.ContentType = opts.ContentType
	if w.ContentType == "" {
		w.ContentType = objectstore.ContentTypeForKey(key)
	}
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", classifyWriteErr(err))
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer for %q: %w", key, classifyWriteErr(err))
	}
	return nil
}

func (s *BucketStore) Download(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	r, err := s.object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("download %q: %w", key, objectstore.ErrObjectNotFound)
		}
		return nil, fmt.Errorf("failed to open GCS reader: %w", err)
	}
	defer r.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, fmt.Errorf("failed to read GCS object %q: %w", key, err)
	}
	return buf.Bytes(), nil
}

func (s *BucketStore) Delete(ctx context.Context, keys ...string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var errs []error
	for _, k := range keys {
		if strings.TrimSpace(k) == "" {
			continue
		}
		if err := s.object(k).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			errs = append(errs, fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", k, s.cfg.Bucket, err))
		}
	}
	return errors.Join(errs...)
}

func (s *BucketStore) List(ctx context.Context, prefix string) ([]objectstore.ObjectInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	it := s.client.Bucket(s.cfg.Bucket).Objects(ctx, &storage.Query{Prefix: objectstore.CleanKey(prefix)})
	out := []objectstore.ObjectInfo{}
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, objectstore.ObjectInfo{
			Key:         attrs.Name,
			Size:        attrs.Size,
			ContentType: attrs.ContentType,
			Updated:     attrs.Updated,
		})
	}
	return out, nil
}

func (s *BucketStore) PublicURL(key string) string {
	return publicURL(s.cfg, key)
}

func (s *BucketStore) Close() error {
	return s.client.Close()
}

func publicURL(cfg Config, key string) string {
	key = objectstore.CleanKey(key)
	if cfg.CDNDomain != "" {
		return fmt.Sprintf("https://%s/%s", cfg.CDNDomain, key)
	}
	if cfg.IsEmulatorMode() {
		base := cfg.PublicBaseURL
		if base == "" {
			base = cfg.EmulatorHost
		}
		return fmt.Sprintf(
			"%s/storage/v1/b/%s/o/%s?alt=media",
			strings.TrimRight(base, "/"),
			url.PathEscape(cfg.Bucket),
			url.PathEscape(key),
		)
	}
	if cfg.PublicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", cfg.PublicBaseURL, cfg.Bucket, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", cfg.Bucket, key)
}

// classifyWriteErr maps a failed DoesNotExist precondition to ErrObjectExists.
func classifyWriteErr(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
		return fmt.Errorf("%w: %v", objectstore.ErrObjectExists, err)
	}
	return err
}
