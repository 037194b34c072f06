package s3compat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/lclrke/dawa-dashboard/internal/platform/logger"
	"github.com/lclrke/dawa-dashboard/internal/platform/objectstore"
)

// Store is an objectstore.Store over any S3-compatible endpoint.
type Store struct {
	log    *logger.Logger
	client *minio.Client
	cfg    Config
}

func NewStore(ctx context.Context, log *logger.Logger, cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: newTransport(),
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("bucket exists: %w", err)
	}
	if !exists {
		if !cfg.CreateBucket {
			return nil, fmt.Errorf("bucket missing: %s", cfg.Bucket)
		}
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("make bucket %s: %w", cfg.Bucket, err)
		}
	}
	serviceLog := log.With("service", "S3Store")
	serviceLog.Info("Object storage initialized", "mode", "s3", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)
	return &Store{log: serviceLog, client: client, cfg: cfg}, nil
}

func (s *Store) Upload(ctx context.Context, key string, body io.Reader, opts objectstore.UploadOptions) error {
	raw, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read upload body: %w", err)
	}
	putOpts := minio.PutObjectOptions{ContentType: opts.ContentType}
	if putOpts.ContentType == "" {
		putOpts.ContentType = objectstore.ContentTypeForKey(key)
	}
	if opts.NoClobber {
		// If-None-Match: *
		putOpts.SetMatchETagExcept("*")
	}
	_, err = s.client.PutObject(ctx, s.cfg.Bucket, objectstore.CleanKey(key), bytes.NewReader(raw), int64(len(raw)), putOpts)
	if err != nil {
		return fmt.Errorf("put %q: %w", key, classifyErr(err))
	}
	return nil
}

func (s *Store) Download(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.cfg.Bucket, objectstore.CleanKey(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, classifyErr(err))
	}
	defer obj.Close()
	raw, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", key, classifyErr(err))
	}
	return raw, nil
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	var errs []error
	for _, k := range keys {
		k = objectstore.CleanKey(k)
		if k == "" {
			continue
		}
		if err := s.client.RemoveObject(ctx, s.cfg.Bucket, k, minio.RemoveObjectOptions{}); err != nil {
			if errors.Is(classifyErr(err), objectstore.ErrObjectNotFound) {
				continue
			}
			errs = append(errs, fmt.Errorf("remove %q: %w", k, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Store) List(ctx context.Context, prefix string) ([]objectstore.ObjectInfo, error) {
	out := []objectstore.ObjectInfo{}
	for info := range s.client.ListObjects(ctx, s.cfg.Bucket, minio.ListObjectsOptions{
		Prefix:    objectstore.CleanKey(prefix),
		Recursive: true,
	}) {
		if info.Err != nil {
			return nil, info.Err
		}
		out = append(out, objectstore.ObjectInfo{
			Key:         info.Key,
			Size:        info.Size,
			ContentType: info.ContentType,
			Updated:     info.LastModified,
		})
	}
	return out, nil
}

func (s *Store) PublicURL(key string) string {
	return publicURL(s.cfg, key)
}

func publicURL(cfg Config, key string) string {
	key = objectstore.CleanKey(key)
	if cfg.PublicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", cfg.PublicBaseURL, cfg.Bucket, key)
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, strings.TrimRight(cfg.Endpoint, "/"), cfg.Bucket, key)
}

func classifyErr(err error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	switch {
	case resp.StatusCode == http.StatusPreconditionFailed || resp.Code == "PreconditionFailed":
		return fmt.Errorf("%w: %v", objectstore.ErrObjectExists, err)
	case resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %v", objectstore.ErrObjectNotFound, err)
	default:
		return err
	}
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
