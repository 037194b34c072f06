package app

import (
	"context"
	"errors"
	"testing"

	"github.com/lclrke/dawa-dashboard/internal/platform/gcp"
	"github.com/lclrke/dawa-dashboard/internal/platform/logger"
	"github.com/lclrke/dawa-dashboard/internal/platform/objectstore"
	"github.com/lclrke/dawa-dashboard/internal/platform/s3compat"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func bootstrapCode(t *testing.T, err error) StorageProviderBootstrapErrorCode {
	t.Helper()
	var got *StorageProviderBootstrapError
	if !errors.As(err, &got) {
		t.Fatalf("expected StorageProviderBootstrapError, got=%T (%v)", err, err)
	}
	return got.Code
}

func TestResolveObjectStoreMemory(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_PUBLIC_BASE_URL", "https://cdn.example.test")
	store, err := resolveObjectStore(context.Background(), testLogger(t), StorageModeMemory)
	if err != nil {
		t.Fatalf("resolveObjectStore: %v", err)
	}
	if got := store.PublicURL("a/b.zip"); got != "https://cdn.example.test/a/b.zip" {
		t.Fatalf("public url: %s", got)
	}
}

func TestResolveObjectStoreInvalidMode(t *testing.T) {
	_, err := resolveObjectStore(context.Background(), testLogger(t), "ftp")
	if code := bootstrapCode(t, err); code != StorageProviderBootstrapErrorInvalidMode {
		t.Fatalf("code: got=%q", code)
	}
}

func TestResolveObjectStoreGCSConfigErrors(t *testing.T) {
	t.Setenv("GCS_BUCKET_NAME", "")
	_, err := resolveObjectStore(context.Background(), testLogger(t), string(gcp.ModeGCS))
	if code := bootstrapCode(t, err); code != StorageProviderBootstrapErrorInvalidConfig {
		t.Fatalf("missing bucket: got=%q", code)
	}

	t.Setenv("GCS_BUCKET_NAME", "exports")
	t.Setenv("STORAGE_EMULATOR_HOST", "")
	_, err = resolveObjectStore(context.Background(), testLogger(t), string(gcp.ModeGCSEmulator))
	if code := bootstrapCode(t, err); code != StorageProviderBootstrapErrorInvalidConfig {
		t.Fatalf("missing emulator host: got=%q", code)
	}
	var cfgErr *gcp.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Code != gcp.ConfigErrorMissingEmulatorHost {
		t.Fatalf("cause should be preserved: %v", err)
	}
}

func TestResolveObjectStoreConnectFailure(t *testing.T) {
	orig := newBucketStore
	t.Cleanup(func() { newBucketStore = orig })
	newBucketStore = func(context.Context, *logger.Logger, gcp.Config) (objectstore.Store, error) {
		return nil, errors.New("dial tcp: connection refused")
	}
	t.Setenv("GCS_BUCKET_NAME", "exports")

	_, err := resolveObjectStore(context.Background(), testLogger(t), string(gcp.ModeGCS))
	if code := bootstrapCode(t, err); code != StorageProviderBootstrapErrorConnectFailed {
		t.Fatalf("code: got=%q", code)
	}
}

func TestResolveObjectStoreS3(t *testing.T) {
	orig := newS3Store
	t.Cleanup(func() { newS3Store = orig })
	var gotCfg s3compat.Config
	newS3Store = func(_ context.Context, _ *logger.Logger, cfg s3compat.Config) (objectstore.Store, error) {
		gotCfg = cfg
		return objectstore.NewMemoryStore(""), nil
	}
	t.Setenv("S3_ENDPOINT", "minio:9000")
	t.Setenv("S3_BUCKET", "exports")
	t.Setenv("S3_ACCESS_KEY", "key")
	t.Setenv("S3_SECRET_KEY", "secret")

	if _, err := resolveObjectStore(context.Background(), testLogger(t), StorageModeS3); err != nil {
		t.Fatalf("resolveObjectStore: %v", err)
	}
	if gotCfg.Endpoint != "minio:9000" || gotCfg.Bucket != "exports" {
		t.Fatalf("s3 config: %+v", gotCfg)
	}

	t.Setenv("S3_ENDPOINT", "http://minio:9000")
	_, err := resolveObjectStore(context.Background(), testLogger(t), StorageModeS3)
	if code := bootstrapCode(t, err); code != StorageProviderBootstrapErrorInvalidConfig {
		t.Fatalf("scheme in endpoint: got=%q", code)
	}
}
