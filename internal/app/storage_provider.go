package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/lclrke/dawa-dashboard/internal/platform/envutil"
	"github.com/lclrke/dawa-dashboard/internal/platform/gcp"
	"github.com/lclrke/dawa-dashboard/internal/platform/logger"
	"github.com/lclrke/dawa-dashboard/internal/platform/objectstore"
	"github.com/lclrke/dawa-dashboard/internal/platform/s3compat"
)

const (
	StorageModeMemory = "memory"
	StorageModeS3     = "s3"
)

var (
	newBucketStore = func(ctx context.Context, log *logger.Logger, cfg gcp.Config) (objectstore.Store, error) {
		return gcp.NewBucketStore(ctx, log, cfg)
	}
	newS3Store = func(ctx context.Context, log *logger.Logger, cfg s3compat.Config) (objectstore.Store, error) {
		return s3compat.NewStore(ctx, log, cfg)
	}
)

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidMode   StorageProviderBootstrapErrorCode = "invalid_mode"
	StorageProviderBootstrapErrorInvalidConfig StorageProviderBootstrapErrorCode = "invalid_config"
	StorageProviderBootstrapErrorConnectFailed StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code  StorageProviderBootstrapErrorCode
	Mode  string
	Cause error
}

func (e *StorageProviderBootstrapError) Error() string {
	if e == nil {
		return "object storage bootstrap failed"
	}
	return fmt.Sprintf("object storage bootstrap failed (code=%s mode=%q): %v", e.Code, e.Mode, e.Cause)
}

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveObjectStore builds the store selected by OBJECT_STORAGE_MODE.
func resolveObjectStore(ctx context.Context, log *logger.Logger, mode string) (objectstore.Store, error) {
	log.Info("Selecting object storage provider", "mode", mode)

	var (
		store objectstore.Store
		err   error
	)
	switch mode {
	case StorageModeMemory:
		log.Warn("Using in-memory object storage; artifacts are lost on restart")
		return objectstore.NewMemoryStore(envutil.String("OBJECT_STORAGE_PUBLIC_BASE_URL", "")), nil
	case string(gcp.ModeGCS), string(gcp.ModeGCSEmulator):
		cfg, cfgErr := gcp.ConfigFromEnv(gcp.Mode(mode))
		if cfgErr != nil {
			err = cfgErr
			break
		}
		store, err = newBucketStore(ctx, log, cfg)
	case StorageModeS3:
		cfg, cfgErr := s3compat.ConfigFromEnv()
		if cfgErr != nil {
			err = &StorageProviderBootstrapError{Code: StorageProviderBootstrapErrorInvalidConfig, Mode: mode, Cause: cfgErr}
			break
		}
		store, err = newS3Store(ctx, log, cfg)
	default:
		err = &StorageProviderBootstrapError{
			Code:  StorageProviderBootstrapErrorInvalidMode,
			Mode:  mode,
			Cause: fmt.Errorf("unsupported object storage mode %q (allowed: memory, gcs, gcs_emulator, s3)", mode),
		}
	}
	if err != nil {
		classified := classifyStorageProviderBootstrapError(mode, err)
		log.Error("Object storage provider bootstrap failed",
			"mode", mode,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}
	return store, nil
}

func classifyStorageProviderBootstrapError(mode string, err error) error {
	var bootstrapErr *StorageProviderBootstrapError
	if errors.As(err, &bootstrapErr) {
		return err
	}
	var cfgErr *gcp.ConfigError
	if errors.As(err, &cfgErr) {
		code := StorageProviderBootstrapErrorInvalidConfig
		if cfgErr.Code == gcp.ConfigErrorInvalidMode {
			code = StorageProviderBootstrapErrorInvalidMode
		}
		return &StorageProviderBootstrapError{Code: code, Mode: mode, Cause: err}
	}
	return &StorageProviderBootstrapError{Code: StorageProviderBootstrapErrorConnectFailed, Mode: mode, Cause: err}
}

func storageProviderBootstrapErrorCode(err error) StorageProviderBootstrapErrorCode {
	var bootstrapErr *StorageProviderBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return StorageProviderBootstrapErrorConnectFailed
}
