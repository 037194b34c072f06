package gcp

import (
	"errors"
	"testing"
)

func TestConfigFromEnvRequiresBucket(t *testing.T) {
	t.Setenv("GCS_BUCKET_NAME", "")
	t.Setenv("STORAGE_EMULATOR_HOST", "")

	_, err := ConfigFromEnv(ModeGCS)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Code != ConfigErrorMissingBucket {
		t.Fatalf("ConfigFromEnv: want missing bucket got=%v", err)
	}
}

func TestConfigFromEnvEmulator(t *testing.T) {
	t.Setenv("GCS_BUCKET_NAME", "dawa-exports")
	t.Setenv("STORAGE_EMULATOR_HOST", "http://fake-gcs:4443/")
	t.Setenv("OBJECT_STORAGE_PUBLIC_BASE_URL", "")

	cfg, err := ConfigFromEnv(ModeGCSEmulator)
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}
	if cfg.EmulatorHost != "http://fake-gcs:4443" {
		t.Fatalf("emulator host: got=%q", cfg.EmulatorHost)
	}
	if !cfg.IsEmulatorMode() {
		t.Fatalf("expected emulator mode")
	}
}

func TestValidateRejectsBadEmulatorHost(t *testing.T) {
	err := Validate(Config{Mode: ModeGCSEmulator, Bucket: "b", EmulatorHost: "fake-gcs:4443"})
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Code != ConfigErrorInvalidEmulatorHost {
		t.Fatalf("Validate: want invalid emulator host got=%v", err)
	}

	err = Validate(Config{Mode: Mode("s4"), Bucket: "b"})
	if !errors.As(err, &cfgErr) || cfgErr.Code != ConfigErrorInvalidMode {
		t.Fatalf("Validate: want invalid mode got=%v", err)
	}
}
