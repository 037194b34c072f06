package s3compat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lclrke/dawa-dashboard/internal/platform/envutil"
)

type Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Region        string
	UseSSL        bool
	Bucket        string
	PublicBaseURL string
	// CreateBucket makes the store create Bucket at startup when missing.
	CreateBucket bool
}

func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Endpoint:      envutil.String("S3_ENDPOINT", "localhost:9000"),
		AccessKey:     envutil.String("S3_ACCESS_KEY", ""),
		SecretKey:     envutil.String("S3_SECRET_KEY", ""),
		Region:        envutil.String("S3_REGION", "us-east-1"),
		UseSSL:        envutil.Bool("S3_USE_SSL", false),
		Bucket:        envutil.String("S3_BUCKET", "dawa-exports"),
		PublicBaseURL: strings.TrimRight(envutil.String("S3_PUBLIC_BASE_URL", ""), "/"),
		CreateBucket:  envutil.Bool("S3_CREATE_BUCKET", false),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("endpoint is required")
	}
	if strings.TrimSpace(c.AccessKey) == "" {
		return errors.New("access key is required")
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return errors.New("secret key is required")
	}
	if strings.TrimSpace(c.Bucket) == "" {
		return errors.New("bucket is required")
	}
	if strings.Contains(c.Endpoint, "://") {
		return fmt.Errorf("endpoint must not include scheme: %q", c.Endpoint)
	}
	return nil
}
