package s3compat

import (
	"errors"
	"net/http"
	"testing"

	"github.com/minio/minio-go/v7"

	"github.com/lclrke/dawa-dashboard/internal/platform/objectstore"
)

func TestClassifyErr(t *testing.T) {
	exists := classifyErr(minio.ErrorResponse{StatusCode: http.StatusPreconditionFailed, Code: "PreconditionFailed"})
	if !errors.Is(exists, objectstore.ErrObjectExists) {
		t.Fatalf("412: want ErrObjectExists got=%v", exists)
	}
	missing := classifyErr(minio.ErrorResponse{StatusCode: http.StatusNotFound, Code: "NoSuchKey"})
	if !errors.Is(missing, objectstore.ErrObjectNotFound) {
		t.Fatalf("404: want ErrObjectNotFound got=%v", missing)
	}
	other := classifyErr(minio.ErrorResponse{StatusCode: http.StatusForbidden, Code: "AccessDenied"})
	if errors.Is(other, objectstore.ErrObjectExists) || errors.Is(other, objectstore.ErrObjectNotFound) {
		t.Fatalf("403 misclassified: %v", other)
	}
}

func TestPublicURL(t *testing.T) {
	cfg := Config{Endpoint: "minio:9000", Bucket: "dawa-exports"}
	if got := publicURL(cfg, "/owners/a/x.zip"); got != "http://minio:9000/dawa-exports/owners/a/x.zip" {
		t.Fatalf("endpoint url: got=%q", got)
	}
	cfg.UseSSL = true
	cfg.PublicBaseURL = "https://files.example.com"
	if got := publicURL(cfg, "owners/a/x.zip"); got != "https://files.example.com/dawa-exports/owners/a/x.zip" {
		t.Fatalf("public base url: got=%q", got)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{Endpoint: "http://minio:9000", AccessKey: "a", SecretKey: "s", Bucket: "b"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected scheme rejection")
	}
	cfg.Endpoint = "minio:9000"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
