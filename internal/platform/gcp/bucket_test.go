package gcp

import (
	"errors"
	"net/http"
	"testing"

	"google.golang.org/api/googleapi"

	"github.com/lclrke/dawa-dashboard/internal/platform/objectstore"
)

func TestPublicURL(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		key  string
		want string
	}{
		{
			name: "gcs default",
			cfg:  Config{Mode: ModeGCS, Bucket: "dawa-exports"},
			key:  "owners/nova/datasets/dataset-1.zip",
			want: "https://storage.googleapis.com/dawa-exports/owners/nova/datasets/dataset-1.zip",
		},
		{
			name: "cdn wins",
			cfg:  Config{Mode: ModeGCS, Bucket: "dawa-exports", CDNDomain: "cdn.example.com"},
			key:  "/owners/nova/x.zip",
			want: "https://cdn.example.com/owners/nova/x.zip",
		},
		{
			name: "public base override",
			cfg:  Config{Mode: ModeGCS, Bucket: "dawa-exports", PublicBaseURL: "http://localhost:4443"},
			key:  "owners/nova/x.zip",
			want: "http://localhost:4443/dawa-exports/owners/nova/x.zip",
		},
		{
			name: "emulator media url",
			cfg:  Config{Mode: ModeGCSEmulator, Bucket: "dawa-exports", EmulatorHost: "http://fake-gcs:4443"},
			key:  "owners/nova/x.zip",
			want: "http://fake-gcs:4443/storage/v1/b/dawa-exports/o/owners%2Fnova%2Fx.zip?alt=media",
		},
	}
	for _, tc := range cases {
		if got := publicURL(tc.cfg, tc.key); got != tc.want {
			t.Fatalf("%s: want=%q got=%q", tc.name, tc.want, got)
		}
	}
}

func TestClassifyWriteErrPreconditionFailed(t *testing.T) {
	err := classifyWriteErr(&googleapi.Error{Code: http.StatusPreconditionFailed, Message: "conditionNotMet"})
	if !errors.Is(err, objectstore.ErrObjectExists) {
		t.Fatalf("412: want ErrObjectExists got=%v", err)
	}

	err = classifyWriteErr(&googleapi.Error{Code: http.StatusForbidden})
	if errors.Is(err, objectstore.ErrObjectExists) {
		t.Fatalf("403 must not map to ErrObjectExists")
	}
}
