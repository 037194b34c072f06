package objectstore

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestMemoryStoreNoClobber(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("")

	if err := s.Upload(ctx, "owners/a/training/1/audio.mp3", strings.NewReader("one"), UploadOptions{ContentType: ContentTypeMP3, NoClobber: true}); err != nil {
		t.Fatalf("first upload: %v", err)
	}
	err := s.Upload(ctx, "owners/a/training/1/audio.mp3", strings.NewReader("two"), UploadOptions{NoClobber: true})
	if !errors.Is(err, ErrObjectExists) {
		t.Fatalf("second upload: want ErrObjectExists got=%v", err)
	}
	got, err := s.Download(ctx, "owners/a/training/1/audio.mp3")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if string(got) != "one" {
		t.Fatalf("content overwritten: got=%q", got)
	}
	if ct := s.ContentType("owners/a/training/1/audio.mp3"); ct != ContentTypeMP3 {
		t.Fatalf("content type: got=%q", ct)
	}

	if err := s.Upload(ctx, "owners/a/training/1/audio.mp3", strings.NewReader("three"), UploadOptions{}); err != nil {
		t.Fatalf("overwrite without no-clobber: %v", err)
	}
}

func TestMemoryStoreDeleteAndList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("http://cdn.local/")
	for _, k := range []string{"owners/a/datasets/b.zip", "owners/a/datasets/a.zip", "owners/b/datasets/c.zip"} {
		if err := s.Upload(ctx, k, strings.NewReader("z"), UploadOptions{}); err != nil {
			t.Fatalf("Upload %s: %v", k, err)
		}
	}
	infos, err := s.List(ctx, "owners/a/datasets/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "owners/a/datasets/a.zip" {
		t.Fatalf("List: got=%+v", infos)
	}
	if infos[0].ContentType != ContentTypeZip {
		t.Fatalf("inferred content type: got=%q", infos[0].ContentType)
	}

	if err := s.Delete(ctx, "owners/a/datasets/a.zip", "missing"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Download(ctx, "owners/a/datasets/a.zip"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("Download after delete: want ErrObjectNotFound got=%v", err)
	}
	if u := s.PublicURL("/owners/b/datasets/c.zip"); u != "http://cdn.local/owners/b/datasets/c.zip" {
		t.Fatalf("PublicURL: got=%q", u)
	}
}
