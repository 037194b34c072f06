package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	types "github.com/lclrke/dawa-dashboard/internal/domain"
	"github.com/lclrke/dawa-dashboard/internal/platform/objectstore"
)

type writerFixture struct {
	store  *fakeStore
	repo   *fakeItemRepo
	writer ArtifactWriter
	owner  uuid.UUID
}

func newWriterFixture(t *testing.T) *writerFixture {
	t.Helper()
	log := testLogger(t)
	owner := uuid.New()
	store := newFakeStore()
	repo := newFakeItemRepo()
	items := NewTrainingItemService(log, repo)
	owners := fakeOwners{slugs: map[uuid.UUID]string{owner: "boards-of-canada"}}
	return &writerFixture{
		store:  store,
		repo:   repo,
		writer: NewArtifactWriter(log, store, items, owners, testTemplate(t)),
		owner:  owner,
	}
}

func TestArtifactWriterSave(t *testing.T) {
	f := newWriterFixture(t)
	ref := uuid.New()

	item, err := f.writer.Save(context.Background(), SaveInput{
		OwnerID:        f.owner,
		Audio:          []byte("ID3-fake-mp3"),
		CaptionText:    "  Hazy analog pads. BPM: 92 \n",
		SourceTrackRef: &ref,
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if item.Status != types.TrainingStatusReady {
		t.Fatalf("status: got=%s", item.Status)
	}
	wantAudio := "owners/boards-of-canada/training/" + item.ID.String() + "/audio.mp3"
	wantPrompt := "owners/boards-of-canada/training/" + item.ID.String() + "/prompt.txt"
	if item.AudioPath != wantAudio || item.PromptPath != wantPrompt {
		t.Fatalf("paths: audio=%s prompt=%s", item.AudioPath, item.PromptPath)
	}
	if item.PromptText != "Hazy analog pads. BPM: 92" {
		t.Fatalf("prompt text: got=%q", item.PromptText)
	}
	if item.ModelName != "gpt-4o-mini" || item.PromptVersion != "train-v1" {
		t.Fatalf("provenance defaults: model=%s version=%s", item.ModelName, item.PromptVersion)
	}
	if ct := f.store.ContentType(wantAudio); ct != objectstore.ContentTypeMP3 {
		t.Fatalf("audio content type: got=%s", ct)
	}
	if ct := f.store.ContentType(wantPrompt); ct != objectstore.ContentTypeText {
		t.Fatalf("prompt content type: got=%s", ct)
	}
	raw, err := f.store.Download(context.Background(), wantPrompt)
	if err != nil || string(raw) != "Hazy analog pads. BPM: 92" {
		t.Fatalf("prompt object: err=%v body=%q", err, raw)
	}
	if f.repo.count() != 1 {
		t.Fatalf("records: got=%d", f.repo.count())
	}
}

func TestArtifactWriterPromptFailureRemovesAudio(t *testing.T) {
	f := newWriterFixture(t)
	f.store.failUpload["/prompt.txt"] = errors.New("bucket unavailable")

	_, err := f.writer.Save(context.Background(), SaveInput{OwnerID: f.owner, Audio: []byte("mp3"), CaptionText: "x. BPM: 1"})
	if !errors.Is(err, ErrPromptUpload) || !errors.Is(err, ErrStorageWrite) {
		t.Fatalf("expected ErrPromptUpload, got=%v", err)
	}
	objs, _ := f.store.List(context.Background(), "owners/")
	if len(objs) != 0 {
		t.Fatalf("audio should have been cleaned up, found %+v", objs)
	}
	if f.repo.count() != 0 {
		t.Fatalf("no record expected, got=%d", f.repo.count())
	}
}

func TestArtifactWriterInsertFailureRemovesBothObjects(t *testing.T) {
	f := newWriterFixture(t)
	f.repo.createErr = errors.New("connection reset")

	_, err := f.writer.Save(context.Background(), SaveInput{OwnerID: f.owner, Audio: []byte("mp3"), CaptionText: "x. BPM: 1"})
	if !errors.Is(err, ErrRecordInsert) || !errors.Is(err, ErrRecord) {
		t.Fatalf("expected ErrRecordInsert, got=%v", err)
	}
	objs, _ := f.store.List(context.Background(), "owners/")
	if len(objs) != 0 {
		t.Fatalf("objects should have been cleaned up, found %+v", objs)
	}
}

func TestArtifactWriterCleanupFailureKeepsPrimaryError(t *testing.T) {
	f := newWriterFixture(t)
	f.repo.createErr = errors.New("connection reset")
	f.store.failDelete = errors.New("delete denied")

	_, err := f.writer.Save(context.Background(), SaveInput{OwnerID: f.owner, Audio: []byte("mp3"), CaptionText: "x. BPM: 1"})
	if !errors.Is(err, ErrRecordInsert) {
		t.Fatalf("expected primary ErrRecordInsert, got=%v", err)
	}
	if errors.Is(err, f.store.failDelete) {
		t.Fatalf("cleanup error must not mask the primary error")
	}
}

func TestArtifactWriterAudioFailure(t *testing.T) {
	f := newWriterFixture(t)
	f.store.failUpload["/audio.mp3"] = objectstore.ErrObjectExists

	_, err := f.writer.Save(context.Background(), SaveInput{OwnerID: f.owner, Audio: []byte("mp3"), CaptionText: "x"})
	if !errors.Is(err, ErrAudioUpload) || !errors.Is(err, objectstore.ErrObjectExists) {
		t.Fatalf("expected ErrAudioUpload wrapping ErrObjectExists, got=%v", err)
	}
	if f.store.uploadCount() != 1 {
		t.Fatalf("prompt upload must not be attempted, uploads=%d", f.store.uploadCount())
	}
}

func TestArtifactWriterValidation(t *testing.T) {
	f := newWriterFixture(t)
	cases := []SaveInput{
		{Audio: []byte("a"), CaptionText: "c"},
		{OwnerID: f.owner, CaptionText: "c"},
		{OwnerID: f.owner, Audio: []byte("a"), CaptionText: "   "},
		{OwnerID: uuid.New(), Audio: []byte("a"), CaptionText: "c"},
	}
	for i, in := range cases {
		if _, err := f.writer.Save(context.Background(), in); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d: expected ErrValidation, got=%v", i, err)
		}
	}
	if f.store.uploadCount() != 0 {
		t.Fatalf("no uploads expected on validation failure, got=%d", f.store.uploadCount())
	}
}
