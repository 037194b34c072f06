package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/lclrke/dawa-dashboard/internal/domain"
	"github.com/lclrke/dawa-dashboard/internal/platform/dbctx"
	"github.com/lclrke/dawa-dashboard/internal/platform/logger"
	"github.com/lclrke/dawa-dashboard/internal/platform/objectstore"
	"github.com/lclrke/dawa-dashboard/internal/platform/openai"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func testTemplate(t *testing.T) CaptionTemplate {
	t.Helper()
	tpl, err := DefaultCaptionTemplate()
	if err != nil {
		t.Fatalf("DefaultCaptionTemplate: %v", err)
	}
	return tpl
}

// fakeStore wraps the memory store with per-key failure injection.
type fakeStore struct {
	*objectstore.MemoryStore
	mu           sync.Mutex
	failUpload   map[string]error // key suffix -> error
	failDownload map[string]error // exact key -> error
	failDelete   error
	uploads      []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		MemoryStore:  objectstore.NewMemoryStore(""),
		failUpload:   map[string]error{},
		failDownload: map[string]error{},
	}
}

func (s *fakeStore) Upload(ctx context.Context, key string, body io.Reader, opts objectstore.UploadOptions) error {
	s.mu.Lock()
	s.uploads = append(s.uploads, key)
	for suffix, err := range s.failUpload {
		if strings.HasSuffix(key, suffix) {
			s.mu.Unlock()
			return err
		}
	}
	s.mu.Unlock()
	return s.MemoryStore.Upload(ctx, key, body, opts)
}

func (s *fakeStore) Download(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	err := s.failDownload[key]
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.MemoryStore.Download(ctx, key)
}

func (s *fakeStore) Delete(ctx context.Context, keys ...string) error {
	if s.failDelete != nil {
		return s.failDelete
	}
	return s.MemoryStore.Delete(ctx, keys...)
}

func (s *fakeStore) uploadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.uploads)
}

// fakeItemRepo is an in-memory TrainingItemRepo.
type fakeItemRepo struct {
	mu          sync.Mutex
	rows        map[uuid.UUID]types.TrainingItem
	createErr   error
	updateErr   error
	updateCalls int
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{rows: map[uuid.UUID]types.TrainingItem{}}
}

func (r *fakeItemRepo) Create(_ dbctx.Context, item *types.TrainingItem) (*types.TrainingItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, ok := r.rows[item.ID]; ok {
		return nil, errors.New("duplicate id")
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	item.UpdatedAt = item.CreatedAt
	r.rows[item.ID] = *item
	return item, nil
}

func (r *fakeItemRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.TrainingItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (r *fakeItemRepo) ListByOwner(_ dbctx.Context, ownerID uuid.UUID, statuses ...types.TrainingStatus) ([]*types.TrainingItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*types.TrainingItem{}
	for _, row := range r.rows {
		if row.OwnerID != ownerID || !hasStatus(statuses, row.Status) {
			continue
		}
		row := row
		out = append(out, &row)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *fakeItemRepo) UpdateStatusByIDs(_ dbctx.Context, ids []uuid.UUID, from []types.TrainingStatus, to types.TrainingStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateCalls++
	if r.updateErr != nil {
		return 0, r.updateErr
	}
	var n int64
	for _, id := range ids {
		row, ok := r.rows[id]
		if !ok || !hasStatus(from, row.Status) {
			continue
		}
		row.Status = to
		row.UpdatedAt = time.Now().UTC()
		r.rows[id] = row
		n++
	}
	return n, nil
}

func (r *fakeItemRepo) CountByOwnerAndStatus(_ dbctx.Context, ownerID uuid.UUID) (map[types.TrainingStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[types.TrainingStatus]int64{}
	for _, row := range r.rows {
		if row.OwnerID == ownerID {
			out[row.Status]++
		}
	}
	return out, nil
}

func (r *fakeItemRepo) status(id uuid.UUID) types.TrainingStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id].Status
}

func (r *fakeItemRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func hasStatus(set []types.TrainingStatus, s types.TrainingStatus) bool {
	if len(set) == 0 {
		return true
	}
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

type fakeOwners struct {
	slugs map[uuid.UUID]string
}

func (o fakeOwners) OwnerSlug(_ context.Context, ownerID uuid.UUID) (string, error) {
	slug, ok := o.slugs[ownerID]
	if !ok {
		return "", validationErr("resolve owner", "unknown owner %s", ownerID)
	}
	return slug, nil
}

type fakeAI struct {
	reply string
	err   error
	last  openai.TextRequest
	calls int
}

func (f *fakeAI) GenerateText(_ context.Context, req openai.TextRequest) (string, error) {
	f.calls++
	f.last = req
	return f.reply, f.err
}

type fakeLocker struct {
	busy     bool
	unlocked int
}

func (l *fakeLocker) TryLock(context.Context, string, time.Duration) (string, bool, error) {
	if l.busy {
		return "", false, nil
	}
	return "tok", true, nil
}

func (l *fakeLocker) Unlock(context.Context, string, string) error {
	l.unlocked++
	return nil
}
