package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	data        []byte
	contentType string
	updated     time.Time
}

// MemoryStore is an in-process Store used for local development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	baseURL string
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		objects: map[string]memoryObject{},
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}
}

func (m *MemoryStore) Upload(ctx context.Context, key string, body io.Reader, opts UploadOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key = CleanKey(key)
	if key == "" {
		return fmt.Errorf("object key required")
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read upload body: %w", err)
	}
	ct := opts.ContentType
	if ct == "" {
		ct = ContentTypeForKey(key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.objects[key]; exists && opts.NoClobber {
		return fmt.Errorf("upload %q: %w", key, ErrObjectExists)
	}
	m.objects[key] = memoryObject{data: raw, contentType: ct, updated: time.Now().UTC()}
	return nil
}

func (m *MemoryStore) Download(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key = CleanKey(key)
	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("download %q: %w", key, ErrObjectNotFound)
	}
	return bytes.Clone(obj.data), nil
}

func (m *MemoryStore) Delete(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.objects, CleanKey(k))
	}
	return nil
}

func (m *MemoryStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix = CleanKey(prefix)
	m.mu.RLock()
	out := make([]ObjectInfo, 0)
	for k, obj := range m.objects {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		out = append(out, ObjectInfo{
			Key:         k,
			Size:        int64(len(obj.data)),
			ContentType: obj.contentType,
			Updated:     obj.updated,
		})
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MemoryStore) PublicURL(key string) string {
	key = CleanKey(key)
	if m.baseURL == "" {
		return "memory://" + key
	}
	return m.baseURL + "/" + (&url.URL{Path: key}).EscapedPath()
}

// Exists reports whether key is present.
func (m *MemoryStore) Exists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[CleanKey(key)]
	return ok
}

// ContentType returns the stored content type for key, or "".
func (m *MemoryStore) ContentType(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.objects[CleanKey(key)].contentType
}
