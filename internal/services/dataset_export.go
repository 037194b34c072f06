package services

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	types "github.com/lclrke/dawa-dashboard/internal/domain"
	"github.com/lclrke/dawa-dashboard/internal/observability"
	"github.com/lclrke/dawa-dashboard/internal/platform/ctxutil"
	"github.com/lclrke/dawa-dashboard/internal/platform/logger"
	"github.com/lclrke/dawa-dashboard/internal/platform/objectstore"
)

type ExportResult struct {
	ArchiveKey    string      `json:"zipPath"`
	ArchiveURL    string      `json:"datasetUrl"`
	IncludedIDs   []uuid.UUID `json:"exportedIds"`
	IncludedCount int         `json:"itemCount"`
	SkippedIDs    []uuid.UUID `json:"skippedIds"`
	// False when the archive was uploaded but the ready -> exported update
	// did not go through.
	StatusUpdated bool `json:"statusUpdated"`
}

type ArchiveInfo struct {
	Key     string    `json:"zipPath"`
	URL     string    `json:"datasetUrl"`
	Size    int64     `json:"size"`
	Updated time.Time `json:"updatedAt"`
}

type DatasetExporter interface {
	Export(ctx context.Context, ownerID uuid.UUID) (ExportResult, error)
	ListArchives(ctx context.Context, ownerID uuid.UUID) ([]ArchiveInfo, error)
}

// ExportLocker serializes exports per owner. TryLock reports ok=false when
// another export holds the lock.
type ExportLocker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, name, token string) error
}

// NoopLocker never blocks; concurrent exports for one owner may overlap.
type NoopLocker struct{}

func (NoopLocker) TryLock(context.Context, string, time.Duration) (string, bool, error) {
	return "", true, nil
}

func (NoopLocker) Unlock(context.Context, string, string) error { return nil }

type datasetExporter struct {
	log     *logger.Logger
	store   objectstore.Store
	items   TrainingItemService
	owners  OwnerResolver
	locker  ExportLocker
	lockTTL time.Duration
	now     func() time.Time
}

func NewDatasetExporter(
	baseLog *logger.Logger,
	store objectstore.Store,
	items TrainingItemService,
	owners OwnerResolver,
	locker ExportLocker,
	lockTTL time.Duration,
) DatasetExporter {
	if locker == nil {
		locker = NoopLocker{}
	}
	if lockTTL <= 0 {
		lockTTL = 10 * time.Minute
	}
	return &datasetExporter{
		log:     baseLog.With("service", "DatasetExporter"),
		store:   store,
		items:   items,
		owners:  owners,
		locker:  locker,
		lockTTL: lockTTL,
		now:     time.Now,
	}
}

func (e *datasetExporter) Export(ctx context.Context, ownerID uuid.UUID) (res ExportResult, err error) {
	if ownerID == uuid.Nil {
		return res, validationErr("export", "artistId is required")
	}
	ctx, span := observability.StartSpan(ctx, "training.export", attribute.String("training.owner_id", ownerID.String()))
	defer func() { observability.EndSpan(span, err) }()
	log := e.log.With(ctxutil.LogFields(ctx)...)

	lockName := "export:" + ownerID.String()
	token, ok, err := e.locker.TryLock(ctx, lockName, e.lockTTL)
	if err != nil {
		return res, fmt.Errorf("acquire export lock: %w", err)
	}
	if !ok {
		return res, pipelineErr(ErrExportInProgress, "export", fmt.Errorf("owner %s", ownerID))
	}
	defer func() {
		if uerr := e.locker.Unlock(context.WithoutCancel(ctx), lockName, token); uerr != nil {
			log.Warn("Export lock release failed", "owner_id", ownerID, "error", uerr)
		}
	}()

	ready, err := e.items.ListForOwner(ctx, ownerID, types.TrainingStatusReady)
	if err != nil {
		return res, err
	}
	if len(ready) == 0 {
		return res, pipelineErr(ErrNoReadyItems, "export", fmt.Errorf("owner %s", ownerID))
	}

	slug, err := e.owners.OwnerSlug(ctx, ownerID)
	if err != nil {
		return res, err
	}

	entries := make([]archiveEntry, 0, 2*len(ready))
	res.IncludedIDs = make([]uuid.UUID, 0, len(ready))
	res.SkippedIDs = []uuid.UUID{}
	for _, item := range ready {
		audio, caption, ok := e.collect(ctx, log, item)
		if !ok {
			res.SkippedIDs = append(res.SkippedIDs, item.ID)
			continue
		}
		base := baseName(len(res.IncludedIDs) + 1)
		entries = append(entries,
			archiveEntry{Name: base + ".mp3", Body: audio},
			archiveEntry{Name: base + ".txt", Body: []byte(caption)},
		)
		res.IncludedIDs = append(res.IncludedIDs, item.ID)
	}
	res.IncludedCount = len(res.IncludedIDs)
	observability.Current().AddExportItems(res.IncludedCount, len(res.SkippedIDs))
	if res.IncludedCount == 0 {
		return res, pipelineErr(ErrNoExportableItems, "export", fmt.Errorf("%d ready items skipped", len(ready)))
	}

	now := e.now()
	archive, err := buildArchive(entries, now.UTC())
	if err != nil {
		return res, pipelineErr(ErrArchiveUpload, "export", err)
	}
	key := archiveKey(slug, now)
	start := time.Now()
	if err := e.store.Upload(ctx, key, bytes.NewReader(archive), objectstore.UploadOptions{
		ContentType: objectstore.ContentTypeZip,
		NoClobber:   true,
	}); err != nil {
		observability.Current().ObserveStage("export", "archive-upload", "failed", time.Since(start))
		return res, pipelineErr(ErrArchiveUpload, "export", err)
	}
	observability.Current().ObserveStage("export", "archive-upload", "ok", time.Since(start))
	res.ArchiveKey = key
	res.ArchiveURL = e.store.PublicURL(key)

	n, err := e.items.MarkExported(ctx, res.IncludedIDs)
	if err != nil {
		// archive is already durable; leave the items ready for bookkeeping repair
		log.Error("Export status update failed",
			"owner_id", ownerID,
			"archive_key", key,
			"item_count", res.IncludedCount,
			"error", err,
		)
		return res, nil
	}
	res.StatusUpdated = true
	if int(n) != res.IncludedCount {
		log.Warn("Export status update touched fewer items than exported",
			"owner_id", ownerID,
			"updated", n,
			"included", res.IncludedCount,
		)
	}

	log.Info("Dataset exported",
		"owner_id", ownerID,
		"archive_key", key,
		"included", res.IncludedCount,
		"skipped", len(res.SkippedIDs),
		"archive_bytes", len(archive),
	)
	return res, nil
}

// collect fetches the audio and caption for one item. ok=false means the
// item cannot be paired and must be left out of the archive.
func (e *datasetExporter) collect(ctx context.Context, log *logger.Logger, item *types.TrainingItem) ([]byte, string, bool) {
	audio, err := e.store.Download(ctx, item.AudioPath)
	if err != nil || len(audio) == 0 {
		log.Warn("Skipping item: audio unavailable",
			"item_id", item.ID,
			"audio_path", item.AudioPath,
			"error", pipelineErr(ErrStorageRead, "export", err),
		)
		return nil, "", false
	}

	caption := strings.TrimSpace(item.PromptText)
	if caption == "" && item.PromptPath != "" {
		raw, err := e.store.Download(ctx, item.PromptPath)
		if err != nil {
			log.Warn("Skipping item: caption unavailable",
				"item_id", item.ID,
				"prompt_path", item.PromptPath,
				"error", pipelineErr(ErrStorageRead, "export", err),
			)
			return nil, "", false
		}
		caption = strings.TrimSpace(string(raw))
	}
	if caption == "" {
		log.Warn("Skipping item: empty caption", "item_id", item.ID)
		return nil, "", false
	}
	return audio, caption, true
}

// ListArchives returns the owner's archives, newest first.
func (e *datasetExporter) ListArchives(ctx context.Context, ownerID uuid.UUID) ([]ArchiveInfo, error) {
	if ownerID == uuid.Nil {
		return nil, validationErr("list archives", "artistId is required")
	}
	slug, err := e.owners.OwnerSlug(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	objs, err := e.store.List(ctx, datasetPrefix(slug))
	if err != nil {
		return nil, pipelineErr(ErrStorageRead, "list archives", err)
	}
	out := make([]ArchiveInfo, 0, len(objs))
	for _, o := range objs {
		if !strings.HasSuffix(o.Key, ".zip") {
			continue
		}
		out = append(out, ArchiveInfo{Key: o.Key, URL: e.store.PublicURL(o.Key), Size: o.Size, Updated: o.Updated})
	}
	// keys embed the export timestamp, so key order is time order
	sort.Slice(out, func(i, j int) bool { return out[i].Key > out[j].Key })
	return out, nil
}
