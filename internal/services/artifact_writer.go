package services

import (
	"bytes"
	"context"
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

type SaveInput struct {
	OwnerID        uuid.UUID
	Audio          []byte
	CaptionText    string
	SourceTrackRef *uuid.UUID
	TrackSummaryID *uuid.UUID
	SourceFilename string
	ProjectName    string
	// Defaults to the caption template's model and version.
	ModelName     string
	PromptVersion string
}

// ArtifactWriter persists one audio/caption pair as a ready training item.
type ArtifactWriter interface {
	Save(ctx context.Context, in SaveInput) (*types.TrainingItem, error)
}

type artifactWriter struct {
	log    *logger.Logger
	store  objectstore.Store
	items  TrainingItemService
	owners OwnerResolver
	tpl    CaptionTemplate
	now    func() time.Time
}

func NewArtifactWriter(
	baseLog *logger.Logger,
	store objectstore.Store,
	items TrainingItemService,
	owners OwnerResolver,
	tpl CaptionTemplate,
) ArtifactWriter {
	return &artifactWriter{
		log:    baseLog.With("service", "ArtifactWriter"),
		store:  store,
		items:  items,
		owners: owners,
		tpl:    tpl,
		now:    time.Now,
	}
}

// Save writes the audio, then the caption, then the record. A record only
// exists once both objects are in the store; on failure the objects
// written so far are deleted.
func (w *artifactWriter) Save(ctx context.Context, in SaveInput) (item *types.TrainingItem, err error) {
	if in.OwnerID == uuid.Nil {
		return nil, validationErr("save", "artistId is required")
	}
	if len(in.Audio) == 0 {
		return nil, validationErr("save", "audio is required")
	}
	caption := strings.TrimSpace(in.CaptionText)
	if caption == "" {
		return nil, validationErr("save", "promptText is required")
	}

	log := w.log.With(ctxutil.LogFields(ctx)...)

	slug, err := w.owners.OwnerSlug(ctx, in.OwnerID)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	ctx, span := observability.StartSpan(ctx, "training.save",
		attribute.String("training.item_id", id.String()),
		attribute.String("training.owner_id", in.OwnerID.String()),
	)
	defer func() { observability.EndSpan(span, err) }()

	audio := audioKey(slug, id)
	prompt := promptKey(slug, id)
	generatedAt := w.now().UTC()
	row := &types.TrainingItem{
		ID:             id,
		OwnerID:        in.OwnerID,
		SourceTrackRef: in.SourceTrackRef,
		TrackSummaryID: in.TrackSummaryID,
		SourceFilename: in.SourceFilename,
		ProjectName:    in.ProjectName,
		AudioPath:      audio,
		PromptPath:     prompt,
		PromptText:     caption,
		ModelName:      firstNonEmpty(in.ModelName, w.tpl.Model),
		PromptVersion:  firstNonEmpty(in.PromptVersion, w.tpl.Version),
		GeneratedAt:    &generatedAt,
	}

	err = runSaga(ctx, log, "save", []SagaStep{
		{
			Name: "uploading-audio",
			Do: func(ctx context.Context) error {
				err := w.store.Upload(ctx, audio, bytes.NewReader(in.Audio), objectstore.UploadOptions{
					ContentType: objectstore.ContentTypeMP3,
					NoClobber:   true,
				})
				if err != nil {
					return pipelineErr(ErrAudioUpload, "save", err)
				}
				return nil
			},
			Undo: func(ctx context.Context) error { return w.store.Delete(ctx, audio) },
		},
		{
			Name: "uploading-prompt",
			Do: func(ctx context.Context) error {
				err := w.store.Upload(ctx, prompt, strings.NewReader(caption), objectstore.UploadOptions{
					ContentType: objectstore.ContentTypeText,
					NoClobber:   true,
				})
				if err != nil {
					return pipelineErr(ErrPromptUpload, "save", err)
				}
				return nil
			},
			Undo: func(ctx context.Context) error { return w.store.Delete(ctx, prompt) },
		},
		{
			Name: "recording",
			Do: func(ctx context.Context) error {
				created, err := w.items.Record(ctx, row)
				if err != nil {
					return pipelineErr(ErrRecordInsert, "save", err)
				}
				item = created
				return nil
			},
		},
	})
	if err != nil {
		return nil, err
	}

	log.Info("Training item saved",
		"item_id", id,
		"owner_id", in.OwnerID,
		"audio_path", audio,
		"audio_bytes", len(in.Audio),
	)
	return item, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
