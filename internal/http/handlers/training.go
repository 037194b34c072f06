package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/lclrke/dawa-dashboard/internal/domain"
	"github.com/lclrke/dawa-dashboard/internal/http/response"
	"github.com/lclrke/dawa-dashboard/internal/normalization"
	"github.com/lclrke/dawa-dashboard/internal/platform/ctxutil"
	"github.com/lclrke/dawa-dashboard/internal/platform/logger"
	"github.com/lclrke/dawa-dashboard/internal/services"
)

const (
	defaultMaxAudioBytes = 50 << 20
	// room for every non-audio field of a request body
	maxJSONFieldsBytes = 64 << 10
)

type TrainingHandler struct {
	log           *logger.Logger
	artists       services.ArtistService
	captions      services.CaptionService
	writer        services.ArtifactWriter
	items         services.TrainingItemService
	exporter      services.DatasetExporter
	maxAudioBytes int
}

func NewTrainingHandler(
	log *logger.Logger,
	artists services.ArtistService,
	captions services.CaptionService,
	writer services.ArtifactWriter,
	items services.TrainingItemService,
	exporter services.DatasetExporter,
	maxAudioBytes int,
) *TrainingHandler {
	if maxAudioBytes <= 0 {
		maxAudioBytes = defaultMaxAudioBytes
	}
	return &TrainingHandler{
		log:           log.With("handler", "TrainingHandler"),
		artists:       artists,
		captions:      captions,
		writer:        writer,
		items:         items,
		exporter:      exporter,
		maxAudioBytes: maxAudioBytes,
	}
}

type captionRequest struct {
	ArtistID string `json:"artistId"`
	ParseID  string `json:"parseId"`
}

// POST /api/train/caption
func (h *TrainingHandler) GenerateCaption(c *gin.Context) {
	var req captionRequest
	if !bindLimitedJSON(c, &req, maxJSONFieldsBytes) {
		return
	}
	artistID, ok := h.authorizeArtist(c, req.ArtistID)
	if !ok {
		return
	}
	parseID, err := uuid.Parse(strings.TrimSpace(req.ParseID))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_parse_id", err)
		return
	}

	out, err := h.captions.GenerateForTrack(c.Request.Context(), artistID, parseID)
	if err != nil {
		ae := toAPIError(err, "caption_generation_failed")
		if errors.Is(err, services.ErrUpstreamGeneration) {
			// callers render an empty prompt with a retry affordance
			response.RespondErrorWith(c, ae.Status, ae.Code, ae.Err, gin.H{"prompt": ""})
			return
		}
		response.RespondError(c, ae.Status, ae.Code, ae.Err)
		return
	}
	response.RespondOK(c, out)
}

type saveItemRequest struct {
	ArtistID     string `json:"artistId"`
	ParseID      string `json:"parseId"`
	AlsSummaryID string `json:"alsSummaryId"`
	AlsFilename  string `json:"alsFilename"`
	ProjectName  string `json:"projectName"`
	AudioBase64  string `json:"audioBase64"`
	PromptText   string `json:"promptText"`
	Model        string `json:"model"`
	Version      string `json:"version"`
}

// POST /api/train/items
func (h *TrainingHandler) SaveItem(c *gin.Context) {
	var req saveItemRequest
	if !bindLimitedJSON(c, &req, h.saveBodyLimit()) {
		return
	}
	artistID, ok := h.authorizeArtist(c, req.ArtistID)
	if !ok {
		return
	}
	parseRef, err := optionalUUID(req.ParseID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_parse_id", err)
		return
	}
	summaryID, err := optionalUUID(req.AlsSummaryID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_als_summary_id", err)
		return
	}
	audio, err := decodeAudio(req.AudioBase64, h.maxAudioBytes)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_audio", err)
		return
	}

	item, err := h.writer.Save(c.Request.Context(), services.SaveInput{
		OwnerID:        artistID,
		Audio:          audio,
		CaptionText:    req.PromptText,
		SourceTrackRef: parseRef,
		TrackSummaryID: summaryID,
		SourceFilename: req.AlsFilename,
		ProjectName:    req.ProjectName,
		ModelName:      req.Model,
		PromptVersion:  req.Version,
	})
	if err != nil {
		respondServiceError(c, err, "save_training_item_failed")
		return
	}
	response.RespondCreated(c, gin.H{
		"id":         item.ID,
		"audioPath":  item.AudioPath,
		"promptPath": item.PromptPath,
		"status":     item.Status,
	})
}

// GET /api/train/items?artistId=&status=
func (h *TrainingHandler) ListItems(c *gin.Context) {
	artistID, ok := h.authorizeArtist(c, c.Query("artistId"))
	if !ok {
		return
	}
	var statuses []types.TrainingStatus
	if raw := normalization.ParseInputString(c.Query("status")); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				statuses = append(statuses, types.TrainingStatus(s))
			}
		}
	}
	items, err := h.items.ListForOwner(c.Request.Context(), artistID, statuses...)
	if err != nil {
		respondServiceError(c, err, "list_training_items_failed")
		return
	}
	summary, err := h.items.Summary(c.Request.Context(), artistID)
	if err != nil {
		respondServiceError(c, err, "list_training_items_failed")
		return
	}
	response.RespondOK(c, gin.H{"items": items, "summary": summary})
}

// POST /api/train/items/:id/fail
func (h *TrainingHandler) FailItem(c *gin.Context) {
	h.transitionItem(c, h.items.MarkFailed)
}

// POST /api/train/items/:id/requeue
func (h *TrainingHandler) RequeueItem(c *gin.Context) {
	h.transitionItem(c, h.items.Requeue)
}

type exportRequest struct {
	ArtistID string `json:"artistId"`
}

// POST /api/train/export
func (h *TrainingHandler) Export(c *gin.Context) {
	var req exportRequest
	if !bindLimitedJSON(c, &req, maxJSONFieldsBytes) {
		return
	}
	artistID, ok := h.authorizeArtist(c, req.ArtistID)
	if !ok {
		return
	}
	res, err := h.exporter.Export(c.Request.Context(), artistID)
	if err != nil {
		respondServiceError(c, err, "export_failed")
		return
	}
	response.RespondOK(c, res)
}

// GET /api/train/exports?artistId=
func (h *TrainingHandler) ListExports(c *gin.Context) {
	artistID, ok := h.authorizeArtist(c, c.Query("artistId"))
	if !ok {
		return
	}
	archives, err := h.exporter.ListArchives(c.Request.Context(), artistID)
	if err != nil {
		respondServiceError(c, err, "list_exports_failed")
		return
	}
	response.RespondOK(c, gin.H{"exports": archives})
}

func (h *TrainingHandler) transitionItem(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*types.TrainingItem, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_item_id", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	item, err := h.items.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.RespondError(c, http.StatusNotFound, "training_item_not_found", nil)
			return
		}
		respondServiceError(c, err, "load_training_item_failed")
		return
	}
	// someone else's item looks exactly like a missing one
	if _, err := h.artists.Authorize(c.Request.Context(), rd.UserID, item.OwnerID); err != nil {
		if errors.Is(err, services.ErrForbidden) || errors.Is(err, services.ErrNotFound) {
			response.RespondError(c, http.StatusNotFound, "training_item_not_found", nil)
			return
		}
		respondServiceError(c, err, "authorize_failed")
		return
	}
	updated, err := fn(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "update_training_item_failed")
		return
	}
	response.RespondOK(c, gin.H{"item": updated})
}

// authorizeArtist resolves the caller and checks they own rawArtistID. It
// writes the error response and returns ok=false on failure.
func (h *TrainingHandler) authorizeArtist(c *gin.Context, rawArtistID string) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return uuid.Nil, false
	}
	artistID, err := uuid.Parse(strings.TrimSpace(rawArtistID))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_artist_id", fmt.Errorf("artistId: %w", err))
		return uuid.Nil, false
	}
	if _, err := h.artists.Authorize(c.Request.Context(), rd.UserID, artistID); err != nil {
		respondServiceError(c, err, "authorize_failed")
		return uuid.Nil, false
	}
	return artistID, true
}

// saveBodyLimit covers the base64 audio, a data: URL prefix and the other fields.
func (h *TrainingHandler) saveBodyLimit() int64 {
	return int64(base64.StdEncoding.EncodedLen(h.maxAudioBytes)) + maxJSONFieldsBytes
}

// bindLimitedJSON caps the request body before decoding it. It writes 413 when
// the body is larger than limit and 400 for malformed JSON.
func bindLimitedJSON(c *gin.Context, dst any, limit int64) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	if err := c.ShouldBindJSON(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RespondError(c, http.StatusRequestEntityTooLarge, "request_too_large", fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	return true
}

func optionalUUID(raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// decodeAudio accepts plain base64 or a data: URL.
func decodeAudio(raw string, maxBytes int) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if i := strings.Index(raw, ";base64,"); strings.HasPrefix(raw, "data:") && i >= 0 {
		raw = raw[i+len(";base64,"):]
	}
	if raw == "" {
		return nil, errors.New("audioBase64 is required")
	}
	if base64.StdEncoding.DecodedLen(len(raw)) > maxBytes+3 {
		return nil, fmt.Errorf("audio exceeds %d bytes", maxBytes)
	}
	audio, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("audioBase64: %w", err)
	}
	if len(audio) > maxBytes {
		return nil, fmt.Errorf("audio exceeds %d bytes", maxBytes)
	}
	return audio, nil
}
