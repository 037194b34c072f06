package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"

	"github.com/lclrke/dawa-dashboard/internal/observability"
	"github.com/lclrke/dawa-dashboard/internal/platform/logger"
	"github.com/lclrke/dawa-dashboard/internal/platform/openai"
)

// Document is an opaque JSON value passed through to the generator.
type Document json.RawMessage

// Indented renders the document with two-space indentation. An empty or
// null document renders as {}.
func (d Document) Indented() (string, error) {
	raw := bytes.TrimSpace(d)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "{}", nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type Caption struct {
	Text    string `json:"prompt"`
	Model   string `json:"model"`
	Version string `json:"version"`
	// Format contract violations found in Text. The caption is still usable.
	ContractWarnings []string `json:"contractWarnings,omitempty"`
}

// TrackCaption is a caption plus the provenance of the summary it was
// generated from.
type TrackCaption struct {
	Caption
	TrackSummaryID uuid.UUID `json:"alsSummaryId"`
	SourceFilename string    `json:"alsFilename"`
	ProjectName    string    `json:"projectName"`
}

type CaptionService interface {
	GenerateCaption(ctx context.Context, styleProfile, trackSummary Document) (Caption, error)
	GenerateForTrack(ctx context.Context, ownerID, sourceTrackRef uuid.UUID) (TrackCaption, error)
}

// CaptionConfig overrides template generation settings when non-zero.
type CaptionConfig struct {
	Model       string
	Temperature *float64
	MaxTokens   int
}

type captionService struct {
	log     *logger.Logger
	ai      openai.Client
	artists ArtistService
	tpl     CaptionTemplate
}

func NewCaptionService(baseLog *logger.Logger, ai openai.Client, artists ArtistService, tpl CaptionTemplate, cfg CaptionConfig) CaptionService {
	if m := strings.TrimSpace(cfg.Model); m != "" {
		tpl.Model = m
	}
	if cfg.Temperature != nil {
		tpl.Temperature = *cfg.Temperature
	}
	if cfg.MaxTokens > 0 {
		tpl.MaxTokens = cfg.MaxTokens
	}
	return &captionService{
		log:     baseLog.With("service", "CaptionService"),
		ai:      ai,
		artists: artists,
		tpl:     tpl,
	}
}

// GenerateCaption makes one generation call. On failure the returned
// Caption has an empty Text so callers can offer a retry.
func (s *captionService) GenerateCaption(ctx context.Context, styleProfile, trackSummary Document) (out Caption, err error) {
	out = Caption{Model: s.tpl.Model, Version: s.tpl.Version}
	ctx, span := observability.StartSpan(ctx, "caption.generate", attribute.String("caption.model", s.tpl.Model))
	defer func() { observability.EndSpan(span, err) }()

	user, err := buildCaptionUserMessage(styleProfile, trackSummary)
	if err != nil {
		return out, err
	}

	temp := s.tpl.Temperature
	start := time.Now()
	text, genErr := s.ai.GenerateText(ctx, openai.TextRequest{
		Model:       s.tpl.Model,
		System:      s.tpl.System,
		User:        user,
		Temperature: &temp,
		MaxTokens:   s.tpl.MaxTokens,
	})
	text = strings.TrimSpace(text)
	if genErr == nil && text == "" {
		genErr = openai.ErrNoContent
	}
	if genErr != nil {
		observability.Current().ObserveStage("caption", "generate", "failed", time.Since(start))
		s.log.Warn("Caption generation failed", "model", s.tpl.Model, "error", genErr)
		return out, pipelineErr(ErrUpstreamGeneration, "generate caption", genErr)
	}
	observability.Current().ObserveStage("caption", "generate", "ok", time.Since(start))

	out.Text = text
	out.ContractWarnings = checkCaptionContract(text, trackSummary)
	if len(out.ContractWarnings) > 0 {
		s.log.Warn("Caption violates format contract", "warnings", out.ContractWarnings)
	}
	return out, nil
}

func (s *captionService) GenerateForTrack(ctx context.Context, ownerID, sourceTrackRef uuid.UUID) (TrackCaption, error) {
	out := TrackCaption{Caption: Caption{Model: s.tpl.Model, Version: s.tpl.Version}}
	if ownerID == uuid.Nil || sourceTrackRef == uuid.Nil {
		return out, validationErr("generate caption", "artistId and parseId are required")
	}
	profile, err := s.artists.StyleProfile(ctx, ownerID)
	if err != nil {
		return out, err
	}
	summary, err := s.artists.TrackSummary(ctx, ownerID, sourceTrackRef)
	if err != nil {
		return out, err
	}
	out.TrackSummaryID = summary.ID
	out.SourceFilename = summary.AlsFilename
	out.ProjectName = summary.ProjectName

	caption, err := s.GenerateCaption(ctx, profile, Document(summary.Summary))
	out.Caption = caption
	return out, err
}

func buildCaptionUserMessage(styleProfile, trackSummary Document) (string, error) {
	profile, err := styleProfile.Indented()
	if err != nil {
		return "", validationErr("generate caption", "style profile is not valid JSON: %v", err)
	}
	summary, err := trackSummary.Indented()
	if err != nil {
		return "", validationErr("generate caption", "track summary is not valid JSON: %v", err)
	}
	return fmt.Sprintf("ARTIST_MASTER_SCHEMA:\n%s\n\nALS_SUMMARY:\n%s", profile, summary), nil
}

var trailingBPM = regexp.MustCompile(`BPM:\s*(\d+(?:\.\d+)?)$`)

// checkCaptionContract reports how text departs from the instructed
// format: one plain paragraph ending in "BPM: <n>" that agrees with the
// summary's overview.tempo.
func checkCaptionContract(text string, trackSummary Document) []string {
	var warnings []string
	if strings.Contains(text, "\n") {
		warnings = append(warnings, "multiple paragraphs")
	}
	if looksLikeMarkup(text) {
		warnings = append(warnings, "contains markup")
	}
	m := trailingBPM.FindStringSubmatch(text)
	if m == nil {
		return append(warnings, "missing trailing BPM")
	}
	bpm, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return warnings
	}
	tempo := gjson.GetBytes(trackSummary, "overview.tempo")
	if tempo.Exists() && tempo.Type == gjson.Number && math.Round(tempo.Float()) != math.Round(bpm) {
		warnings = append(warnings, fmt.Sprintf("BPM %s disagrees with tempo %s", m[1], tempo.Raw))
	}
	return warnings
}

func looksLikeMarkup(text string) bool {
	t := strings.TrimSpace(text)
	if strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[") || strings.HasPrefix(t, "#") {
		return true
	}
	for _, marker := range []string{"```", "**", "__", "<br", "</"} {
		if strings.Contains(t, marker) {
			return true
		}
	}
	return false
}
