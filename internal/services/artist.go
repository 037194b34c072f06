package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/lclrke/dawa-dashboard/internal/data/repos"
	types "github.com/lclrke/dawa-dashboard/internal/domain"
	"github.com/lclrke/dawa-dashboard/internal/normalization"
	"github.com/lclrke/dawa-dashboard/internal/platform/dbctx"
	"github.com/lclrke/dawa-dashboard/internal/platform/logger"
)

// OwnerResolver maps an owner id to the slug used in object keys.
type OwnerResolver interface {
	OwnerSlug(ctx context.Context, ownerID uuid.UUID) (string, error)
}

type ArtistService interface {
	OwnerResolver
	// Authorize returns the artist when userID owns it.
	Authorize(ctx context.Context, userID, artistID uuid.UUID) (*types.Artist, error)
	StyleProfile(ctx context.Context, artistID uuid.UUID) (Document, error)
	TrackSummary(ctx context.Context, artistID, parseID uuid.UUID) (*types.TrackSummary, error)
}

type artistService struct {
	log       *logger.Logger
	artists   repos.ArtistRepo
	profiles  repos.ArtistProfileRepo
	summaries repos.TrackSummaryRepo
}

func NewArtistService(
	baseLog *logger.Logger,
	artists repos.ArtistRepo,
	profiles repos.ArtistProfileRepo,
	summaries repos.TrackSummaryRepo,
) ArtistService {
	return &artistService{
		log:       baseLog.With("service", "ArtistService"),
		artists:   artists,
		profiles:  profiles,
		summaries: summaries,
	}
}

func (s *artistService) Authorize(ctx context.Context, userID, artistID uuid.UUID) (*types.Artist, error) {
	if userID == uuid.Nil {
		return nil, pipelineErr(ErrForbidden, "authorize", fmt.Errorf("missing caller identity"))
	}
	if artistID == uuid.Nil {
		return nil, validationErr("authorize", "artistId is required")
	}
	artist, err := s.artists.GetByID(dbctx.Context{Ctx: ctx}, artistID)
	if err != nil {
		return nil, pipelineErr(ErrRecord, "authorize", err)
	}
	if artist == nil {
		return nil, pipelineErr(ErrNotFound, "authorize", fmt.Errorf("artist %s", artistID))
	}
	if artist.UserID != userID {
		s.log.Warn("Artist access denied", "artist_id", artistID, "user_id", userID)
		return nil, pipelineErr(ErrForbidden, "authorize", fmt.Errorf("artist %s", artistID))
	}
	return artist, nil
}

// OwnerSlug falls back to the artist id when the display name has no
// characters that survive normalization.
func (s *artistService) OwnerSlug(ctx context.Context, ownerID uuid.UUID) (string, error) {
	artist, err := s.artists.GetByID(dbctx.Context{Ctx: ctx}, ownerID)
	if err != nil {
		return "", pipelineErr(ErrRecord, "resolve owner", err)
	}
	if artist == nil {
		return "", validationErr("resolve owner", "unknown owner %s", ownerID)
	}
	slug := normalization.Slug(artist.Name)
	if slug == "" {
		slug = ownerID.String()
	}
	return slug, nil
}

func (s *artistService) StyleProfile(ctx context.Context, artistID uuid.UUID) (Document, error) {
	row, err := s.profiles.GetByArtistID(dbctx.Context{Ctx: ctx}, artistID)
	if err != nil {
		return nil, pipelineErr(ErrRecord, "load style profile", err)
	}
	if row == nil {
		return nil, validationErr("load style profile", "no style profile for artist %s", artistID)
	}
	return Document(row.MasterSchema), nil
}

func (s *artistService) TrackSummary(ctx context.Context, artistID, parseID uuid.UUID) (*types.TrackSummary, error) {
	row, err := s.summaries.GetByParseID(dbctx.Context{Ctx: ctx}, artistID, parseID)
	if err != nil {
		return nil, pipelineErr(ErrRecord, "load track summary", err)
	}
	if row == nil {
		return nil, validationErr("load track summary", "no track summary for parse %s", parseID)
	}
	return row, nil
}
