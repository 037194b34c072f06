package artists

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/lclrke/dawa-dashboard/internal/domain"
	"github.com/lclrke/dawa-dashboard/internal/platform/dbctx"
	"github.com/lclrke/dawa-dashboard/internal/platform/logger"
)

type ArtistRepo interface {
	Create(dbc dbctx.Context, artist *types.Artist) (*types.Artist, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Artist, error)
	GetByIDForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.Artist, error)
}

type artistRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewArtistRepo(db *gorm.DB, baseLog *logger.Logger) ArtistRepo {
	return &artistRepo{db: db, log: baseLog.With("repo", "ArtistRepo")}
}

func (r *artistRepo) Create(dbc dbctx.Context, artist *types.Artist) (*types.Artist, error) {
	if artist.ID == uuid.Nil {
		artist.ID = uuid.New()
	}
	if err := dbc.DB(r.db).Create(artist).Error; err != nil {
		return nil, err
	}
	return artist, nil
}

func (r *artistRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Artist, error) {
	var out types.Artist
	err := dbc.DB(r.db).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByIDForUser returns nil when the artist does not exist or belongs to
// another user.
func (r *artistRepo) GetByIDForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.Artist, error) {
	var out types.Artist
	err := dbc.DB(r.db).Where("id = ? AND user_id = ?", id, userID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
