package artists

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/lclrke/dawa-dashboard/internal/domain"
	"github.com/lclrke/dawa-dashboard/internal/platform/dbctx"
	"github.com/lclrke/dawa-dashboard/internal/platform/logger"
)

type ArtistProfileRepo interface {
	Upsert(dbc dbctx.Context, row *types.ArtistProfile) error
	GetByArtistID(dbc dbctx.Context, artistID uuid.UUID) (*types.ArtistProfile, error)
}

type artistProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewArtistProfileRepo(db *gorm.DB, baseLog *logger.Logger) ArtistProfileRepo {
	return &artistProfileRepo{db: db, log: baseLog.With("repo", "ArtistProfileRepo")}
}

func (r *artistProfileRepo) Upsert(dbc dbctx.Context, row *types.ArtistProfile) error {
	if row == nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now

	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "artist_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"master_schema", "updated_at"}),
		}).
		Create(row).Error
}

func (r *artistProfileRepo) GetByArtistID(dbc dbctx.Context, artistID uuid.UUID) (*types.ArtistProfile, error) {
	var out types.ArtistProfile
	err := dbc.DB(r.db).Where("artist_id = ?", artistID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
