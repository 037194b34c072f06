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

type TrackSummaryRepo interface {
	Upsert(dbc dbctx.Context, row *types.TrackSummary) error
	GetByParseID(dbc dbctx.Context, artistID, parseID uuid.UUID) (*types.TrackSummary, error)
}

type trackSummaryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTrackSummaryRepo(db *gorm.DB, baseLog *logger.Logger) TrackSummaryRepo {
	return &trackSummaryRepo{db: db, log: baseLog.With("repo", "TrackSummaryRepo")}
}

func (r *trackSummaryRepo) Upsert(dbc dbctx.Context, row *types.TrackSummary) error {
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
			Columns:   []clause.Column{{Name: "parse_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"summary", "als_filename", "project_name", "updated_at"}),
		}).
		Create(row).Error
}

// GetByParseID scopes the lookup to the artist so one artist cannot read
// another's summaries.
func (r *trackSummaryRepo) GetByParseID(dbc dbctx.Context, artistID, parseID uuid.UUID) (*types.TrackSummary, error) {
	var out types.TrackSummary
	err := dbc.DB(r.db).
		Where("artist_id = ? AND parse_id = ?", artistID, parseID).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
