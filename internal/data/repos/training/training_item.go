package training

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/lclrke/dawa-dashboard/internal/domain"
	"github.com/lclrke/dawa-dashboard/internal/platform/dbctx"
	"github.com/lclrke/dawa-dashboard/internal/platform/logger"
)

// ErrItemExists is returned by Create when the id is already taken.
var ErrItemExists = errors.New("training item already exists")

type TrainingItemRepo interface {
	Create(dbc dbctx.Context, item *types.TrainingItem) (*types.TrainingItem, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.TrainingItem, error)
	ListByOwner(dbc dbctx.Context, ownerID uuid.UUID, statuses ...types.TrainingStatus) ([]*types.TrainingItem, error)
	UpdateStatusByIDs(dbc dbctx.Context, ids []uuid.UUID, from []types.TrainingStatus, to types.TrainingStatus) (int64, error)
	CountByOwnerAndStatus(dbc dbctx.Context, ownerID uuid.UUID) (map[types.TrainingStatus]int64, error)
}

type trainingItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTrainingItemRepo(db *gorm.DB, baseLog *logger.Logger) TrainingItemRepo {
	repoLog := baseLog.With("repo", "TrainingItemRepo")
	return &trainingItemRepo{db: db, log: repoLog}
}

func (r *trainingItemRepo) Create(dbc dbctx.Context, item *types.TrainingItem) (*types.TrainingItem, error) {
	if item == nil {
		return nil, fmt.Errorf("nil training item")
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = item.CreatedAt

	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(item)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: %s", ErrItemExists, item.ID)
	}
	return item, nil
}

func (r *trainingItemRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.TrainingItem, error) {
	var out types.TrainingItem
	err := dbc.DB(r.db).
		Where("id = ?", id).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *trainingItemRepo) ListByOwner(dbc dbctx.Context, ownerID uuid.UUID, statuses ...types.TrainingStatus) ([]*types.TrainingItem, error) {
	results := []*types.TrainingItem{}
	q := dbc.DB(r.db).Where("owner_id = ?", ownerID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if err := q.Order("created_at ASC").Order("id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// UpdateStatusByIDs moves the listed items to `to` in one statement. Rows
// not currently in one of the `from` statuses are left alone; the returned
// count is the number of rows changed.
func (r *trainingItemRepo) UpdateStatusByIDs(dbc dbctx.Context, ids []uuid.UUID, from []types.TrainingStatus, to types.TrainingStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q := dbc.DB(r.db).Model(&types.TrainingItem{}).Where("id IN ?", ids)
	if len(from) > 0 {
		q = q.Where("status IN ?", from)
	}
	res := q.Updates(map[string]interface{}{
		"status":     to,
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *trainingItemRepo) CountByOwnerAndStatus(dbc dbctx.Context, ownerID uuid.UUID) (map[types.TrainingStatus]int64, error) {
	var rows []struct {
		Status types.TrainingStatus
		N      int64
	}
	if err := dbc.DB(r.db).
		Model(&types.TrainingItem{}).
		Select("status, COUNT(*) AS n").
		Where("owner_id = ?", ownerID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := map[types.TrainingStatus]int64{
		types.TrainingStatusReady:    0,
		types.TrainingStatusExported: 0,
		types.TrainingStatusFailed:   0,
	}
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}
