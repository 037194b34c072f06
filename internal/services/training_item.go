package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/lclrke/dawa-dashboard/internal/data/repos"
	types "github.com/lclrke/dawa-dashboard/internal/domain"
	"github.com/lclrke/dawa-dashboard/internal/platform/dbctx"
	"github.com/lclrke/dawa-dashboard/internal/platform/logger"
)

// TrainingItemService owns the training item lifecycle:
// ready -> exported, ready -> failed, failed -> ready.
type TrainingItemService interface {
	Record(ctx context.Context, item *types.TrainingItem) (*types.TrainingItem, error)
	Get(ctx context.Context, id uuid.UUID) (*types.TrainingItem, error)
	ListForOwner(ctx context.Context, ownerID uuid.UUID, statuses ...types.TrainingStatus) ([]*types.TrainingItem, error)
	MarkExported(ctx context.Context, ids []uuid.UUID) (int64, error)
	MarkFailed(ctx context.Context, id uuid.UUID) (*types.TrainingItem, error)
	Requeue(ctx context.Context, id uuid.UUID) (*types.TrainingItem, error)
	Summary(ctx context.Context, ownerID uuid.UUID) (map[types.TrainingStatus]int64, error)
}

type trainingItemService struct {
	log   *logger.Logger
	items repos.TrainingItemRepo
}

func NewTrainingItemService(baseLog *logger.Logger, items repos.TrainingItemRepo) TrainingItemService {
	return &trainingItemService{
		log:   baseLog.With("service", "TrainingItemService"),
		items: items,
	}
}

// Record inserts a new item in the ready state.
func (s *trainingItemService) Record(ctx context.Context, item *types.TrainingItem) (*types.TrainingItem, error) {
	if item == nil {
		return nil, validationErr("record", "missing item")
	}
	if item.OwnerID == uuid.Nil {
		return nil, validationErr("record", "missing owner id")
	}
	if item.AudioPath == "" || (item.PromptPath == "" && item.PromptText == "") {
		return nil, validationErr("record", "item %s has no artifacts", item.ID)
	}
	item.Status = types.TrainingStatusReady
	out, err := s.items.Create(dbctx.Context{Ctx: ctx}, item)
	if err != nil {
		return nil, pipelineErr(ErrRecord, "record", err)
	}
	return out, nil
}

func (s *trainingItemService) Get(ctx context.Context, id uuid.UUID) (*types.TrainingItem, error) {
	item, err := s.items.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, pipelineErr(ErrRecord, "get item", err)
	}
	if item == nil {
		return nil, pipelineErr(ErrNotFound, "get item", fmt.Errorf("training item %s", id))
	}
	return item, nil
}

func (s *trainingItemService) ListForOwner(ctx context.Context, ownerID uuid.UUID, statuses ...types.TrainingStatus) ([]*types.TrainingItem, error) {
	if ownerID == uuid.Nil {
		return nil, validationErr("list items", "missing owner id")
	}
	for _, st := range statuses {
		if !st.Valid() {
			return nil, validationErr("list items", "unknown status %q", st)
		}
	}
	out, err := s.items.ListByOwner(dbctx.Context{Ctx: ctx}, ownerID, statuses...)
	if err != nil {
		return nil, pipelineErr(ErrRecord, "list items", err)
	}
	return out, nil
}

// MarkExported flips the given ready items to exported in one update.
// Items no longer ready are left untouched.
func (s *trainingItemService) MarkExported(ctx context.Context, ids []uuid.UUID) (int64, error) {
	n, err := s.items.UpdateStatusByIDs(dbctx.Context{Ctx: ctx}, ids,
		[]types.TrainingStatus{types.TrainingStatusReady}, types.TrainingStatusExported)
	if err != nil {
		return 0, pipelineErr(ErrRecord, "mark exported", err)
	}
	return n, nil
}

func (s *trainingItemService) MarkFailed(ctx context.Context, id uuid.UUID) (*types.TrainingItem, error) {
	return s.transition(ctx, "mark failed", id, types.TrainingStatusFailed)
}

// Requeue re-arms a failed item so the next export picks it up.
func (s *trainingItemService) Requeue(ctx context.Context, id uuid.UUID) (*types.TrainingItem, error) {
	return s.transition(ctx, "requeue", id, types.TrainingStatusReady)
}

func (s *trainingItemService) transition(ctx context.Context, op string, id uuid.UUID, to types.TrainingStatus) (*types.TrainingItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	from := item.Status
	if !from.CanTransition(to) {
		return nil, validationErr(op, "illegal transition %s -> %s for item %s", from, to, id)
	}
	n, err := s.items.UpdateStatusByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{id}, []types.TrainingStatus{from}, to)
	if err != nil {
		return nil, pipelineErr(ErrRecord, op, err)
	}
	if n == 0 {
		// lost a race with another transition
		return nil, validationErr(op, "item %s is no longer %s", id, from)
	}
	s.log.Info("Training item status changed", "item_id", id, "from", from, "to", to)
	return s.Get(ctx, id)
}

func (s *trainingItemService) Summary(ctx context.Context, ownerID uuid.UUID) (map[types.TrainingStatus]int64, error) {
	if ownerID == uuid.Nil {
		return nil, validationErr("summary", "missing owner id")
	}
	out, err := s.items.CountByOwnerAndStatus(dbctx.Context{Ctx: ctx}, ownerID)
	if err != nil {
		return nil, pipelineErr(ErrRecord, "summary", err)
	}
	return out, nil
}
