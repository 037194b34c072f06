package training

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusReady    Status = "ready"
	StatusExported Status = "exported"
	StatusFailed   Status = "failed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusReady, StatusExported, StatusFailed:
		return true
	}
	return false
}

// CanTransition reports whether an item may move from s to next.
// exported is terminal; failed items can only be re-armed to ready.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusReady:
		return next == StatusExported || next == StatusFailed
	case StatusFailed:
		return next == StatusReady
	default:
		return false
	}
}

// TrainingItem is one audio/caption pair stored in the object store and
// tracked for dataset export.
type TrainingItem struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	// Artist that owns the item.
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index:idx_training_item_owner_status,priority:1" json:"owner_id"`

	// Source track parse reference, if any.
	SourceTrackRef *uuid.UUID `gorm:"type:uuid;index" json:"source_track_ref,omitempty"`
	TrackSummaryID *uuid.UUID `gorm:"type:uuid" json:"track_summary_id,omitempty"`
	SourceFilename string     `gorm:"column:source_filename" json:"source_filename,omitempty"`
	ProjectName    string     `gorm:"column:project_name" json:"project_name,omitempty"`

	AudioPath  string `gorm:"column:audio_path;not null" json:"audio_path"`
	PromptPath string `gorm:"column:prompt_path;not null" json:"prompt_path"`
	PromptText string `gorm:"column:prompt_text;type:text" json:"prompt_text"`

	Status Status `gorm:"column:status;type:text;not null;index:idx_training_item_owner_status,priority:2" json:"status"`

	ModelName     string     `gorm:"column:model_name" json:"model_name"`
	PromptVersion string     `gorm:"column:prompt_version" json:"prompt_version"`
	GeneratedAt   *time.Time `gorm:"column:generated_at" json:"generated_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (TrainingItem) TableName() string { return "training_item" }
