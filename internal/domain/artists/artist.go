package artists

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Artist struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	// Display name; its slug prefixes every object key for the artist.
	Name string `gorm:"column:name;not null" json:"name"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Artist) TableName() string { return "artist" }

// ArtistProfile holds the artist's style profile ("master schema").
type ArtistProfile struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ArtistID     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"artist_id"`
	MasterSchema datatypes.JSON `gorm:"column:master_schema;type:jsonb" json:"master_schema"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ArtistProfile) TableName() string { return "artist_profile" }

// TrackSummary is the structured analysis of one parsed project file.
type TrackSummary struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ArtistID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"artist_id"`
	ParseID     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"parse_id"`
	Summary     datatypes.JSON `gorm:"column:summary;type:jsonb" json:"summary"`
	AlsFilename string         `gorm:"column:als_filename" json:"als_filename"`
	ProjectName string         `gorm:"column:project_name" json:"project_name"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (TrackSummary) TableName() string { return "track_summary" }
