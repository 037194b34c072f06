package repos

import (
	"gorm.io/gorm"

	"github.com/lclrke/dawa-dashboard/internal/data/repos/artists"
	"github.com/lclrke/dawa-dashboard/internal/data/repos/training"
	"github.com/lclrke/dawa-dashboard/internal/platform/logger"
)

type TrainingItemRepo = training.TrainingItemRepo

type ArtistRepo = artists.ArtistRepo
type ArtistProfileRepo = artists.ArtistProfileRepo
type TrackSummaryRepo = artists.TrackSummaryRepo

var ErrItemExists = training.ErrItemExists

func NewTrainingItemRepo(db *gorm.DB, log *logger.Logger) TrainingItemRepo {
	return training.NewTrainingItemRepo(db, log)
}

func NewArtistRepo(db *gorm.DB, log *logger.Logger) ArtistRepo {
	return artists.NewArtistRepo(db, log)
}

func NewArtistProfileRepo(db *gorm.DB, log *logger.Logger) ArtistProfileRepo {
	return artists.NewArtistProfileRepo(db, log)
}

func NewTrackSummaryRepo(db *gorm.DB, log *logger.Logger) TrackSummaryRepo {
	return artists.NewTrackSummaryRepo(db, log)
}
