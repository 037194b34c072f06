package app

import (
	"gorm.io/gorm"

	"github.com/lclrke/dawa-dashboard/internal/data/repos"
	"github.com/lclrke/dawa-dashboard/internal/platform/logger"
)

type Repos struct {
	TrainingItem  repos.TrainingItemRepo
	Artist        repos.ArtistRepo
	ArtistProfile repos.ArtistProfileRepo
	TrackSummary  repos.TrackSummaryRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		TrainingItem:  repos.NewTrainingItemRepo(db, log),
		Artist:        repos.NewArtistRepo(db, log),
		ArtistProfile: repos.NewArtistProfileRepo(db, log),
		TrackSummary:  repos.NewTrackSummaryRepo(db, log),
	}
}
