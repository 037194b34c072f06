package domain

import (
	"github.com/lclrke/dawa-dashboard/internal/domain/artists"
	"github.com/lclrke/dawa-dashboard/internal/domain/training"
)

type TrainingItem = training.TrainingItem
type TrainingStatus = training.Status

const (
	TrainingStatusReady    = training.StatusReady
	TrainingStatusExported = training.StatusExported
	TrainingStatusFailed   = training.StatusFailed
)

type Artist = artists.Artist
type ArtistProfile = artists.ArtistProfile
type TrackSummary = artists.TrackSummary
