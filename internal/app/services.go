package app

import (
	"fmt"

	"github.com/lclrke/dawa-dashboard/internal/platform/logger"
	"github.com/lclrke/dawa-dashboard/internal/services"
)

type Services struct {
	Auth     services.AuthService
	Artists  services.ArtistService
	Items    services.TrainingItemService
	Captions services.CaptionService
	Writer   services.ArtifactWriter
	Exporter services.DatasetExporter
}

func wireServices(log *logger.Logger, cfg Config, repos Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	tpl, err := services.DefaultCaptionTemplate()
	if err != nil {
		return Services{}, fmt.Errorf("load caption template: %w", err)
	}

	artists := services.NewArtistService(log, repos.Artist, repos.ArtistProfile, repos.TrackSummary)
	items := services.NewTrainingItemService(log, repos.TrainingItem)

	return Services{
		Auth:    services.NewAuthService(log, cfg.JWTSecretKey, cfg.JWTIssuer),
		Artists: artists,
		Items:   items,
		Captions: services.NewCaptionService(log, clients.OpenaiClient, artists, tpl, services.CaptionConfig{
			Model:       cfg.CaptionModel,
			Temperature: cfg.CaptionTemperature,
			MaxTokens:   cfg.CaptionMaxTokens,
		}),
		Writer:   services.NewArtifactWriter(log, clients.ObjectStore, items, artists, tpl),
		Exporter: services.NewDatasetExporter(log, clients.ObjectStore, items, artists, clients.ExportLocker, cfg.ExportLockTTL),
	}, nil
}
