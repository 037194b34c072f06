package app

import (
	"github.com/gin-gonic/gin"

	"github.com/lclrke/dawa-dashboard/internal/data/db"
	"github.com/lclrke/dawa-dashboard/internal/http"
	httpH "github.com/lclrke/dawa-dashboard/internal/http/handlers"
	httpMW "github.com/lclrke/dawa-dashboard/internal/http/middleware"
	"github.com/lclrke/dawa-dashboard/internal/observability"
	"github.com/lclrke/dawa-dashboard/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Training *httpH.TrainingHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services, pg *db.PostgresService, clients Clients) Handlers {
	log.Info("Wiring handlers...")
	deps := map[string]httpH.Pinger{"postgres": pg}
	if clients.RedisLocker != nil {
		deps["redis"] = clients.RedisLocker
	}
	return Handlers{
		Health: httpH.NewHealthHandler(deps),
		Training: httpH.NewTrainingHandler(log,
			services.Artists,
			services.Captions,
			services.Writer,
			services.Items,
			services.Exporter,
			cfg.MaxAudioBytes,
		),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:             log,
		ServiceName:     cfg.ServiceName,
		AllowedOrigins:  cfg.AllowedOrigins,
		Metrics:         observability.Current(),
		AuthMiddleware:  middleware.Auth,
		TrainingHandler: handlers.Training,
		HealthHandler:   handlers.Health,
	})
}
