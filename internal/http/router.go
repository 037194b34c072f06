package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/lclrke/dawa-dashboard/internal/http/handlers"
	httpMW "github.com/lclrke/dawa-dashboard/internal/http/middleware"
	"github.com/lclrke/dawa-dashboard/internal/observability"
	"github.com/lclrke/dawa-dashboard/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string
	Metrics        *observability.Metrics

	AuthMiddleware  *httpMW.AuthMiddleware
	TrainingHandler *httpH.TrainingHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}

	// Training dataset
	if h := cfg.TrainingHandler; h != nil {
		train := api.Group("/train")
		train.POST("/caption", h.GenerateCaption)
		train.POST("/items", h.SaveItem)
		train.GET("/items", h.ListItems)
		train.POST("/items/:id/fail", h.FailItem)
		train.POST("/items/:id/requeue", h.RequeueItem)
		train.POST("/export", h.Export)
		train.GET("/exports", h.ListExports)
	}

	return r
}
