package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lclrke/dawa-dashboard/internal/http/response"
	"github.com/lclrke/dawa-dashboard/internal/platform/apierr"
	"github.com/lclrke/dawa-dashboard/internal/services"
)

// toAPIError maps the service error taxonomy onto HTTP statuses.
func toAPIError(err error, fallbackCode string) *apierr.Error {
	if ae, ok := apierr.As(err); ok {
		return ae
	}
	switch {
	case errors.Is(err, services.ErrValidation):
		return apierr.New(http.StatusBadRequest, "invalid_request", err)
	case errors.Is(err, services.ErrForbidden):
		return apierr.New(http.StatusForbidden, "forbidden", err)
	case errors.Is(err, services.ErrNoExportableItems):
		return apierr.New(http.StatusNotFound, "no_exportable_items", err)
	case errors.Is(err, services.ErrNoReadyItems):
		return apierr.New(http.StatusNotFound, "no_ready_items", err)
	case errors.Is(err, services.ErrNotFound):
		return apierr.New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, services.ErrExportInProgress):
		return apierr.New(http.StatusConflict, "export_in_progress", err)
	case errors.Is(err, services.ErrUpstreamGeneration):
		return apierr.New(http.StatusBadGateway, "caption_generation_failed", err)
	}
	return apierr.New(http.StatusInternalServerError, fallbackCode, err)
}

func respondServiceError(c *gin.Context, err error, fallbackCode string) {
	ae := toAPIError(err, fallbackCode)
	response.RespondError(c, ae.Status, ae.Code, ae.Err)
}
