// Package api exposes the REST surface: analysis, simulation, lever lookup,
// and credential settings. Handlers bind, validate, and render only; all
// domain logic lives in the usecase and levers packages.
package api

import (
	"net/http"

	"github.com/ctrlaltdad/TakeStock/internal/service/keystore"
	"github.com/ctrlaltdad/TakeStock/internal/usecase"
	"github.com/ctrlaltdad/TakeStock/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Handler holds the API dependencies.
type Handler struct {
	analyzer *usecase.Analyzer
	keys     *keystore.Store
	logger   *logger.Logger
}

// New creates the API handler.
func New(analyzer *usecase.Analyzer, keys *keystore.Store, l *logger.Logger) *Handler {
	return &Handler{analyzer: analyzer, keys: keys, logger: l}
}

// RegisterRoutes mounts the API routes.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/stocks/:symbol", h.GetStock)
	g.POST("/simulation", h.RunSimulation)
	g.GET("/levers/:sector", h.GetLevers)

	s := g.Group("/settings")
	s.GET("/keys", h.GetKeys)
	s.PUT("/keys", h.PutKeys)
	s.DELETE("/keys", h.DeleteKeys)
}

// Health reports liveness.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
