package api

import (
	"github.com/ctrlaltdad/TakeStock/internal/domain/provider"
	xhttp "github.com/ctrlaltdad/TakeStock/pkg/http"
	"github.com/ctrlaltdad/TakeStock/pkg/logger"

	"github.com/labstack/echo/v4"
)

// KeysRequest sets any subset of the three provider keys. Empty and masked
// values are ignored, so echoing the settings form back is harmless.
type KeysRequest struct {
	Finnhub      string `json:"finnhub"`
	AlphaVantage string `json:"alphavantage"`
	Polygon      string `json:"polygon"`
}

// KeysSavedResponse reports how many keys a write actually stored.
type KeysSavedResponse struct {
	Saved int `json:"saved"`
}

// GetKeys returns the masked per-provider key status.
func (h *Handler) GetKeys(c echo.Context) error {
	status := h.keys.Status(provider.IDFinnhub, provider.IDAlphaVantage, provider.IDPolygon)
	return xhttp.SuccessResponse(c, status)
}

// PutKeys stores the submitted keys.
func (h *Handler) PutKeys(c echo.Context) error {
	req := new(KeysRequest)
	if payload := xhttp.ReadAndValidateRequest(c, req); payload != nil {
		return xhttp.BadRequestResponse(c, payload)
	}

	saved, err := h.keys.Set(map[string]string{
		provider.IDFinnhub:      req.Finnhub,
		provider.IDAlphaVantage: req.AlphaVantage,
		provider.IDPolygon:      req.Polygon,
	})
	if err != nil {
		h.logger.Error("keystore write failed", logger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not persist keys").WithError(err))
	}
	return xhttp.SuccessResponse(c, KeysSavedResponse{Saved: saved})
}

// DeleteKeys clears all stored keys.
func (h *Handler) DeleteKeys(c echo.Context) error {
	if err := h.keys.Clear(); err != nil {
		h.logger.Error("keystore clear failed", logger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not clear keys").WithError(err))
	}
	return xhttp.NoContentResponse(c)
}
