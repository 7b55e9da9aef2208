package api

import (
	"github.com/ctrlaltdad/TakeStock/internal/levers"
	xhttp "github.com/ctrlaltdad/TakeStock/pkg/http"

	"github.com/labstack/echo/v4"
)

// SimulationRequest carries per-lever slider values, positional against the
// sector's lever table. Values range over [-50, +50] like the sliders they
// mirror.
type SimulationRequest struct {
	Sector      string    `json:"sector"`
	Adjustments []float64 `json:"adjustments" validate:"required,min=1,max=10,dive,min=-50,max=50"`
}

// SimulationResponse is the weighted net impact.
type SimulationResponse struct {
	Sector      string         `json:"sector"`
	Levers      []levers.Lever `json:"levers"`
	TotalImpact float64        `json:"totalImpact"`
	Display     string         `json:"display"`
}

// LeversResponse is one sector's lever table.
type LeversResponse struct {
	Sector   string         `json:"sector"`
	Fallback bool           `json:"fallback"`
	Levers   []levers.Lever `json:"levers"`
}

// RunSimulation computes the weighted what-if impact for a sector.
func (h *Handler) RunSimulation(c echo.Context) error {
	req := new(SimulationRequest)
	if payload := xhttp.ReadAndValidateRequest(c, req); payload != nil {
		return xhttp.BadRequestResponse(c, payload)
	}

	total, lv, err := levers.Simulate(req.Sector, req.Adjustments)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()).WithError(err))
	}
	return xhttp.SuccessResponse(c, SimulationResponse{
		Sector:      req.Sector,
		Levers:      lv,
		TotalImpact: total,
		Display:     levers.FormatImpact(total),
	})
}

// GetLevers returns the lever table for a sector, falling back to the
// default table when the sector has no curated entry.
func (h *Handler) GetLevers(c echo.Context) error {
	sector := c.Param("sector")
	lv, matched := levers.Lookup(sector)
	return xhttp.SuccessResponse(c, LeversResponse{
		Sector:   matched,
		Fallback: matched == levers.DefaultSector && sector != levers.DefaultSector,
		Levers:   lv,
	})
}
