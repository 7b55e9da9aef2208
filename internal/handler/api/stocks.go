package api

import (
	"regexp"
	"strings"

	"github.com/ctrlaltdad/TakeStock/internal/domain/provider"
	xhttp "github.com/ctrlaltdad/TakeStock/pkg/http"
	"github.com/ctrlaltdad/TakeStock/pkg/logger"

	"github.com/labstack/echo/v4"
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9.\-]{1,10}$`)

// GetStock runs a full analysis for one symbol and returns the unified
// record.
func (h *Handler) GetStock(c echo.Context) error {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if !symbolPattern.MatchString(symbol) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("invalid stock symbol"))
	}

	rec, err := h.analyzer.Analyze(c.Request().Context(), symbol)
	if err != nil {
		h.logger.Warn("analysis failed", logger.String("symbol", symbol), logger.Error(err))
		return xhttp.AppErrorResponse(c, mapAnalyzeErr(err))
	}
	return xhttp.SuccessResponse(c, rec)
}

func mapAnalyzeErr(err error) error {
	switch provider.KindOf(err) {
	case provider.KindNoCredentials:
		return xhttp.PreconditionError("ERR_NO_CREDENTIALS", err.Error()).WithError(err)
	case provider.KindInsufficientData:
		return xhttp.UpstreamError("ERR_INSUFFICIENT_DATA", err.Error()).WithError(err)
	default:
		return xhttp.InternalError("analysis failed").WithError(err)
	}
}
