package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tucarrito/marketplace/internal/service"
)

// BackgroundHandler serves the simulated vehicle history lookups.
type BackgroundHandler struct {
	Checker *service.BackgroundChecker
}

func NewBackgroundHandler(checker *service.BackgroundChecker) *BackgroundHandler {
	return &BackgroundHandler{Checker: checker}
}

// ByPlate looks up the background report for a plate.
func (h *BackgroundHandler) ByPlate(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	report, err := h.Checker.Report(ctx, c.Param("plate"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// ByVehicle resolves a stored vehicle's plate and looks it up.
func (h *BackgroundHandler) ByVehicle(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	report, err := h.Checker.ReportByVehicle(ctx, c.Param("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, report)
}
