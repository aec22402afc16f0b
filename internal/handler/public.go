package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tucarrito/marketplace/internal/service"
)

// PublicHandler serves the unauthenticated catalog endpoints.
type PublicHandler struct {
	Listings *service.Listings
}

func NewPublicHandler(listings *service.Listings) *PublicHandler {
	return &PublicHandler{Listings: listings}
}

// Catalog returns the public catalog, filtered and sorted by query
// parameters: brand, model, min_year, max_year, min_price, max_price,
// transmission, fuel_type, sort.
func (h *PublicHandler) Catalog(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	f := service.SearchFilters{
		Brand:        c.QueryParam("brand"),
		Model:        c.QueryParam("model"),
		Transmission: c.QueryParam("transmission"),
		FuelType:     c.QueryParam("fuel_type"),
	}
	if n, ok := intQuery(c, "min_year"); ok {
		f.MinYear = n
	}
	if n, ok := intQuery(c, "max_year"); ok {
		f.MaxYear = n
	}
	if p, ok := floatQuery(c, "min_price"); ok {
		f.MinPrice = p
	}
	if p, ok := floatQuery(c, "max_price"); ok {
		f.MaxPrice = p
	}

	vs, err := h.Listings.Search(ctx, f)
	if err != nil {
		return respondErr(c, err)
	}
	if sortKey := c.QueryParam("sort"); sortKey != "" {
		vs = service.SortVehicles(vs, sortKey)
	}
	return c.JSON(http.StatusOK, vs)
}

// VehicleDetail returns one publicly visible listing.
func (h *PublicHandler) VehicleDetail(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Listings.VehicleByID(ctx, c.Param("id"))
	if err != nil {
		return respondErr(c, err)
	}
	if !v.PubliclyVisible() {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Vehículo no encontrado"})
	}
	return c.JSON(http.StatusOK, v)
}
