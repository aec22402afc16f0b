package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tucarrito/marketplace/internal/middleware"
	"github.com/tucarrito/marketplace/internal/model"
	"github.com/tucarrito/marketplace/internal/service"
)

// VehicleHandler bundles the authenticated listing endpoints.
type VehicleHandler struct {
	Listings *service.Listings
	Identity *service.Identity
}

func NewVehicleHandler(listings *service.Listings, identity *service.Identity) *VehicleHandler {
	return &VehicleHandler{Listings: listings, Identity: identity}
}

// ----- DTOs -----

type createVehicleReq struct {
	Brand           string   `json:"brand"`
	Model           string   `json:"model"`
	Year            int      `json:"year"`
	Price           float64  `json:"price"`
	Description     string   `json:"description"`
	Mileage         int      `json:"mileage"`
	Transmission    string   `json:"transmission"`
	FuelType        string   `json:"fuelType"`
	Images          []string `json:"images"`
	LicensePlate    string   `json:"licensePlate"`
	OwnershipCard   string   `json:"ownershipCard"`
	SOAT            string   `json:"soat"`
	TechnicalReview string   `json:"technicalReview"`
}

type updateVehicleReq struct {
	Brand           *string   `json:"brand"`
	Model           *string   `json:"model"`
	Year            *int      `json:"year"`
	Price           *float64  `json:"price"`
	Description     *string   `json:"description"`
	Mileage         *int      `json:"mileage"`
	Transmission    *string   `json:"transmission"`
	FuelType        *string   `json:"fuelType"`
	Images          *[]string `json:"images"`
	LicensePlate    *string   `json:"licensePlate"`
	OwnershipCard   *string   `json:"ownershipCard"`
	SOAT            *string   `json:"soat"`
	TechnicalReview *string   `json:"technicalReview"`
}

// ownedVehicle loads a vehicle and verifies the caller owns it.
// Admins may act on any listing.
func (h *VehicleHandler) ownedVehicle(ctx context.Context, c echo.Context, id string) (model.Vehicle, bool, error) {
	v, err := h.Listings.VehicleByID(ctx, id)
	if err != nil {
		return model.Vehicle{}, false, err
	}
	role, _ := c.Get("role").(string)
	if v.UserID != middleware.UserID(c) && role != model.RoleAdmin {
		return model.Vehicle{}, false, nil
	}
	return v, true, nil
}

// Create stores a new draft listing owned by the caller.
func (h *VehicleHandler) Create(c echo.Context) error {
	var req createVehicleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	owner, err := h.Identity.UserByID(ctx, middleware.UserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	v, err := h.Listings.CreateVehicle(ctx, service.CreateVehicleInput{
		UserID:          owner.ID,
		UserEmail:       owner.Email,
		UserName:        owner.FullName,
		UserPhone:       owner.Phone,
		Brand:           req.Brand,
		Model:           req.Model,
		Year:            req.Year,
		Price:           req.Price,
		Description:     req.Description,
		Mileage:         req.Mileage,
		Transmission:    req.Transmission,
		FuelType:        req.FuelType,
		Images:          req.Images,
		LicensePlate:    req.LicensePlate,
		OwnershipCard:   req.OwnershipCard,
		SOAT:            req.SOAT,
		TechnicalReview: req.TechnicalReview,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

// Update edits a listing the caller owns.
func (h *VehicleHandler) Update(c echo.Context) error {
	var req updateVehicleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	_, owned, err := h.ownedVehicle(ctx, c, c.Param("id"))
	if err != nil {
		return respondErr(c, err)
	}
	if !owned {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	v, err := h.Listings.UpdateVehicle(ctx, c.Param("id"), service.VehicleUpdate{
		Brand:           req.Brand,
		Model:           req.Model,
		Year:            req.Year,
		Price:           req.Price,
		Description:     req.Description,
		Mileage:         req.Mileage,
		Transmission:    req.Transmission,
		FuelType:        req.FuelType,
		Images:          req.Images,
		LicensePlate:    req.LicensePlate,
		OwnershipCard:   req.OwnershipCard,
		SOAT:            req.SOAT,
		TechnicalReview: req.TechnicalReview,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Delete removes a listing the caller owns.
func (h *VehicleHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	_, owned, err := h.ownedVehicle(ctx, c, c.Param("id"))
	if err != nil {
		return respondErr(c, err)
	}
	if !owned {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if err := h.Listings.DeleteVehicle(ctx, c.Param("id")); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Vehículo eliminado exitosamente"})
}

// RegisterForSale submits a draft listing for validation.
func (h *VehicleHandler) RegisterForSale(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	_, owned, err := h.ownedVehicle(ctx, c, c.Param("id"))
	if err != nil {
		return respondErr(c, err)
	}
	if !owned {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	v, err := h.Listings.RegisterForSale(ctx, c.Param("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Mine lists the caller's listings in every state.
func (h *VehicleHandler) Mine(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	vs, err := h.Listings.UserVehicles(ctx, middleware.UserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, vs)
}

// Get returns one listing. Non-owners only see publicly visible
// listings.
func (h *VehicleHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Listings.VehicleByID(ctx, c.Param("id"))
	if err != nil {
		return respondErr(c, err)
	}
	role, _ := c.Get("role").(string)
	if v.UserID != middleware.UserID(c) && role != model.RoleAdmin && !v.PubliclyVisible() {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Vehículo no encontrado"})
	}
	return c.JSON(http.StatusOK, v)
}

// intQuery parses an integer query parameter; ok is false when the
// parameter is absent or malformed.
func intQuery(c echo.Context, name string) (int, bool) {
	s := c.QueryParam(name)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// floatQuery parses a float query parameter.
func floatQuery(c echo.Context, name string) (float64, bool) {
	s := c.QueryParam(name)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
