package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tucarrito/marketplace/internal/middleware"
	"github.com/tucarrito/marketplace/internal/service"
)

// TemporaryHandler serves the anonymous listing flow. Creation,
// editing and listing are session-scoped and unauthenticated;
// conversion requires a logged-in account.
type TemporaryHandler struct {
	Anon     *service.Anonymous
	Identity *service.Identity
}

func NewTemporaryHandler(anon *service.Anonymous, identity *service.Identity) *TemporaryHandler {
	return &TemporaryHandler{Anon: anon, Identity: identity}
}

type tempVehicleReq struct {
	ContactName  string   `json:"contactName"`
	ContactEmail string   `json:"contactEmail"`
	ContactPhone string   `json:"contactPhone"`
	Brand        string   `json:"brand"`
	Model        string   `json:"model"`
	Year         int      `json:"year"`
	Price        float64  `json:"price"`
	Description  string   `json:"description"`
	Mileage      int      `json:"mileage"`
	Transmission string   `json:"transmission"`
	FuelType     string   `json:"fuelType"`
	Images       []string `json:"images"`
}

func (r tempVehicleReq) toInput() service.TemporaryVehicleInput {
	return service.TemporaryVehicleInput{
		ContactName:  r.ContactName,
		ContactEmail: r.ContactEmail,
		ContactPhone: r.ContactPhone,
		Brand:        r.Brand,
		Model:        r.Model,
		Year:         r.Year,
		Price:        r.Price,
		Description:  r.Description,
		Mileage:      r.Mileage,
		Transmission: r.Transmission,
		FuelType:     r.FuelType,
		Images:       r.Images,
	}
}

// sessionID resolves the caller's anonymous session. A client that
// sends X-Session-Id keeps its own scope; without the header the
// stored device session is used, created on first call.
func (h *TemporaryHandler) sessionID(ctx context.Context, c echo.Context) (string, error) {
	if id := c.Request().Header.Get("X-Session-Id"); id != "" {
		return id, nil
	}
	return h.Anon.SessionID(ctx)
}

// Session returns the anonymous session id, creating one on first
// call.
func (h *TemporaryHandler) Session(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.sessionID(ctx, c)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"sessionId": id})
}

// Create stores a new anonymous listing under the caller's session.
func (h *TemporaryHandler) Create(c echo.Context) error {
	var req tempVehicleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sessionID, err := h.sessionID(ctx, c)
	if err != nil {
		return respondErr(c, err)
	}
	v, err := h.Anon.CreateTemporary(ctx, sessionID, req.toInput())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

// Update edits an anonymous listing.
func (h *TemporaryHandler) Update(c echo.Context) error {
	var req tempVehicleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sessionID, err := h.sessionID(ctx, c)
	if err != nil {
		return respondErr(c, err)
	}
	v, err := h.Anon.UpdateTemporary(ctx, c.Param("id"), sessionID, req.toInput())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Delete removes an anonymous listing.
func (h *TemporaryHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sessionID, err := h.sessionID(ctx, c)
	if err != nil {
		return respondErr(c, err)
	}
	if err := h.Anon.DeleteTemporary(ctx, c.Param("id"), sessionID); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Vehículo temporal eliminado exitosamente"})
}

// Mine lists the still-temporary records of the caller's session.
func (h *TemporaryHandler) Mine(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sessionID, err := h.sessionID(ctx, c)
	if err != nil {
		return respondErr(c, err)
	}
	vs, err := h.Anon.SessionVehicles(ctx, sessionID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, vs)
}

// Convert turns an anonymous listing into a draft owned by the
// authenticated caller.
func (h *TemporaryHandler) Convert(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	owner, err := h.Identity.UserByID(ctx, middleware.UserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	v, err := h.Anon.ConvertToPermanent(ctx, c.Param("id"), owner)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}
