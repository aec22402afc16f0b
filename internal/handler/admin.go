package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tucarrito/marketplace/internal/middleware"
	"github.com/tucarrito/marketplace/internal/service"
)

// AdminHandler bundles the moderation endpoints: user approval and
// listing validation. All routes require the admin role.
type AdminHandler struct {
	Identity *service.Identity
	Listings *service.Listings
	Anon     *service.Anonymous

	// TempMaxAgeDays is the purge cutoff when the clean request does
	// not name one.
	TempMaxAgeDays int
}

func NewAdminHandler(identity *service.Identity, listings *service.Listings, anon *service.Anonymous, tempMaxAgeDays int) *AdminHandler {
	return &AdminHandler{Identity: identity, Listings: listings, Anon: anon, TempMaxAgeDays: tempMaxAgeDays}
}

// PendingUsers lists accounts awaiting approval.
func (h *AdminHandler) PendingUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Identity.PendingUsers(ctx)
	if err != nil {
		return respondErr(c, err)
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, toUserPart(u))
	}
	return c.JSON(http.StatusOK, out)
}

// AllUsers lists every account.
func (h *AdminHandler) AllUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Identity.AllUsers(ctx)
	if err != nil {
		return respondErr(c, err)
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, toUserPart(u))
	}
	return c.JSON(http.StatusOK, out)
}

// ApproveUser approves a pending account.
func (h *AdminHandler) ApproveUser(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Identity.ApproveUser(ctx, c.Param("id"), middleware.UserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}

// RejectUser rejects an account; the user can no longer log in.
func (h *AdminHandler) RejectUser(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Identity.RejectUser(ctx, c.Param("id"), middleware.UserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}

// PendingVehicles lists listings awaiting validation.
func (h *AdminHandler) PendingVehicles(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	vs, err := h.Listings.PendingVehicles(ctx)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, vs)
}

// ApproveVehicle publishes a listing under review.
func (h *AdminHandler) ApproveVehicle(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Listings.AdminApprove(ctx, c.Param("id"), middleware.UserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

type rejectVehicleReq struct {
	Reason string `json:"reason"`
}

// RejectVehicle declines a listing under review with a reason.
func (h *AdminHandler) RejectVehicle(c echo.Context) error {
	var req rejectVehicleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Reason == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reason required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Listings.AdminReject(ctx, c.Param("id"), middleware.UserID(c), req.Reason)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// CleanTemporary purges expired anonymous listings.
func (h *AdminHandler) CleanTemporary(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	days, _ := intQuery(c, "days")
	if days <= 0 {
		days = h.TempMaxAgeDays
	}
	removed, err := h.Anon.CleanExpired(ctx, days)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"removed": removed})
}
