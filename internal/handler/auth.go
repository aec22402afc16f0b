package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tucarrito/marketplace/internal/config"
	"github.com/tucarrito/marketplace/internal/middleware"
	"github.com/tucarrito/marketplace/internal/model"
	"github.com/tucarrito/marketplace/internal/service"
	"github.com/tucarrito/marketplace/internal/utils"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Identity *service.Identity
}

func NewAuthHandler(cfg config.Config, identity *service.Identity) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Identity: identity}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	IDNumber string `json:"idNumber"`
	UserType string `json:"userType"` // buyer | seller | both
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPart struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	FullName         string `json:"fullName"`
	Phone            string `json:"phone"`
	UserType         string `json:"userType"`
	Role             string `json:"role"`
	ValidationStatus string `json:"validationStatus"`
	IsApproved       bool   `json:"isApproved"`
}
type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type loginResp struct {
	User    userPart  `json:"user"`
	Session tokenPart `json:"session"`
}

func toUserPart(u model.User) userPart {
	return userPart{
		ID:               u.ID,
		Email:            u.Email,
		FullName:         u.FullName,
		Phone:            u.Phone,
		UserType:         u.UserType,
		Role:             u.Role,
		ValidationStatus: u.ValidationStatus,
		IsApproved:       u.IsApproved,
	}
}

// Register creates a pending account. No session is issued; the user
// must wait for admin approval before logging in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Identity.Register(ctx, service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
		IDNumber: req.IDNumber,
		UserType: req.UserType,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"user":    toUserPart(u),
		"message": "Registro exitoso. Tu cuenta está en proceso de validación.",
	})
}

// Login verifies credentials and the approval gate, then issues a
// session token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Identity.Login(ctx, req.Email, req.Password)
	if err != nil {
		return respondErr(c, err)
	}
	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error interno del servidor"})
	}
	return c.JSON(http.StatusOK, loginResp{
		User:    toUserPart(u),
		Session: tokenPart{Token: tok.Token, Expires: tok.Exp},
	})
}

// Logout clears the current-user slot. Idempotent.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Identity.Logout(ctx); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Sesión cerrada"})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Identity.UserByID(ctx, middleware.UserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}
