package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tucarrito/marketplace/internal/middleware"
	"github.com/tucarrito/marketplace/internal/service"
)

// PaymentHandler serves the commission payment flow. The gateway is
// simulated, so Process uses a longer timeout than the other
// endpoints to cover the configured latency.
type PaymentHandler struct {
	Payments *service.Payments
}

func NewPaymentHandler(payments *service.Payments) *PaymentHandler {
	return &PaymentHandler{Payments: payments}
}

type createTxReq struct {
	VehicleID string `json:"vehicleId"`
}

type processTxReq struct {
	Method     string `json:"method"`
	CardNumber string `json:"cardNumber"`
	CardHolder string `json:"cardHolder"`
}

// Create opens a pending commission payment for the caller.
func (h *PaymentHandler) Create(c echo.Context) error {
	var req createTxReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.VehicleID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "vehicleId required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tx, err := h.Payments.CreateTransaction(ctx, req.VehicleID, middleware.UserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, tx)
}

// Process charges a pending transaction. A decline still returns the
// transaction body so the client can show the gateway message.
func (h *PaymentHandler) Process(c echo.Context) error {
	var req processTxReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	tx, err := h.Payments.Process(ctx, c.Param("id"), service.PaymentDetails{
		Method:     req.Method,
		CardNumber: req.CardNumber,
		CardHolder: req.CardHolder,
	})
	if errors.Is(err, service.ErrCardDeclined) {
		return c.JSON(http.StatusPaymentRequired, echo.Map{
			"error":       "Fondos insuficientes en la tarjeta",
			"transaction": tx,
		})
	}
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, tx)
}

// Cancel abandons a pending transaction.
func (h *PaymentHandler) Cancel(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tx, err := h.Payments.Cancel(ctx, c.Param("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, tx)
}

// Get returns one transaction the caller participates in.
func (h *PaymentHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tx, err := h.Payments.Transaction(ctx, c.Param("id"))
	if err != nil {
		return respondErr(c, err)
	}
	uid := middleware.UserID(c)
	if tx.BuyerID != uid && tx.SellerID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, tx)
}

// Mine lists the caller's transactions as buyer or seller.
func (h *PaymentHandler) Mine(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	txs, err := h.Payments.UserTransactions(ctx, middleware.UserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, txs)
}
