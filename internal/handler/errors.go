// Package handler contains the HTTP handlers. Handlers bind DTOs,
// call the service managers with a bounded context and translate
// sentinel errors into status codes with the user-facing Spanish
// messages.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tucarrito/marketplace/internal/service"
)

// respondErr maps a service error to its HTTP response. Unrecognized
// errors become an opaque 500.
func respondErr(c echo.Context, err error) error {
	var stErr *service.StateTransitionError
	if errors.As(err, &stErr) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Este vehículo ya está en estado: " + stErr.Current.Label()})
	}

	type mapping struct {
		sentinel error
		status   int
		message  string
	}
	for _, m := range []mapping{
		{service.ErrEmailExists, http.StatusConflict, "Ya existe un usuario con este correo electrónico"},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, "Correo o contraseña incorrectos"},
		{service.ErrPendingApproval, http.StatusForbidden, "Tu cuenta está pendiente de aprobación por un administrador. Serás notificado cuando sea aprobada."},
		{service.ErrAccountRejected, http.StatusForbidden, "Tu cuenta ha sido rechazada. Contacta al soporte para más información."},
		{service.ErrUserNotFound, http.StatusNotFound, "Usuario no encontrado"},
		{service.ErrVehicleNotFound, http.StatusNotFound, "Vehículo no encontrado"},
		{service.ErrTempVehicleNotFound, http.StatusNotFound, "Vehículo temporal no encontrado"},
		{service.ErrVehicleSold, http.StatusConflict, "El vehículo ya fue vendido"},
		{service.ErrNoImages, http.StatusBadRequest, "Debes subir al menos una imagen"},
		{service.ErrTooManyImages, http.StatusBadRequest, "Máximo 10 imágenes permitidas"},
		{service.ErrBadImage, http.StatusBadRequest, "Formato de imagen no válido o tamaño superior a 2MB"},
		{service.ErrInvalidPrice, http.StatusBadRequest, "El precio debe ser mayor a cero"},
		{service.ErrTransactionNotFound, http.StatusNotFound, "Transacción no encontrada"},
		{service.ErrVehicleNotForSale, http.StatusConflict, "Este vehículo no está disponible para la venta"},
		{service.ErrSelfPurchase, http.StatusConflict, "No puedes comprar tu propio vehículo"},
		{service.ErrAlreadyProcessed, http.StatusConflict, "Esta transacción ya fue procesada"},
		{service.ErrNotCancellable, http.StatusConflict, "Esta transacción no puede ser cancelada"},
		{service.ErrCardDeclined, http.StatusPaymentRequired, "Fondos insuficientes en la tarjeta"},
		{service.ErrInvalidPlate, http.StatusBadRequest, "Formato de placa inválido. Use formato ABC123 o ABC12D"},
		{service.ErrPlateNotFound, http.StatusNotFound, "No se encontraron resultados para esta placa. Verifique el número e intente nuevamente."},
		{service.ErrNoPlate, http.StatusBadRequest, "Este vehículo no tiene placa registrada"},
		{service.ErrEmptyMessage, http.StatusBadRequest, "El mensaje no puede estar vacío"},
		{service.ErrConversationNotFound, http.StatusNotFound, "Conversación no encontrada"},
	} {
		if errors.Is(err, m.sentinel) {
			return c.JSON(m.status, echo.Map{"error": m.message})
		}
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error interno del servidor"})
}
