package handler

import (
	"errors"
	"net/http"

	"backoffice/internal/service"
	"backoffice/internal/store"
	"backoffice/internal/validation"
)

// statusFor maps domain errors onto HTTP status codes so every handler
// reports failures the same way.
func statusFor(err error) int {
	var remote *store.RemoteError
	switch {
	case errors.Is(err, store.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, store.ErrEntryNotFound),
		errors.Is(err, store.ErrExpenseNotFound),
		errors.Is(err, store.ErrBranchNotFound),
		errors.Is(err, store.ErrStockItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrInvalidAmount),
		errors.Is(err, store.ErrInsufficientBalance),
		errors.Is(err, store.ErrSettlementExceeds),
		errors.Is(err, store.ErrEmptyStock),
		errors.Is(err, store.ErrInvalidStockTransition),
		errors.Is(err, store.ErrEntryNotActive),
		errors.Is(err, store.ErrThirdPartySettled),
		errors.Is(err, validation.ErrNationalIDLength),
		errors.Is(err, validation.ErrServiceTypeRequired),
		errors.Is(err, validation.ErrPhoneFormat),
		errors.Is(err, validation.ErrPaymentMethodRequired),
		errors.Is(err, validation.ErrElectronicAmount),
		errors.Is(err, validation.ErrSpeedTierRequired),
		errors.Is(err, validation.ErrBarcodeRequired),
		errors.Is(err, validation.ErrBarcodeTaken):
		return http.StatusBadRequest
	case errors.As(err, &remote):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
