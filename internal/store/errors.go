package store

import "errors"

var (
	// ErrBusy is returned by every mutating entry point while another mutation
	// is outstanding. Callers surface it and retry; nothing is queued.
	ErrBusy = errors.New("another operation is in progress")

	ErrEntryNotFound     = errors.New("entry not found")
	ErrExpenseNotFound   = errors.New("expense not found")
	ErrBranchNotFound    = errors.New("branch not found")
	ErrStockItemNotFound = errors.New("stock item not found")

	ErrInvalidAmount          = errors.New("amount must be greater than zero")
	ErrInsufficientBalance    = errors.New("insufficient branch balance")
	ErrSettlementExceeds      = errors.New("collected amount exceeds the remaining balance")
	ErrEmptyStock             = errors.New("no available stock for this category")
	ErrInvalidStockTransition = errors.New("stock status transition not allowed")
	ErrEntryNotActive         = errors.New("entry is not active")
	ErrThirdPartySettled      = errors.New("third-party cost already settled")
)

// RemoteError carries a business failure reported by the backend. The message is
// surfaced to the user verbatim after the optimistic change is rolled back.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return "the server rejected the operation"
	}
	return e.Message
}
