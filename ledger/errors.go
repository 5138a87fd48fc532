/*
errors.go - Centralized error types for the reconciliation core

PURPOSE:
  All business-rule failures in one place. Callers receive these as typed
  return values, never panics: every failure here is recoverable by the
  caller after correcting input. Storage failures are NOT defined here; they
  propagate from the store as a distinct error channel so the UI can render
  a generic "try again" instead of a form error.

ERROR CATEGORIES:
  1. Validation errors - business rule violations (insufficient stock, locked)
  2. Lookup errors     - referenced records that do not exist
  3. Range errors      - malformed report/bill-generation requests

USAGE:
  Handlers classify with errors.Is / errors.As:

    var shortErr *ledger.InsufficientStockError
    if errors.As(err, &shortErr) {
        // render per-item shortfalls
    }
*/
package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInsufficientStock is returned when a sale would consume more stock
	// than is available and negative stock is not allowed.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrLocked is returned on edit/delete of a posted transaction. Posting
	// is a hard business lock; the reconciliation machinery never bypasses it.
	ErrLocked = errors.New("transaction is posted and locked")

	// ErrInvalidRange is returned when a date range has from after to.
	// Rejected before any computation.
	ErrInvalidRange = errors.New("invalid date range: from is after to")

	// ErrItemNotFound is returned when a referenced item doesn't exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrAccountNotFound is returned when a referenced account doesn't exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrTransactionNotFound is returned when a referenced transaction
	// doesn't exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrInvalidEntry is returned when a ledger entry carries both a debit
	// and a credit.
	ErrInvalidEntry = errors.New("ledger entry has both debit and credit")

	// ErrInvalidInput is returned for malformed transaction input (unknown
	// kind, empty line items, wrong party kind).
	ErrInvalidInput = errors.New("invalid input")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// Shortage describes one item's stock shortfall.
type Shortage struct {
	ItemID    ItemID
	Required  decimal.Decimal
	Available decimal.Decimal
}

// InsufficientStockError reports every line item that failed the availability
// check. Nothing is committed when this is returned.
type InsufficientStockError struct {
	Shortages []Shortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, len(e.Shortages))
	for i, s := range e.Shortages {
		parts[i] = fmt.Sprintf("%s: required %s, available %s", s.ItemID, s.Required, s.Available)
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// LockedError identifies which posted transaction rejected the operation.
type LockedError struct {
	Ref TxRef
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("transaction %s is posted and locked", e.Ref)
}

func (e *LockedError) Unwrap() error { return ErrLocked }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation returns true if the error is a business-rule failure the
// caller can correct, as opposed to a storage failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrLocked) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidEntry) ||
		errors.Is(err, ErrInvalidInput)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrTransactionNotFound)
}
