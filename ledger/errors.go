/*
errors.go - Error types for the ledger

ERROR CATEGORIES:
  1. Reference errors - a sale points at a product or staff id that is gone
  2. Stock errors     - a sale asks for more units than are on hand
  3. Input errors     - negative price/stock, non-positive quantity
  4. Persistence      - the KV adapter failed; memory is still authoritative

USAGE:
  if errors.Is(err, ledger.ErrInsufficientStock) {
      var se *ledger.InsufficientStockError
      errors.As(err, &se) // se.Available, se.Requested
  }
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidReference is returned when a sale names a product or staff
	// member that does not currently exist.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrInsufficientStock is returned when a sale quantity exceeds stock.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrNotFound is returned when a record id does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidInput is returned for values the data model forbids.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotPersisted is returned when the in-memory change was applied but
	// could not be written to the KV adapter.
	ErrNotPersisted = errors.New("change not persisted")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientStockError reports a stock shortage for a sale.
type InsufficientStockError struct {
	ProductID int64
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// InvalidReferenceError names the missing side of a sale.
type InvalidReferenceError struct {
	Kind string // "product" or "staff"
	ID   int64
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid reference: %s %d does not exist", e.Kind, e.ID)
}

func (e *InvalidReferenceError) Unwrap() error {
	return ErrInvalidReference
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the caller can fix the error by changing input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidReference) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrInvalidInput)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
