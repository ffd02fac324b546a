package domain

import "errors"

var (
	ErrSKURequired        = errors.New("sku is required")
	ErrNameRequired       = errors.New("name is required")
	ErrQtyInvalid         = errors.New("qty must be greater than zero")
	ErrSupplierRequired   = errors.New("supplier is required")
	ErrLinesRequired      = errors.New("purchase order must contain at least one line")
	ErrComponentsRequired = errors.New("kit must contain at least one component")
	ErrShippingInvalid    = errors.New("unknown shipping type")
	ErrItemsRequired      = errors.New("order must contain at least one item")

	ErrProductNotFound       = errors.New("product not found")
	ErrOrderNotFound         = errors.New("order not found")
	ErrKitNotFound           = errors.New("kit not found")
	ErrListingNotFound       = errors.New("listing not found")
	ErrPurchaseOrderNotFound = errors.New("purchase order not found")

	// ErrAlreadyExists is returned when a create collides on a unique key (SKU or id).
	ErrAlreadyExists = errors.New("already exists")
	// ErrVersionConflict signals a lost compare-and-swap on a stock write.
	ErrVersionConflict = errors.New("version conflict")
	// ErrInvalidTransition is returned for a status jump outside the transition table.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrOrderFinal is returned when advancing an order that is already dispatched.
	ErrOrderFinal = errors.New("order is in a final status")
	// ErrConfirmationMismatch gates destructive bulk actions behind a typed phrase.
	ErrConfirmationMismatch = errors.New("confirmation phrase does not match")
)

// IsNotFound reports whether err is any of the entity not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrKitNotFound) ||
		errors.Is(err, ErrListingNotFound) ||
		errors.Is(err, ErrPurchaseOrderNotFound)
}

// IsConflict reports whether err should map to a conflict for the caller
// (stale version, illegal transition, duplicate key).
func IsConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrOrderFinal) ||
		errors.Is(err, ErrAlreadyExists)
}

// IsValidation reports whether err is an input problem caught before any store call.
func IsValidation(err error) bool {
	return errors.Is(err, ErrSKURequired) ||
		errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrQtyInvalid) ||
		errors.Is(err, ErrSupplierRequired) ||
		errors.Is(err, ErrLinesRequired) ||
		errors.Is(err, ErrComponentsRequired) ||
		errors.Is(err, ErrShippingInvalid) ||
		errors.Is(err, ErrItemsRequired)
}
