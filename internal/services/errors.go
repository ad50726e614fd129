package services

import (
	"errors"

	"tokofon/internal/repositories"
)

// Domain-level sentinel errors. Together with the store-level sentinels
// re-exported below they form the full error taxonomy handlers map to HTTP
// statuses via errors.Is.
var (
	// ErrEmptyCart is returned when checkout finds no cart lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidTransition is returned for an illegal order status change.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrForbidden is returned for a role or ownership violation.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict is returned for benign races such as double-cancel.
	ErrConflict = errors.New("conflict")
	// ErrInvalidInput is returned for malformed arguments reaching the
	// service layer, such as a blank shipping address or an unknown status.
	ErrInvalidInput = errors.New("invalid input")

	// Store-level sentinels, re-exported so handlers only deal with one
	// package.
	ErrNotFound          = repositories.ErrNotFound
	ErrInsufficientStock = repositories.ErrInsufficientStock
	ErrTransientStore    = repositories.ErrTransientStore
)

// Principal is the authenticated caller as issued by the identity layer.
// The services trust it verbatim.
type Principal struct {
	UserID string
	Role   string
}
