package repositories

import "gorm.io/gorm"

// InventoryLedger is the only code path allowed to change a phone's
// StockQuantity. Both operations run against the caller's transaction
// handle so that a failing checkout or cancellation rolls the stock change
// back together with everything else.
type InventoryLedger interface {
	// Reserve atomically decrements the phone's stock by quantity and
	// returns the phone's current price as a snapshot. It fails with
	// ErrNotFound if the phone no longer exists and ErrInsufficientStock
	// if the decrement would drive stock below zero.
	Reserve(tx *gorm.DB, phoneID string, quantity int) (float64, error)

	// Restore atomically increments the phone's stock by quantity. It is
	// a no-op success when the phone no longer exists; the restored stock
	// is simply discarded.
	Restore(tx *gorm.DB, phoneID string, quantity int) error
}
