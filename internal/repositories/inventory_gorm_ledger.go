package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"tokofon/internal/models"
)

// GORMInventoryLedger is a GORM implementation of InventoryLedger.
//
// Reservation uses a conditional decrement (UPDATE ... WHERE stock_quantity
// >= ?) instead of SELECT FOR UPDATE: the decrement is serialized by the
// database on the single row, two concurrent reservations that would
// jointly oversell cannot both match the condition, and the statement works
// unchanged on both the postgres and the sqlite driver.
type GORMInventoryLedger struct{}

// NewGORMInventoryLedger creates a new instance of GORMInventoryLedger.
func NewGORMInventoryLedger() *GORMInventoryLedger {
	return &GORMInventoryLedger{}
}

// Reserve decrements stock for phoneID by quantity and returns the price
// snapshot captured in the same transaction.
func (l *GORMInventoryLedger) Reserve(tx *gorm.DB, phoneID string, quantity int) (float64, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("reserve quantity must be positive, got %d", quantity)
	}

	var phone models.Phone
	if err := tx.First(&phone, "id = ?", phoneID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("phone with ID %s: %w", phoneID, ErrNotFound)
		}
		return 0, ClassifyStoreError(err)
	}

	res := tx.Model(&models.Phone{}).
		Where("id = ? AND stock_quantity >= ?", phoneID, quantity).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if res.Error != nil {
		return 0, ClassifyStoreError(res.Error)
	}
	if res.RowsAffected == 0 {
		// Either the stock ran out or the phone was deleted after the read
		// above; re-read to tell the two apart and report current numbers.
		if err := tx.First(&phone, "id = ?", phoneID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, fmt.Errorf("phone with ID %s: %w", phoneID, ErrNotFound)
			}
			return 0, ClassifyStoreError(err)
		}
		return 0, fmt.Errorf("phone '%s' (requested: %d, available: %d): %w",
			phone.ModelName, quantity, phone.StockQuantity, ErrInsufficientStock)
	}

	return phone.Price, nil
}

// Restore increments stock for phoneID by quantity. Zero rows affected
// means the phone was deleted; the restoration is discarded without error.
func (l *GORMInventoryLedger) Restore(tx *gorm.DB, phoneID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("restore quantity must be positive, got %d", quantity)
	}

	res := tx.Model(&models.Phone{}).
		Where("id = ?", phoneID).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", quantity))
	if res.Error != nil {
		return ClassifyStoreError(res.Error)
	}
	return nil
}
