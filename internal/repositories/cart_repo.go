package repositories

import (
	"gorm.io/gorm"

	"tokofon/internal/models"
)

// CartRepository defines the interface for cart data access. WithTx binds
// a copy of the repository to an open transaction so checkout can read and
// clear the cart inside the same atomic unit as the stock reservations.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	GetByUserID(userID string) (*models.Cart, error)
	GetOrCreateByUserID(userID string) (*models.Cart, error)
	GetItem(cartID, phoneID string) (*models.CartItem, error)
	SaveItem(item *models.CartItem) error
	DeleteItem(cartID, phoneID string) error
	ClearItems(cartID string) error
}
