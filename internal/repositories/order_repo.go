package repositories

import (
	"gorm.io/gorm"

	"tokofon/internal/models"
)

// OrderFilter narrows an order listing. BuyerID restricts to a buyer's own
// orders; SellerID restricts to orders containing at least one of the
// seller's phones.
type OrderFilter struct {
	BuyerID  string
	SellerID string
	Status   models.OrderStatus
	Page     int
	PerPage  int
}

// OrderRepository defines the interface for order data access. Orders are
// never deleted; after creation only their status may change.
type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	GetAll(filter OrderFilter) ([]models.Order, int64, error)
	// TransitionStatus sets the order's status to `to` only while its
	// current status is one of `from`, refreshing updated_at. It reports
	// whether a row actually changed, so concurrent transitions on the
	// same order cannot both win.
	TransitionStatus(id string, from []models.OrderStatus, to models.OrderStatus) (bool, error)
	SellerOwnsLine(orderID, sellerID string) (bool, error)
}
