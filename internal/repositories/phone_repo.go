package repositories

import (
	"gorm.io/gorm"

	"tokofon/internal/models"
)

// PhoneFilter narrows and orders a catalog listing.
type PhoneFilter struct {
	Manufacturer      string
	ModelNameContains string
	PriceMin          *float64
	PriceMax          *float64
	SortBy            string // id, model_name, manufacturer, price, stock_quantity
	SortDesc          bool
	Page              int
	PerPage           int
}

// PhoneRepository defines the interface for phone catalog data access.
// Stock mutation is deliberately absent: that belongs to InventoryLedger.
type PhoneRepository interface {
	WithTx(tx *gorm.DB) PhoneRepository
	GetAll(filter PhoneFilter) ([]models.Phone, int64, error)
	GetByID(id string) (*models.Phone, error)
	Create(phone *models.Phone) error
	Update(phone *models.Phone) error
	Delete(id string) error
}
