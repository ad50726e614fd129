package models

import "gorm.io/gorm"

// Phone represents a phone listing in the catalog. StockQuantity is only
// ever written by the inventory ledger; every other caller treats it as
// read-only.
type Phone struct {
	ID             string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	ModelName      string  `json:"model_name" gorm:"index;type:varchar(100)" validate:"required,min=2,max=100"`
	Manufacturer   string  `json:"manufacturer" gorm:"index;type:varchar(100)" validate:"required,min=2,max=100"`
	Price          float64 `json:"price" validate:"gte=0"`
	StockQuantity  int     `json:"stock_quantity" validate:"gte=0"`
	Specifications string  `json:"specifications" validate:"omitempty,max=2000"`
	OwnerID        string  `json:"owner_id" gorm:"index;type:varchar(36)"`
	gorm.Model             // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
