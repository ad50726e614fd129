package models

import (
	"math"
	"time"

	"gorm.io/gorm"
)

// Cart holds a buyer's pending items. A user has at most one cart; it is
// created lazily on first access and removed together with the account.
type Cart struct {
	ID         string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string     `json:"user_id" gorm:"uniqueIndex;type:varchar(36)"`
	Items      []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	gorm.Model            // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// CartItem is a single line in a cart: one line per phone, quantity > 0.
type CartItem struct {
	ID       string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CartID   string    `json:"cart_id" gorm:"type:varchar(36);uniqueIndex:uq_cart_phone"`
	PhoneID  string    `json:"phone_id" gorm:"type:varchar(36);uniqueIndex:uq_cart_phone"`
	Quantity int       `json:"quantity" gorm:"not null;check:quantity > 0"`
	AddedAt  time.Time `json:"added_at"`
}

// IsEmpty reports whether the cart has no items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Round2 rounds a monetary amount to two decimal places.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}
