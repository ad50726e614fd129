package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusFailed     OrderStatus = "failed"
)

// AllowedOrderStatuses lists every status an order may hold.
var AllowedOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusFailed,
}

// validNext encodes the order state machine. delivered, cancelled and
// failed are absorbing: nothing transitions out of them.
var validNext = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending: {
		OrderStatusProcessing: true,
		OrderStatusCancelled:  true,
		OrderStatusFailed:     true,
	},
	OrderStatusProcessing: {
		OrderStatusShipped:   true,
		OrderStatusCancelled: true,
		OrderStatusFailed:    true,
	},
	OrderStatusShipped: {
		OrderStatusDelivered: true,
		OrderStatusFailed:    true,
	},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
	OrderStatusFailed:    {},
}

// CanTransition reports whether the state machine permits from -> to.
func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// IsValid reports whether s is a known order status.
func (s OrderStatus) IsValid() bool {
	_, ok := validNext[s]
	return ok
}

// IsTerminal reports whether s is an absorbing state.
func (s OrderStatus) IsTerminal() bool {
	return len(validNext[s]) == 0 && s.IsValid()
}

// OrderItem is a single immutable line within an order. PhoneName and
// PriceAtPurchase are snapshots taken at checkout time; they survive later
// price changes and even deletion of the phone itself.
type OrderItem struct {
	ID              string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID         string  `json:"order_id" gorm:"index;type:varchar(36)"`
	PhoneID         string  `json:"phone_id" gorm:"index;type:varchar(36)"`
	PhoneName       string  `json:"phone_name" gorm:"type:varchar(100)"`
	Quantity        int     `json:"quantity" gorm:"not null;check:quantity > 0"`
	PriceAtPurchase float64 `json:"price_at_purchase" gorm:"not null;check:price_at_purchase >= 0"`
}

// Order represents a customer order. Orders are created only by checkout
// and never deleted; after creation only Status and UpdatedAt change.
type Order struct {
	ID              string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string      `json:"user_id" gorm:"index;type:varchar(36)"`
	Items           []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	TotalAmount     float64     `json:"total_amount" gorm:"not null"`
	Status          OrderStatus `json:"status" gorm:"type:varchar(50);not null;default:pending"`
	ShippingAddress string      `json:"shipping_address" gorm:"type:text"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}
