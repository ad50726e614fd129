package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tokofon/internal/models"
	"tokofon/internal/repositories"
)

// EventPublisher publishes order lifecycle events. *rabbitmq.Client
// satisfies it; a nil publisher disables publication.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// sellerTargets are the statuses a seller may drive an order to via the
// status-update path. Buyers do not use that path at all; they cancel
// through CancelOrder.
var sellerTargets = map[models.OrderStatus]bool{
	models.OrderStatusProcessing: true,
	models.OrderStatusShipped:    true,
	models.OrderStatusDelivered:  true,
	models.OrderStatusCancelled:  true,
}

// cancellableFrom are the only statuses an order may be cancelled from.
var cancellableFrom = []models.OrderStatus{
	models.OrderStatusPending,
	models.OrderStatusProcessing,
}

// OrderService handles business logic related to orders: the checkout
// transaction, the status state machine and the stock-restoring
// cancellation path.
type OrderService struct {
	db       *gorm.DB
	orders   repositories.OrderRepository
	carts    repositories.CartRepository
	phones   repositories.PhoneRepository
	ledger   repositories.InventoryLedger
	mqClient EventPublisher
}

// NewOrderService creates a new OrderService.
func NewOrderService(db *gorm.DB, orders repositories.OrderRepository, carts repositories.CartRepository,
	phones repositories.PhoneRepository, ledger repositories.InventoryLedger, mqClient EventPublisher) *OrderService {
	return &OrderService{
		db:       db,
		orders:   orders,
		carts:    carts,
		phones:   phones,
		ledger:   ledger,
		mqClient: mqClient,
	}
}

// Checkout drains the buyer's cart into a new pending order inside a
// single transaction: every cart line is reserved through the inventory
// ledger, the order is created with the price snapshots the reservations
// returned, and the cart is cleared. Any failure rolls the whole attempt
// back, reservations included, leaving cart and stock exactly as they
// were. A second immediate call fails with ErrEmptyCart instead of
// creating a duplicate order.
func (s *OrderService) Checkout(buyerID, shippingAddress string) (*models.Order, error) {
	shippingAddress = strings.TrimSpace(shippingAddress)
	if shippingAddress == "" {
		return nil, fmt.Errorf("shipping address is required: %w", ErrInvalidInput)
	}

	var created *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		phones := s.phones.WithTx(tx)

		cart, err := carts.GetByUserID(buyerID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrEmptyCart
			}
			return err
		}
		if cart.IsEmpty() {
			return ErrEmptyCart
		}

		var total float64
		items := make([]models.OrderItem, 0, len(cart.Items))
		for _, line := range cart.Items {
			price, err := s.ledger.Reserve(tx, line.PhoneID, line.Quantity)
			if err != nil {
				return err
			}
			// Reserve guarantees the phone exists in this transaction, so
			// the name lookup cannot miss.
			phone, err := phones.GetByID(line.PhoneID)
			if err != nil {
				return err
			}
			items = append(items, models.OrderItem{
				PhoneID:         line.PhoneID,
				PhoneName:       phone.ModelName,
				Quantity:        line.Quantity,
				PriceAtPurchase: price,
			})
			total += float64(line.Quantity) * price
		}

		order := &models.Order{
			ID:              uuid.New().String(),
			UserID:          buyerID,
			Items:           items,
			TotalAmount:     models.Round2(total),
			Status:          models.OrderStatusPending,
			ShippingAddress: shippingAddress,
		}
		if err := s.orders.WithTx(tx).Create(order); err != nil {
			return err
		}
		if err := carts.ClearItems(cart.ID); err != nil {
			return err
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, repositories.ClassifyStoreError(err)
	}

	s.publishEvent("order.created", created)
	return created, nil
}

// GetOrders retrieves the orders visible to the actor: buyers see their
// own, sellers see orders containing their phones, admins see everything.
func (s *OrderService) GetOrders(actor Principal, status models.OrderStatus, page, perPage int) ([]models.Order, int64, error) {
	if status != "" && !status.IsValid() {
		return nil, 0, fmt.Errorf("invalid order status '%s': %w", status, ErrInvalidInput)
	}

	filter := repositories.OrderFilter{Status: status, Page: page, PerPage: perPage}
	switch actor.Role {
	case models.RoleBuyer:
		filter.BuyerID = actor.UserID
	case models.RoleSeller:
		filter.SellerID = actor.UserID
	}
	return s.orders.GetAll(filter)
}

// GetOrderByID retrieves a single order, enforcing the same visibility
// rules as GetOrders.
func (s *OrderService) GetOrderByID(id string, actor Principal) (*models.Order, error) {
	order, err := s.orders.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOrderAccess(order, actor); err != nil {
		return nil, err
	}
	return order, nil
}

// authorizeOrderAccess decides whether the actor may read the order:
// admins always, buyers when they placed it, sellers when they own the
// phone behind at least one line.
func (s *OrderService) authorizeOrderAccess(order *models.Order, actor Principal) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleBuyer:
		if order.UserID == actor.UserID {
			return nil
		}
	case models.RoleSeller:
		owns, err := s.orders.SellerOwnsLine(order.ID, actor.UserID)
		if err != nil {
			return err
		}
		if owns {
			return nil
		}
	}
	return fmt.Errorf("order %s is not visible to user %s: %w", order.ID, actor.UserID, ErrForbidden)
}

// UpdateOrderStatus drives the order state machine. The transition table
// is enforced here, centrally; a cancellation target additionally runs the
// stock-restoring compensation inside the same transaction.
func (s *OrderService) UpdateOrderStatus(id string, newStatus models.OrderStatus, actor Principal) (*models.Order, error) {
	if !newStatus.IsValid() {
		return nil, fmt.Errorf("invalid order status '%s': %w", newStatus, ErrInvalidInput)
	}

	order, err := s.orders.GetByID(id)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleSeller:
		owns, err := s.orders.SellerOwnsLine(id, actor.UserID)
		if err != nil {
			return nil, err
		}
		if !owns {
			return nil, fmt.Errorf("order %s has no items sold by user %s: %w", id, actor.UserID, ErrForbidden)
		}
		if !sellerTargets[newStatus] {
			return nil, fmt.Errorf("sellers may not set status '%s': %w", newStatus, ErrForbidden)
		}
	default:
		return nil, fmt.Errorf("role '%s' may not update order status: %w", actor.Role, ErrForbidden)
	}

	if !models.CanTransition(order.Status, newStatus) {
		return nil, fmt.Errorf("cannot change order status from '%s' to '%s': %w",
			order.Status, newStatus, ErrInvalidTransition)
	}

	if newStatus == models.OrderStatusCancelled {
		return s.cancel(order)
	}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		changed, err := s.orders.WithTx(tx).TransitionStatus(id, []models.OrderStatus{order.Status}, newStatus)
		if err != nil {
			return err
		}
		if !changed {
			// Someone else moved the order between our read and this write.
			return fmt.Errorf("order %s was modified concurrently: %w", id, ErrConflict)
		}
		return nil
	})
	if txErr != nil {
		return nil, repositories.ClassifyStoreError(txErr)
	}

	updated, err := s.orders.GetByID(id)
	if err != nil {
		return nil, err
	}
	s.publishEvent("order.status_updated", updated)
	return updated, nil
}

// CancelOrder cancels an order on behalf of the actor: the owning buyer, a
// seller owning at least one line's phone, or an admin. Stock is restored
// for every line and the status set to cancelled, all inside one
// transaction.
func (s *OrderService) CancelOrder(id string, actor Principal) (*models.Order, error) {
	order, err := s.orders.GetByID(id)
	if err != nil {
		return nil, err
	}

	allowed := false
	switch actor.Role {
	case models.RoleAdmin:
		allowed = true
	case models.RoleBuyer:
		allowed = order.UserID == actor.UserID
	case models.RoleSeller:
		allowed, err = s.orders.SellerOwnsLine(id, actor.UserID)
		if err != nil {
			return nil, err
		}
	}
	if !allowed {
		return nil, fmt.Errorf("order %s may not be cancelled by user %s: %w", id, actor.UserID, ErrForbidden)
	}

	if order.Status == models.OrderStatusCancelled {
		return nil, fmt.Errorf("order %s is already cancelled: %w", id, ErrConflict)
	}
	if !models.CanTransition(order.Status, models.OrderStatusCancelled) {
		return nil, fmt.Errorf("cannot cancel order in status '%s': %w", order.Status, ErrInvalidTransition)
	}

	return s.cancel(order)
}

// cancel restores stock for every order line and flips the status to
// cancelled as one atomic unit. The compare-and-set on the status makes
// concurrent cancellations of the same order resolve to exactly one
// winner; the loser's restorations are rolled back with its transaction,
// so stock is never restored twice.
func (s *OrderService) cancel(order *models.Order) (*models.Order, error) {
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			if err := s.ledger.Restore(tx, item.PhoneID, item.Quantity); err != nil {
				return err
			}
		}

		changed, err := s.orders.WithTx(tx).TransitionStatus(order.ID, cancellableFrom, models.OrderStatusCancelled)
		if err != nil {
			return err
		}
		if !changed {
			current, err := s.orders.WithTx(tx).GetByID(order.ID)
			if err != nil {
				return err
			}
			if current.Status == models.OrderStatusCancelled {
				return fmt.Errorf("order %s is already cancelled: %w", order.ID, ErrConflict)
			}
			return fmt.Errorf("cannot cancel order in status '%s': %w", current.Status, ErrInvalidTransition)
		}
		return nil
	})
	if txErr != nil {
		return nil, repositories.ClassifyStoreError(txErr)
	}

	cancelled, err := s.orders.GetByID(order.ID)
	if err != nil {
		return nil, err
	}
	s.publishEvent("order.cancelled", cancelled)
	return cancelled, nil
}

// publishEvent publishes an order lifecycle event. Publication is
// best-effort: the order is already committed, so a broker failure is
// logged rather than surfaced.
func (s *OrderService) publishEvent(event string, order *models.Order) {
	if s.mqClient == nil {
		return
	}

	body, err := json.Marshal(map[string]interface{}{
		"event":   event,
		"orderID": order.ID,
		"userID":  order.UserID,
		"status":  order.Status,
		"total":   order.TotalAmount,
	})
	if err != nil {
		log.Printf("Failed to marshal %s event for order %s: %v", event, order.ID, err)
		return
	}
	if err := s.mqClient.Publish("order", event, body); err != nil {
		log.Printf("Warning: Failed to publish %s event for order %s: %v", event, order.ID, err)
	}
}
