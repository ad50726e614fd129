package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tokofon/internal/models"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *GORMOrderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &GORMOrderRepository{db: tx}
}

// Create persists a new order together with its items.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", ClassifyStoreError(err))
	}
	return nil
}

// GetByID retrieves a single order with its items preloaded.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, ClassifyStoreError(err))
	}
	return &order, nil
}

// GetAll retrieves a filtered page of orders, newest first, plus the total
// count.
func (r *GORMOrderRepository) GetAll(filter OrderFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})

	if filter.BuyerID != "" {
		query = query.Where("orders.user_id = ?", filter.BuyerID)
	}
	if filter.SellerID != "" {
		// Raw join on phones keeps soft-deleted listings visible: a seller
		// does not lose sight of orders for phones they removed later.
		sellerOrders := r.db.Model(&models.OrderItem{}).
			Select("order_items.order_id").
			Joins("JOIN phones ON phones.id = order_items.phone_id").
			Where("phones.owner_id = ?", filter.SellerID)
		query = query.Where("orders.id IN (?)", sellerOrders)
	}
	if filter.Status != "" {
		query = query.Where("orders.status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query = query.Order("orders.created_at DESC")
	if filter.PerPage > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PerPage).Limit(filter.PerPage)
	}

	var orders []models.Order
	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get orders: %w", ClassifyStoreError(err))
	}
	return orders, total, nil
}

// TransitionStatus is a compare-and-set on the order's status column.
func (r *GORMOrderRepository) TransitionStatus(id string, from []models.OrderStatus, to models.OrderStatus) (bool, error) {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to update order status: %w", ClassifyStoreError(res.Error))
	}
	return res.RowsAffected > 0, nil
}

// SellerOwnsLine reports whether at least one item of the order references
// a phone owned by sellerID. Soft-deleted phones still count: deleting a
// listing does not revoke the seller's standing on past orders.
func (r *GORMOrderRepository) SellerOwnsLine(orderID, sellerID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.OrderItem{}).
		Joins("JOIN phones ON phones.id = order_items.phone_id").
		Where("order_items.order_id = ? AND phones.owner_id = ?", orderID, sellerID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check order line ownership: %w", ClassifyStoreError(err))
	}
	return count > 0, nil
}
