package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tokofon/internal/models"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *GORMCartRepository) WithTx(tx *gorm.DB) CartRepository {
	return &GORMCartRepository{db: tx}
}

// GetByUserID retrieves the user's cart with its items preloaded.
func (r *GORMCartRepository) GetByUserID(userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.Preload("Items").First(&cart, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, ClassifyStoreError(err))
	}
	return &cart, nil
}

// GetOrCreateByUserID retrieves the user's cart, creating an empty one on
// first access.
func (r *GORMCartRepository) GetOrCreateByUserID(userID string) (*models.Cart, error) {
	cart, err := r.GetByUserID(userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	cart = &models.Cart{ID: uuid.New().String(), UserID: userID}
	if createErr := r.db.Create(cart).Error; createErr != nil {
		return nil, fmt.Errorf("failed to create cart for user %s: %w", userID, ClassifyStoreError(createErr))
	}
	return cart, nil
}

// GetItem retrieves one cart line by cart and phone.
func (r *GORMCartRepository) GetItem(cartID, phoneID string) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.First(&item, "cart_id = ? AND phone_id = ?", cartID, phoneID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart item for phone %s: %w", phoneID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart item: %w", ClassifyStoreError(err))
	}
	return &item, nil
}

// SaveItem creates or updates a cart line.
func (r *GORMCartRepository) SaveItem(item *models.CartItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
		item.AddedAt = time.Now()
	}
	if err := r.db.Save(item).Error; err != nil {
		return fmt.Errorf("failed to save cart item: %w", ClassifyStoreError(err))
	}
	return nil
}

// DeleteItem removes a single line from the cart.
func (r *GORMCartRepository) DeleteItem(cartID, phoneID string) error {
	res := r.db.Delete(&models.CartItem{}, "cart_id = ? AND phone_id = ?", cartID, phoneID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart item: %w", ClassifyStoreError(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item for phone %s: %w", phoneID, ErrNotFound)
	}
	return nil
}

// ClearItems removes every line from the cart. Clearing an already empty
// cart is not an error.
func (r *GORMCartRepository) ClearItems(cartID string) error {
	if err := r.db.Delete(&models.CartItem{}, "cart_id = ?", cartID).Error; err != nil {
		return fmt.Errorf("failed to clear cart %s: %w", cartID, ClassifyStoreError(err))
	}
	return nil
}
