package services

import (
	"errors"
	"fmt"

	"tokofon/internal/models"
	"tokofon/internal/repositories"
)

// CartService handles business logic for a buyer's cart. The stock checks
// here are advisory, for user experience only: stock is authoritative at
// checkout time, through the inventory ledger.
type CartService struct {
	carts  repositories.CartRepository
	phones repositories.PhoneRepository
}

// NewCartService creates a new CartService.
func NewCartService(carts repositories.CartRepository, phones repositories.PhoneRepository) *CartService {
	return &CartService{
		carts:  carts,
		phones: phones,
	}
}

// GetCart retrieves the user's cart, creating an empty one on first access.
func (s *CartService) GetCart(userID string) (*models.Cart, error) {
	return s.carts.GetOrCreateByUserID(userID)
}

// AddItem adds quantity of a phone to the user's cart, merging into the
// existing line if the phone is already there.
func (s *CartService) AddItem(userID, phoneID string, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d: %w", quantity, ErrInvalidInput)
	}

	cart, err := s.carts.GetOrCreateByUserID(userID)
	if err != nil {
		return nil, err
	}

	phone, err := s.phones.GetByID(phoneID)
	if err != nil {
		return nil, err
	}

	newQuantity := quantity
	item, err := s.carts.GetItem(cart.ID, phoneID)
	switch {
	case err == nil:
		newQuantity += item.Quantity
	case errors.Is(err, ErrNotFound):
		item = &models.CartItem{CartID: cart.ID, PhoneID: phoneID}
	default:
		return nil, err
	}

	if phone.StockQuantity < newQuantity {
		return nil, fmt.Errorf("phone '%s' (requested: %d, available: %d): %w",
			phone.ModelName, newQuantity, phone.StockQuantity, ErrInsufficientStock)
	}

	item.Quantity = newQuantity
	if err := s.carts.SaveItem(item); err != nil {
		return nil, err
	}
	return s.carts.GetByUserID(userID)
}

// UpdateItem sets the quantity of an existing line. A target quantity of
// zero or less removes the line instead of persisting it.
func (s *CartService) UpdateItem(userID, phoneID string, quantity int) (*models.Cart, error) {
	cart, err := s.carts.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	item, err := s.carts.GetItem(cart.ID, phoneID)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		if err := s.carts.DeleteItem(cart.ID, phoneID); err != nil {
			return nil, err
		}
		return s.carts.GetByUserID(userID)
	}

	phone, err := s.phones.GetByID(phoneID)
	if err != nil {
		return nil, err
	}
	if phone.StockQuantity < quantity {
		return nil, fmt.Errorf("phone '%s' (requested: %d, available: %d): %w",
			phone.ModelName, quantity, phone.StockQuantity, ErrInsufficientStock)
	}

	item.Quantity = quantity
	if err := s.carts.SaveItem(item); err != nil {
		return nil, err
	}
	return s.carts.GetByUserID(userID)
}

// RemoveItem deletes a single line from the user's cart.
func (s *CartService) RemoveItem(userID, phoneID string) (*models.Cart, error) {
	cart, err := s.carts.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if err := s.carts.DeleteItem(cart.ID, phoneID); err != nil {
		return nil, err
	}
	return s.carts.GetByUserID(userID)
}

// Clear deletes every line from the user's cart. Clearing a missing or
// already empty cart succeeds.
func (s *CartService) Clear(userID string) (*models.Cart, error) {
	cart, err := s.carts.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return s.carts.GetOrCreateByUserID(userID)
		}
		return nil, err
	}
	if err := s.carts.ClearItems(cart.ID); err != nil {
		return nil, err
	}
	return s.carts.GetByUserID(userID)
}

// TotalPrice derives the cart total from live phone prices: sum of
// quantity times price over lines whose phone still exists, rounded to two
// decimals. It is never stored.
func (s *CartService) TotalPrice(cart *models.Cart) (float64, error) {
	var total float64
	for _, item := range cart.Items {
		phone, err := s.phones.GetByID(item.PhoneID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue // phone deleted while in cart; line contributes nothing
			}
			return 0, err
		}
		total += float64(item.Quantity) * phone.Price
	}
	return models.Round2(total), nil
}
