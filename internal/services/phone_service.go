package services

import (
	"fmt"

	"gorm.io/gorm"

	"tokofon/internal/models"
	"tokofon/internal/repositories"
)

// PhoneService handles business logic for the phone catalog. Catalog edits
// that change stock go through the inventory ledger as a delta, so the
// ledger stays the only writer of stock_quantity.
type PhoneService struct {
	db     *gorm.DB
	repo   repositories.PhoneRepository
	ledger repositories.InventoryLedger
}

// NewPhoneService creates a new PhoneService.
func NewPhoneService(db *gorm.DB, repo repositories.PhoneRepository, ledger repositories.InventoryLedger) *PhoneService {
	return &PhoneService{
		db:     db,
		repo:   repo,
		ledger: ledger,
	}
}

// GetAllPhones retrieves a filtered page of phones plus the total count.
func (s *PhoneService) GetAllPhones(filter repositories.PhoneFilter) ([]models.Phone, int64, error) {
	return s.repo.GetAll(filter)
}

// GetPhoneByID retrieves a single phone by its ID.
func (s *PhoneService) GetPhoneByID(id string) (*models.Phone, error) {
	return s.repo.GetByID(id)
}

// CreatePhone creates a new listing owned by the acting seller.
func (s *PhoneService) CreatePhone(phone *models.Phone, actor Principal) error {
	phone.OwnerID = actor.UserID
	return s.repo.Create(phone)
}

// UpdatePhone updates an existing listing. Only the owning seller or an
// admin may edit it. A stock change is applied as a ledger delta inside
// the same transaction as the catalog update, so a concurrent checkout can
// never be overdrawn by a restock edit.
func (s *PhoneService) UpdatePhone(phone *models.Phone, actor Principal) error {
	existing, err := s.repo.GetByID(phone.ID)
	if err != nil {
		return err
	}
	if err := s.authorizeOwner(existing, actor); err != nil {
		return err
	}

	delta := phone.StockQuantity - existing.StockQuantity
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		switch {
		case delta > 0:
			if err := s.ledger.Restore(tx, phone.ID, delta); err != nil {
				return err
			}
		case delta < 0:
			if _, err := s.ledger.Reserve(tx, phone.ID, -delta); err != nil {
				return err
			}
		}
		return s.repo.WithTx(tx).Update(phone)
	})
	if txErr != nil {
		return fmt.Errorf("failed to update phone %s: %w", phone.ID, txErr)
	}
	return nil
}

// DeletePhone removes a listing. Only the owning seller or an admin may
// delete it. Existing order lines keep their snapshots.
func (s *PhoneService) DeletePhone(id string, actor Principal) error {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.authorizeOwner(existing, actor); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

func (s *PhoneService) authorizeOwner(phone *models.Phone, actor Principal) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if actor.Role == models.RoleSeller && phone.OwnerID == actor.UserID {
		return nil
	}
	return fmt.Errorf("phone %s is not owned by user %s: %w", phone.ID, actor.UserID, ErrForbidden)
}
