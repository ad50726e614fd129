package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tokofon/internal/models"
)

// phoneSortColumns maps the filter's SortBy values to real columns so user
// input never reaches the ORDER BY clause directly.
var phoneSortColumns = map[string]string{
	"id":             "id",
	"model_name":     "model_name",
	"manufacturer":   "manufacturer",
	"price":          "price",
	"stock_quantity": "stock_quantity",
}

// GORMPhoneRepository is a GORM implementation of PhoneRepository.
type GORMPhoneRepository struct {
	db *gorm.DB
}

// NewGORMPhoneRepository creates a new instance of GORMPhoneRepository.
func NewGORMPhoneRepository(db *gorm.DB) *GORMPhoneRepository {
	return &GORMPhoneRepository{
		db: db,
	}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *GORMPhoneRepository) WithTx(tx *gorm.DB) PhoneRepository {
	return &GORMPhoneRepository{db: tx}
}

// GetAll retrieves a filtered, sorted page of phones plus the total count.
func (r *GORMPhoneRepository) GetAll(filter PhoneFilter) ([]models.Phone, int64, error) {
	query := r.db.Model(&models.Phone{})

	if filter.Manufacturer != "" {
		query = query.Where("manufacturer LIKE ?", "%"+filter.Manufacturer+"%")
	}
	if filter.ModelNameContains != "" {
		query = query.Where("model_name LIKE ?", "%"+filter.ModelNameContains+"%")
	}
	if filter.PriceMin != nil {
		query = query.Where("price >= ?", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		query = query.Where("price <= ?", *filter.PriceMax)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count phones: %w", err)
	}

	column, ok := phoneSortColumns[filter.SortBy]
	if !ok {
		column = "id"
	}
	direction := "asc"
	if filter.SortDesc {
		direction = "desc"
	}
	query = query.Order(column + " " + direction)

	if filter.PerPage > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PerPage).Limit(filter.PerPage)
	}

	var phones []models.Phone
	if err := query.Find(&phones).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get phones: %w", err)
	}
	return phones, total, nil
}

// GetByID retrieves a single phone by its ID from the database.
func (r *GORMPhoneRepository) GetByID(id string) (*models.Phone, error) {
	var phone models.Phone
	if err := r.db.First(&phone, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("phone with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get phone by ID %s: %w", id, ClassifyStoreError(err))
	}
	return &phone, nil
}

// Create creates a new phone listing in the database.
func (r *GORMPhoneRepository) Create(phone *models.Phone) error {
	if phone.ID == "" {
		phone.ID = uuid.New().String()
	}
	if err := r.db.Create(phone).Error; err != nil {
		return fmt.Errorf("failed to create phone: %w", ClassifyStoreError(err))
	}
	return nil
}

// Update updates the catalog fields of an existing phone. StockQuantity is
// excluded: stock moves only through the inventory ledger.
func (r *GORMPhoneRepository) Update(phone *models.Phone) error {
	res := r.db.Model(&models.Phone{}).
		Where("id = ?", phone.ID).
		Select("model_name", "manufacturer", "price", "specifications").
		Updates(phone)
	if res.Error != nil {
		return fmt.Errorf("failed to update phone: %w", ClassifyStoreError(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("phone with ID %s: %w", phone.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a phone by its ID from the database.
func (r *GORMPhoneRepository) Delete(id string) error {
	res := r.db.Delete(&models.Phone{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete phone: %w", ClassifyStoreError(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("phone with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
