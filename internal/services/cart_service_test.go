package services_test

import (
	"fmt"
	"testing"

	"tokofon/internal/models"
	"tokofon/internal/repositories"
	"tokofon/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupDB opens a fresh in-memory SQLite database with the full schema.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Phone{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	))
	return db
}

func createTestPhone(t *testing.T, db *gorm.DB, name string, price float64, stock int) *models.Phone {
	t.Helper()
	phone := &models.Phone{
		ModelName:     name,
		Manufacturer:  "Samsung",
		Price:         price,
		StockQuantity: stock,
		OwnerID:       "seller-1",
	}
	require.NoError(t, repositories.NewGORMPhoneRepository(db).Create(phone))
	return phone
}

func newCartService(db *gorm.DB) *services.CartService {
	return services.NewCartService(
		repositories.NewGORMCartRepository(db),
		repositories.NewGORMPhoneRepository(db),
	)
}

func TestCartGetCreatesLazily(t *testing.T) {
	db := setupDB(t)
	service := newCartService(db)

	cart, err := service.GetCart("buyer-1")
	require.NoError(t, err)
	assert.Equal(t, "buyer-1", cart.UserID)
	assert.True(t, cart.IsEmpty())

	// A second access returns the same cart, not a new one
	again, err := service.GetCart("buyer-1")
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)
}

func TestCartAddItemMergesLines(t *testing.T) {
	db := setupDB(t)
	phone := createTestPhone(t, db, "Galaxy S24", 799.99, 10)
	service := newCartService(db)

	cart, err := service.AddItem("buyer-1", phone.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	// Adding the same phone again merges into the existing line
	cart, err = service.AddItem("buyer-1", phone.ID, 3)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1, "one line per phone")
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestCartAddItemAdvisoryStockCheck(t *testing.T) {
	db := setupDB(t)
	phone := createTestPhone(t, db, "Galaxy S24", 799.99, 3)
	service := newCartService(db)

	_, err := service.AddItem("buyer-1", phone.ID, 4)
	assert.ErrorIs(t, err, services.ErrInsufficientStock)

	// The merged quantity is checked too
	_, err = service.AddItem("buyer-1", phone.ID, 2)
	require.NoError(t, err)
	_, err = service.AddItem("buyer-1", phone.ID, 2)
	assert.ErrorIs(t, err, services.ErrInsufficientStock)
}

func TestCartAddItemUnknownPhone(t *testing.T) {
	db := setupDB(t)
	service := newCartService(db)

	_, err := service.AddItem("buyer-1", "no-such-phone", 1)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestCartAddItemRejectsNonPositiveQuantity(t *testing.T) {
	db := setupDB(t)
	phone := createTestPhone(t, db, "Galaxy S24", 799.99, 10)
	service := newCartService(db)

	_, err := service.AddItem("buyer-1", phone.ID, 0)
	assert.ErrorIs(t, err, services.ErrInvalidInput)
	_, err = service.AddItem("buyer-1", phone.ID, -1)
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestCartUpdateItemToZeroRemovesLine(t *testing.T) {
	db := setupDB(t)
	phone := createTestPhone(t, db, "Galaxy S24", 799.99, 10)
	service := newCartService(db)

	_, err := service.AddItem("buyer-1", phone.ID, 2)
	require.NoError(t, err)

	cart, err := service.UpdateItem("buyer-1", phone.ID, 0)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty(), "quantity <= 0 must remove the line, not persist it")

	// Negative quantities behave the same way
	_, err = service.AddItem("buyer-1", phone.ID, 2)
	require.NoError(t, err)
	cart, err = service.UpdateItem("buyer-1", phone.ID, -5)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestCartUpdateItemSetsQuantity(t *testing.T) {
	db := setupDB(t)
	phone := createTestPhone(t, db, "Galaxy S24", 799.99, 10)
	service := newCartService(db)

	_, err := service.AddItem("buyer-1", phone.ID, 2)
	require.NoError(t, err)

	cart, err := service.UpdateItem("buyer-1", phone.ID, 7)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 7, cart.Items[0].Quantity)

	_, err = service.UpdateItem("buyer-1", phone.ID, 11)
	assert.ErrorIs(t, err, services.ErrInsufficientStock)
}

func TestCartRemoveAndClear(t *testing.T) {
	db := setupDB(t)
	phoneA := createTestPhone(t, db, "Galaxy S24", 799.99, 10)
	phoneB := createTestPhone(t, db, "Pixel 8", 699.00, 10)
	service := newCartService(db)

	_, err := service.AddItem("buyer-1", phoneA.ID, 1)
	require.NoError(t, err)
	_, err = service.AddItem("buyer-1", phoneB.ID, 2)
	require.NoError(t, err)

	cart, err := service.RemoveItem("buyer-1", phoneA.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, phoneB.ID, cart.Items[0].PhoneID)

	// Removing a line that is not there is a NotFound
	_, err = service.RemoveItem("buyer-1", phoneA.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	cart, err = service.Clear("buyer-1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	// Clearing an already empty cart succeeds
	cart, err = service.Clear("buyer-1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestCartTotalPrice(t *testing.T) {
	db := setupDB(t)
	phoneA := createTestPhone(t, db, "Galaxy S24", 799.99, 10)
	phoneB := createTestPhone(t, db, "Pixel 8", 699.00, 10)
	service := newCartService(db)

	_, err := service.AddItem("buyer-1", phoneA.ID, 2)
	require.NoError(t, err)
	cart, err := service.AddItem("buyer-1", phoneB.ID, 1)
	require.NoError(t, err)

	total, err := service.TotalPrice(cart)
	require.NoError(t, err)
	assert.Equal(t, models.Round2(2*799.99+699.00), total)
}

func TestCartTotalPriceSkipsDeletedPhones(t *testing.T) {
	db := setupDB(t)
	phoneA := createTestPhone(t, db, "Galaxy S24", 799.99, 10)
	phoneB := createTestPhone(t, db, "Pixel 8", 699.00, 10)
	service := newCartService(db)

	_, err := service.AddItem("buyer-1", phoneA.ID, 2)
	require.NoError(t, err)
	_, err = service.AddItem("buyer-1", phoneB.ID, 1)
	require.NoError(t, err)

	require.NoError(t, repositories.NewGORMPhoneRepository(db).Delete(phoneB.ID))

	cart, err := service.GetCart("buyer-1")
	require.NoError(t, err)
	total, err := service.TotalPrice(cart)
	require.NoError(t, err)
	assert.Equal(t, models.Round2(2*799.99), total,
		"lines whose phone no longer exists contribute nothing to the total")
}
