package repositories_test

import (
	"fmt"
	"testing"

	"tokofon/internal/models"
	"tokofon/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupDB opens a fresh in-memory SQLite database for one test.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Phone{}))
	return db
}

func createPhone(t *testing.T, db *gorm.DB, stock int, price float64) *models.Phone {
	t.Helper()
	phone := &models.Phone{
		ModelName:     "Galaxy S24",
		Manufacturer:  "Samsung",
		Price:         price,
		StockQuantity: stock,
	}
	repo := repositories.NewGORMPhoneRepository(db)
	require.NoError(t, repo.Create(phone))
	return phone
}

func currentStock(t *testing.T, db *gorm.DB, phoneID string) int {
	t.Helper()
	var phone models.Phone
	require.NoError(t, db.First(&phone, "id = ?", phoneID).Error)
	return phone.StockQuantity
}

func TestLedgerReserve(t *testing.T) {
	db := setupDB(t)
	phone := createPhone(t, db, 5, 799.99)
	ledger := repositories.NewGORMInventoryLedger()

	price, err := ledger.Reserve(db, phone.ID, 3)
	assert.NoError(t, err)
	assert.Equal(t, 799.99, price, "reserve should return the price snapshot")
	assert.Equal(t, 2, currentStock(t, db, phone.ID))

	// Draining the remaining stock is fine
	_, err = ledger.Reserve(db, phone.ID, 2)
	assert.NoError(t, err)
	assert.Equal(t, 0, currentStock(t, db, phone.ID))

	// One more unit would go negative
	_, err = ledger.Reserve(db, phone.ID, 1)
	assert.ErrorIs(t, err, repositories.ErrInsufficientStock)
	assert.Equal(t, 0, currentStock(t, db, phone.ID))
}

func TestLedgerReserveInsufficientStock(t *testing.T) {
	db := setupDB(t)
	phone := createPhone(t, db, 2, 100)
	ledger := repositories.NewGORMInventoryLedger()

	_, err := ledger.Reserve(db, phone.ID, 3)
	assert.ErrorIs(t, err, repositories.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Galaxy S24", "the error should name the phone that lacked stock")
	assert.Equal(t, 2, currentStock(t, db, phone.ID), "a failed reserve must not change stock")
}

func TestLedgerReserveReportsCurrentAvailability(t *testing.T) {
	db := setupDB(t)
	phone := createPhone(t, db, 5, 100)
	ledger := repositories.NewGORMInventoryLedger()

	_, err := ledger.Reserve(db, phone.ID, 3)
	require.NoError(t, err)

	// The failure message carries the stock as it stood when the decrement
	// lost, re-read on the failing branch rather than taken from an earlier
	// snapshot.
	_, err = ledger.Reserve(db, phone.ID, 3)
	assert.ErrorIs(t, err, repositories.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "available: 2")
}

func TestLedgerReserveMissingPhone(t *testing.T) {
	db := setupDB(t)
	ledger := repositories.NewGORMInventoryLedger()

	_, err := ledger.Reserve(db, "no-such-phone", 1)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestLedgerReserveDeletedMidflight(t *testing.T) {
	db := setupDB(t)
	phone := createPhone(t, db, 5, 100)

	// Delete the phone after Reserve's existence read but before its
	// conditional decrement runs. The zero-rows outcome must be reported as
	// a missing phone, not as insufficient stock.
	dropped := false
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("drop_phone_once", func(tx *gorm.DB) {
		if !dropped {
			dropped = true
			tx.Session(&gorm.Session{NewDB: true}).Delete(&models.Phone{}, "id = ?", phone.ID)
		}
	}))

	ledger := repositories.NewGORMInventoryLedger()
	_, err := ledger.Reserve(db, phone.ID, 1)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.NotErrorIs(t, err, repositories.ErrInsufficientStock)
}

func TestLedgerReserveRejectsNonPositiveQuantity(t *testing.T) {
	db := setupDB(t)
	phone := createPhone(t, db, 5, 100)
	ledger := repositories.NewGORMInventoryLedger()

	_, err := ledger.Reserve(db, phone.ID, 0)
	assert.Error(t, err)
	_, err = ledger.Reserve(db, phone.ID, -2)
	assert.Error(t, err)
	assert.Equal(t, 5, currentStock(t, db, phone.ID))
}

func TestLedgerRestore(t *testing.T) {
	db := setupDB(t)
	phone := createPhone(t, db, 1, 100)
	ledger := repositories.NewGORMInventoryLedger()

	assert.NoError(t, ledger.Restore(db, phone.ID, 4))
	assert.Equal(t, 5, currentStock(t, db, phone.ID))
}

func TestLedgerRestoreDeletedPhoneIsNoop(t *testing.T) {
	db := setupDB(t)
	phone := createPhone(t, db, 1, 100)
	repo := repositories.NewGORMPhoneRepository(db)
	require.NoError(t, repo.Delete(phone.ID))

	ledger := repositories.NewGORMInventoryLedger()
	// Restoring stock to a phone that no longer exists is discarded, not
	// an error.
	assert.NoError(t, ledger.Restore(db, phone.ID, 3))

	_, err := repo.GetByID(phone.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestLedgerReserveRestoreConservation(t *testing.T) {
	db := setupDB(t)
	phone := createPhone(t, db, 10, 100)
	ledger := repositories.NewGORMInventoryLedger()

	for i := 0; i < 5; i++ {
		_, err := ledger.Reserve(db, phone.ID, 2)
		require.NoError(t, err)
		require.NoError(t, ledger.Restore(db, phone.ID, 2))
	}
	assert.Equal(t, 10, currentStock(t, db, phone.ID), "restoration must be exact")
}
