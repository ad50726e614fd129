package main

import (
	"fmt"
	"testing"

	"tokofon/internal/models"
	"tokofon/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Phone{}))
	return db
}

func TestSeedDemoDataIsIdempotent(t *testing.T) {
	db := openSeedDB(t)
	userRepo := repositories.NewGORMUserRepository(db)
	phoneRepo := repositories.NewGORMPhoneRepository(db)

	seedDemoData(userRepo, phoneRepo)
	seedDemoData(userRepo, phoneRepo)

	var userCount, phoneCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Phone{}).Count(&phoneCount).Error)
	assert.Equal(t, int64(3), userCount, "reseeding must not duplicate users")
	assert.Equal(t, int64(3), phoneCount, "reseeding must not duplicate phones")

	seller, err := userRepo.GetByUsername("seller1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSeller, seller.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(seller.Password), []byte("seller123")))

	phones, total, err := phoneRepo.GetAll(repositories.PhoneFilter{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	for _, phone := range phones {
		assert.Equal(t, seller.ID, phone.OwnerID, "seed phones belong to the seed seller")
	}
}
