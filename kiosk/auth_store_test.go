package kiosk

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rodrigoinhaia/DiinPonto/core/models"
)

func openStore(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory store.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Department{},
		&models.WorkSchedule{},
		&models.TimeRecord{},
		&models.CorrectionRequest{},
		&models.KioskAuthLog{},
	))
	return db
}

func seedPinUser(t *testing.T, db *gorm.DB, employeeID, pin string) *models.User {
	t.Helper()
	user := models.User{
		Name:       "User " + employeeID,
		Email:      employeeID + "@diinponto.com",
		EmployeeID: employeeID,
		Barcode:    "B-" + employeeID,
		Role:       models.RoleEmployee,
		Pin:        hashedPin(t, pin),
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestByPINAttributesFailures(t *testing.T) {
	db := openStore(t)
	a := NewAuthenticator()
	user := seedPinUser(t, db, "EMP001", "123456")
	meta := Attempt{IP: "10.0.0.1", UserAgent: "kiosk"}

	_, err := a.ByPIN(db, "654321", meta)
	assert.ErrorIs(t, err, ErrNotFound)

	var failures int64
	require.NoError(t, db.Model(&models.KioskAuthLog{}).
		Where("user_id = ? AND success = ?", user.ID, false).
		Count(&failures).Error)
	assert.Equal(t, int64(1), failures, "a wrong guess must be charged to the compared user")
}

func TestLockoutAfterRepeatedWrongGuesses(t *testing.T) {
	db := openStore(t)
	a := NewAuthenticator()
	user := seedPinUser(t, db, "EMP002", "123456")
	meta := Attempt{IP: "10.0.0.1", UserAgent: "kiosk"}

	for i := 0; i < a.MaxAttempts; i++ {
		_, err := a.ByPIN(db, "000000", meta)
		assert.ErrorIs(t, err, ErrNotFound)
	}

	blocked, err := a.IsBlocked(db, user.ID)
	require.NoError(t, err)
	assert.True(t, blocked)

	// The correct PIN is refused while the lockout holds.
	_, err = a.ByPIN(db, "123456", meta)
	assert.ErrorIs(t, err, ErrTemporarilyBlocked)
}

func TestByPINSuccessDoesNotBlock(t *testing.T) {
	db := openStore(t)
	a := NewAuthenticator()
	user := seedPinUser(t, db, "EMP003", "123456")

	got, err := a.ByPIN(db, "123456", Attempt{})
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	blocked, err := a.IsBlocked(db, user.ID)
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestByBarcodeBlockedUser(t *testing.T) {
	db := openStore(t)
	a := NewAuthenticator()
	user := seedPinUser(t, db, "EMP004", "123456")

	for i := 0; i < a.MaxAttempts; i++ {
		entry := models.KioskAuthLog{UserID: &user.ID, Method: models.AuthMethodPIN, Success: false}
		require.NoError(t, db.Create(&entry).Error)
	}

	_, err := a.ByBarcode(db, user.Barcode, Attempt{})
	assert.ErrorIs(t, err, ErrTemporarilyBlocked)
}
