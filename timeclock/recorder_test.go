package timeclock

import (
	"testing"
	"time"

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

func seedEmployee(t *testing.T, db *gorm.DB, employeeID string) *models.User {
	t.Helper()
	user := models.User{
		Name:       "User " + employeeID,
		Email:      employeeID + "@diinponto.com",
		EmployeeID: employeeID,
		Barcode:    "B-" + employeeID,
		Role:       models.RoleEmployee,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestRecordPersistsPunch(t *testing.T) {
	db := openStore(t)
	user := seedEmployee(t, db, "EMP001")

	before := time.Now()
	record, err := Record(db, RecordOptions{
		UserID: user.ID,
		Type:   models.RecordEntry,
		Device: "web",
		Mode:   ModeFourState,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, models.RecordEntry, record.Type)
	assert.Equal(t, "web", record.Device)
	assert.False(t, record.Timestamp.Before(before), "the server assigns the timestamp")

	var stored models.TimeRecord
	require.NoError(t, db.First(&stored, "id = ?", record.ID).Error)
	assert.Equal(t, user.ID, stored.UserID)
}

func TestRecordRejectsDuplicateEntry(t *testing.T) {
	db := openStore(t)
	user := seedEmployee(t, db, "EMP002")

	_, err := Record(db, RecordOptions{UserID: user.ID, Type: models.RecordEntry, Device: "web", Mode: ModeFourState})
	require.NoError(t, err)

	_, err = Record(db, RecordOptions{UserID: user.ID, Type: models.RecordEntry, Device: "web", Mode: ModeFourState})
	var violation *SequenceViolationError
	require.ErrorAs(t, err, &violation)

	var count int64
	require.NoError(t, db.Model(&models.TimeRecord{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count, "the rejected punch must not be persisted")
}

func TestRecordTwoStateToggle(t *testing.T) {
	db := openStore(t)
	user := seedEmployee(t, db, "EMP003")

	_, err := Record(db, RecordOptions{UserID: user.ID, Type: models.RecordEntry, Device: "web", Mode: ModeTwoState})
	require.NoError(t, err)
	_, err = Record(db, RecordOptions{UserID: user.ID, Type: models.RecordExit, Device: "web", Mode: ModeTwoState})
	require.NoError(t, err)

	_, err = Record(db, RecordOptions{UserID: user.ID, Type: models.RecordExit, Device: "web", Mode: ModeTwoState})
	var violation *SequenceViolationError
	assert.ErrorAs(t, err, &violation)
}

func TestRecordValidations(t *testing.T) {
	db := openStore(t)
	user := seedEmployee(t, db, "EMP004")

	t.Run("Device required", func(t *testing.T) {
		_, err := Record(db, RecordOptions{UserID: user.ID, Type: models.RecordEntry, Mode: ModeFourState})
		assert.EqualError(t, err, "device is required")
	})

	t.Run("Unknown user", func(t *testing.T) {
		_, err := Record(db, RecordOptions{UserID: "no-such-id", Type: models.RecordEntry, Device: "web", Mode: ModeFourState})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("Unknown type", func(t *testing.T) {
		_, err := Record(db, RecordOptions{UserID: user.ID, Type: models.RecordType("NAP"), Device: "web", Mode: ModeFourState})
		var violation *SequenceViolationError
		assert.ErrorAs(t, err, &violation)
	})
}

func TestKioskPunchAuditRow(t *testing.T) {
	t.Run("Four-state kiosk punch appends a SYSTEM row", func(t *testing.T) {
		db := openStore(t)
		user := seedEmployee(t, db, "EMP005")

		_, err := Record(db, RecordOptions{UserID: user.ID, Type: models.RecordEntry, Device: "kiosk-01", Mode: ModeFourState, Kiosk: true})
		require.NoError(t, err)

		var rows []models.KioskAuthLog
		require.NoError(t, db.Where("user_id = ? AND method = ?", user.ID, models.AuthMethodSystem).Find(&rows).Error)
		require.Len(t, rows, 1)
		assert.True(t, rows[0].Success)
		assert.Equal(t, "ENTRY", rows[0].Message)
	})

	t.Run("Two-state kiosk punch appends none", func(t *testing.T) {
		db := openStore(t)
		user := seedEmployee(t, db, "EMP006")

		_, err := Record(db, RecordOptions{UserID: user.ID, Type: models.RecordEntry, Device: "kiosk-01", Mode: ModeTwoState, Kiosk: true})
		require.NoError(t, err)

		var count int64
		require.NoError(t, db.Model(&models.KioskAuthLog{}).
			Where("user_id = ? AND method = ?", user.ID, models.AuthMethodSystem).
			Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("Web punch appends none", func(t *testing.T) {
		db := openStore(t)
		user := seedEmployee(t, db, "EMP007")

		_, err := Record(db, RecordOptions{UserID: user.ID, Type: models.RecordEntry, Device: "web", Mode: ModeFourState})
		require.NoError(t, err)

		var count int64
		require.NoError(t, db.Model(&models.KioskAuthLog{}).
			Where("user_id = ? AND method = ?", user.ID, models.AuthMethodSystem).
			Count(&count).Error)
		assert.Zero(t, count)
	})
}
