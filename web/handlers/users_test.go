package handlers

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

func TestDeleteUserCascade(t *testing.T) {
	db := openStore(t)

	user := models.User{
		Name:       "Maria Silva",
		Email:      "maria@diinponto.com",
		EmployeeID: "EMP042",
		Barcode:    "B-EMP042",
	}
	require.NoError(t, db.Create(&user).Error)

	schedule := models.WorkSchedule{
		UserID:     user.ID,
		StartTime:  "08:00",
		EndTime:    "17:00",
		DaysOfWeek: []byte("[1,2,3,4,5]"),
	}
	require.NoError(t, db.Create(&schedule).Error)

	audit := models.KioskAuthLog{UserID: &user.ID, Method: models.AuthMethodPIN, Success: true}
	require.NoError(t, db.Create(&audit).Error)

	subordinate := models.User{
		Name:       "Joao Souza",
		Email:      "joao@diinponto.com",
		EmployeeID: "EMP043",
		Barcode:    "B-EMP043",
		ManagerID:  &user.ID,
	}
	require.NoError(t, db.Create(&subordinate).Error)

	removed, err := deleteUserCascade(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	var schedules, audits, users int64
	require.NoError(t, db.Model(&models.WorkSchedule{}).Where("user_id = ?", user.ID).Count(&schedules).Error)
	require.NoError(t, db.Model(&models.KioskAuthLog{}).Where("user_id = ?", user.ID).Count(&audits).Error)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Count(&users).Error)
	assert.Zero(t, schedules, "the schedule goes with its user")
	assert.Zero(t, audits, "audit rows go with their user")
	assert.Zero(t, users)

	var kept models.User
	require.NoError(t, db.First(&kept, "id = ?", subordinate.ID).Error)
	assert.Nil(t, kept.ManagerID, "subordinates are detached, not removed")
}

func TestDeleteUserCascadeMissingUser(t *testing.T) {
	db := openStore(t)

	removed, err := deleteUserCascade(db, "no-such-id")
	require.NoError(t, err)
	assert.Zero(t, removed)
}
