package correction

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rodrigoinhaia/DiinPonto/core/models"
	"github.com/rodrigoinhaia/DiinPonto/utils"
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

// fixture builds a department managed by a manager, an employee inside
// it, an outsider and an admin, plus one punch for the employee.
type fixture struct {
	employee *models.User
	manager  *models.User
	outsider *models.User
	admin    *models.User
	punch    *models.TimeRecord
}

func seedFixture(t *testing.T, db *gorm.DB) fixture {
	t.Helper()

	newUser := func(employeeID string, role models.Role) *models.User {
		u := models.User{
			Name:       "User " + employeeID,
			Email:      employeeID + "@diinponto.com",
			EmployeeID: employeeID,
			Barcode:    "B-" + employeeID,
			Role:       role,
		}
		require.NoError(t, db.Create(&u).Error)
		return &u
	}

	manager := newUser("MGR001", models.RoleManager)
	dept := models.Department{Name: "Operations", ManagerID: &manager.ID}
	require.NoError(t, db.Create(&dept).Error)

	employee := newUser("EMP001", models.RoleEmployee)
	require.NoError(t, db.Model(employee).Update("department_id", dept.ID).Error)
	employee.DepartmentID = &dept.ID

	punch := models.TimeRecord{
		UserID:    employee.ID,
		Type:      models.RecordEntry,
		Timestamp: time.Date(2024, 3, 4, 8, 30, 0, 0, time.UTC),
		Device:    "kiosk-01",
	}
	require.NoError(t, db.Create(&punch).Error)

	return fixture{
		employee: employee,
		manager:  manager,
		outsider: newUser("EMP002", models.RoleEmployee),
		admin:    newUser("ADM001", models.RoleAdmin),
		punch:    &punch,
	}
}

func TestRequestPendingUniqueness(t *testing.T) {
	db := openStore(t)
	f := seedFixture(t, db)

	first, err := Request(db, RequestOptions{
		RequesterID:  f.employee.ID,
		TimeRecordID: f.punch.ID,
		Reason:       "esqueci de registrar a saida",
	})
	require.NoError(t, err)
	assert.Equal(t, models.CorrectionPending, first.Status)

	_, err = Request(db, RequestOptions{
		RequesterID:  f.employee.ID,
		TimeRecordID: f.punch.ID,
		Reason:       "tentando registrar de novo",
	})
	assert.ErrorIs(t, err, ErrDuplicatePending)
}

func TestEmployeeRequestLeavesPunchUntouched(t *testing.T) {
	db := openStore(t)
	f := seedFixture(t, db)
	proposed := f.punch.Timestamp.Add(30 * time.Minute)

	request, err := Request(db, RequestOptions{
		RequesterID:  f.employee.ID,
		TimeRecordID: f.punch.ID,
		Reason:       "relogio do quiosque atrasado",
		NewTimestamp: &proposed,
	})
	require.NoError(t, err)
	assert.Equal(t, models.CorrectionPending, request.Status)
	assert.Nil(t, request.ApprovedByID)

	var punch models.TimeRecord
	require.NoError(t, db.First(&punch, "id = ?", f.punch.ID).Error)
	assert.True(t, punch.Timestamp.Equal(f.punch.Timestamp), "a pending request must not touch the punch")
}

func TestManagerRequestAutoApproved(t *testing.T) {
	db := openStore(t)
	f := seedFixture(t, db)
	proposed := f.punch.Timestamp.Add(time.Hour)

	request, err := Request(db, RequestOptions{
		RequesterID:  f.manager.ID,
		TimeRecordID: f.punch.ID,
		Reason:       "ajuste autorizado pela gerencia",
		NewTimestamp: &proposed,
	})
	require.NoError(t, err)
	assert.Equal(t, models.CorrectionApproved, request.Status)
	require.NotNil(t, request.ApprovedByID)
	assert.Equal(t, f.manager.ID, *request.ApprovedByID)

	var pending int64
	require.NoError(t, db.Model(&models.CorrectionRequest{}).
		Where("time_record_id = ? AND status = ?", f.punch.ID, models.CorrectionPending).
		Count(&pending).Error)
	assert.Zero(t, pending)

	var punch models.TimeRecord
	require.NoError(t, db.First(&punch, "id = ?", f.punch.ID).Error)
	assert.True(t, punch.Timestamp.Equal(proposed), "approval and rewrite commit together")
}

func TestDecideApproveRewritesPunch(t *testing.T) {
	db := openStore(t)
	f := seedFixture(t, db)
	proposed := f.punch.Timestamp.Add(45 * time.Minute)

	request, err := Request(db, RequestOptions{
		RequesterID:  f.employee.ID,
		TimeRecordID: f.punch.ID,
		Reason:       "horario registrado errado",
		NewTimestamp: &proposed,
	})
	require.NoError(t, err)

	decided, err := Decide(db, request.ID, f.manager.ID, models.CorrectionApproved, nil)
	require.NoError(t, err)
	assert.Equal(t, models.CorrectionApproved, decided.Status)
	require.NotNil(t, decided.ApprovedByID)
	assert.Equal(t, f.manager.ID, *decided.ApprovedByID)

	var punch models.TimeRecord
	require.NoError(t, db.First(&punch, "id = ?", f.punch.ID).Error)
	assert.True(t, punch.Timestamp.Equal(proposed))

	_, err = Decide(db, request.ID, f.manager.ID, models.CorrectionRejected, nil)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestDecideRejectAppendsNote(t *testing.T) {
	db := openStore(t)
	f := seedFixture(t, db)

	request, err := Request(db, RequestOptions{
		RequesterID:  f.employee.ID,
		TimeRecordID: f.punch.ID,
		Reason:       "horario registrado errado",
	})
	require.NoError(t, err)

	decided, err := Decide(db, request.ID, f.manager.ID, models.CorrectionRejected, utils.Ptr("sem comprovante"))
	require.NoError(t, err)
	assert.Equal(t, models.CorrectionRejected, decided.Status)
	assert.Contains(t, decided.Reason, "horario registrado errado")
	assert.Contains(t, decided.Reason, "[rejected] sem comprovante")
}

func TestDecideOutsideDepartmentForbidden(t *testing.T) {
	db := openStore(t)
	f := seedFixture(t, db)

	other := models.User{
		Name:       "Other Manager",
		Email:      "mgr2@diinponto.com",
		EmployeeID: "MGR002",
		Barcode:    "B-MGR002",
		Role:       models.RoleManager,
	}
	require.NoError(t, db.Create(&other).Error)

	request, err := Request(db, RequestOptions{
		RequesterID:  f.employee.ID,
		TimeRecordID: f.punch.ID,
		Reason:       "horario registrado errado",
	})
	require.NoError(t, err)

	_, err = Decide(db, request.ID, other.ID, models.CorrectionApproved, nil)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestFindForScoping(t *testing.T) {
	db := openStore(t)
	f := seedFixture(t, db)

	request, err := Request(db, RequestOptions{
		RequesterID:  f.employee.ID,
		TimeRecordID: f.punch.ID,
		Reason:       "horario registrado errado",
	})
	require.NoError(t, err)

	t.Run("Requester sees it", func(t *testing.T) {
		got, err := FindFor(db, f.employee.ID, request.ID)
		require.NoError(t, err)
		assert.Equal(t, request.ID, got.ID)
	})

	t.Run("Department manager sees it", func(t *testing.T) {
		_, err := FindFor(db, f.manager.ID, request.ID)
		assert.NoError(t, err)
	})

	t.Run("Admin sees it", func(t *testing.T) {
		_, err := FindFor(db, f.admin.ID, request.ID)
		assert.NoError(t, err)
	})

	t.Run("Unrelated employee is refused", func(t *testing.T) {
		_, err := FindFor(db, f.outsider.ID, request.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}
