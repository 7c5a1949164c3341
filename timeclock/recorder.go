package timeclock

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/rodrigoinhaia/DiinPonto/core/models"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrRecordNotFound = errors.New("time record not found")
)

type RecordOptions struct {
	UserID   string
	Type     models.RecordType
	Location *models.Location
	Device   string
	Mode     Mode
	// Kiosk punches in four-state mode append a SYSTEM audit row after
	// the record commits.
	Kiosk bool
}

// Record validates the punch against the active mode and persists it,
// stamped with the server's current time. The last-punch read and the
// insert run inside one transaction guarded by a per-user advisory
// lock, so two concurrent punches for the same user cannot both pass
// validation.
func Record(db *gorm.DB, opts RecordOptions) (*models.TimeRecord, error) {
	if opts.Device == "" {
		return nil, errors.New("device is required")
	}
	if !opts.Type.Valid() {
		return nil, &SequenceViolationError{Transition: "unknown type " + string(opts.Type)}
	}

	user, err := models.FindUserByID(db, opts.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	record := &models.TimeRecord{
		UserID: opts.UserID,
		Type:   opts.Type,
		Device: opts.Device,
	}
	if opts.Location != nil {
		raw, err := json.Marshal(opts.Location)
		if err != nil {
			return nil, fmt.Errorf("failed to encode location: %w", err)
		}
		record.Location = raw
	}

	// Pin one connection so GET_LOCK and RELEASE_LOCK hit the same
	// session and the lock outlives the transaction commit.
	err = db.Connection(func(conn *gorm.DB) error {
		release, err := acquirePunchLock(conn, opts.UserID)
		if err != nil {
			return err
		}
		defer release()

		return conn.Transaction(func(tx *gorm.DB) error {
			last, err := lastRecordForMode(tx, opts.UserID, opts.Mode)
			if err != nil {
				return err
			}
			if err := ValidateTransition(opts.Mode, last, opts.Type); err != nil {
				return err
			}
			record.Timestamp = time.Now()
			return tx.Create(record).Error
		})
	})
	if err != nil {
		return nil, err
	}

	if opts.Kiosk && opts.Mode == ModeFourState {
		appendSystemAudit(db, opts.UserID, record.Type)
	}

	record.User = *user
	return record, nil
}

// acquirePunchLock serializes punches per user with a MySQL advisory
// lock held across the whole transaction. Other dialects have no
// advisory locks; there the transaction runs alone.
func acquirePunchLock(conn *gorm.DB, userID string) (func(), error) {
	if conn.Dialector.Name() != "mysql" {
		return func() {}, nil
	}
	lockName := "punch:" + userID
	var got int
	if err := conn.Raw("SELECT GET_LOCK(?, 5)", lockName).Scan(&got).Error; err != nil {
		return nil, fmt.Errorf("failed to acquire punch lock: %w", err)
	}
	if got != 1 {
		return nil, fmt.Errorf("timed out waiting for punch lock for user %s", userID)
	}
	return func() { conn.Exec("SELECT RELEASE_LOCK(?)", lockName) }, nil
}

// LastRecord returns the user's most recent punch of the current day,
// or nil when none exists.
func LastRecord(db *gorm.DB, userID string) (*models.TimeRecord, error) {
	return lastRecordSince(db, userID, startOfDay(time.Now()))
}

// LatestRecord returns the user's most recent punch regardless of date,
// or nil when none exists.
func LatestRecord(db *gorm.DB, userID string) (*models.TimeRecord, error) {
	return lastRecordSince(db, userID, time.Time{})
}

// TodayRecords returns the user's punches of the current day, oldest first.
func TodayRecords(db *gorm.DB, userID string) ([]models.TimeRecord, error) {
	var records []models.TimeRecord
	err := db.Where("user_id = ? AND timestamp >= ?", userID, startOfDay(time.Now())).
		Order("timestamp asc").
		Find(&records).Error
	return records, err
}

// NextTypeFor derives the kiosk auto-toggle type for the user.
func NextTypeFor(db *gorm.DB, userID string, mode Mode) (models.RecordType, error) {
	last, err := lastRecordForMode(db, userID, mode)
	if err != nil {
		return "", err
	}
	return NextType(mode, last), nil
}

func lastRecordForMode(db *gorm.DB, userID string, mode Mode) (*models.TimeRecord, error) {
	// The two-state duplicate rule is scoped to the calendar day; the
	// four-state cycle tracks the open entry regardless of date.
	if mode == ModeTwoState {
		return lastRecordSince(db, userID, startOfDay(time.Now()))
	}
	return lastRecordSince(db, userID, time.Time{})
}

func lastRecordSince(db *gorm.DB, userID string, since time.Time) (*models.TimeRecord, error) {
	var record models.TimeRecord
	q := db.Where("user_id = ?", userID)
	if !since.IsZero() {
		q = q.Where("timestamp >= ?", since)
	}
	err := q.Order("timestamp desc").First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// appendSystemAudit records the kiosk punch in the auth log. Best
// effort: a failure is logged and never fails the committed punch.
func appendSystemAudit(db *gorm.DB, userID string, punchType models.RecordType) {
	entry := models.KioskAuthLog{
		UserID:  &userID,
		Method:  models.AuthMethodSystem,
		Success: true,
		Message: string(punchType),
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("[WARN] failed to append kiosk audit row for user %s: %v", userID, err)
	}
}
