package kiosk

import (
	"errors"
	"log"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/rodrigoinhaia/DiinPonto/core/models"
)

var (
	ErrInvalidFormat      = errors.New("pin must be exactly 6 digits")
	ErrNotFound           = errors.New("no matching user")
	ErrTemporarilyBlocked = errors.New("account temporarily blocked, try again later")
)

var pinPattern = regexp.MustCompile(`^\d{6}$`)

const (
	DefaultMaxAttempts = 5
	DefaultWindow      = 5 * time.Minute

	// PINHashCost matches the cost the user seeds were created with.
	PINHashCost = 12
)

// Authenticator identifies users at a shared terminal. The lockout
// policy is plain configuration injected at construction; there is no
// process-wide state.
type Authenticator struct {
	MaxAttempts int
	Window      time.Duration
}

func NewAuthenticator() *Authenticator {
	return &Authenticator{MaxAttempts: DefaultMaxAttempts, Window: DefaultWindow}
}

// Attempt carries client metadata for the audit log.
type Attempt struct {
	IP        string
	UserAgent string
}

// ByBarcode resolves a user by exact badge match. Every attempt,
// successful or not, is appended to the audit log.
func (a *Authenticator) ByBarcode(db *gorm.DB, barcode string, meta Attempt) (*models.User, error) {
	user, err := models.FindUserByBarcode(db, barcode)
	if err != nil {
		return nil, err
	}
	if user == nil {
		a.logAttempt(db, nil, models.AuthMethodBarcode, false, meta, "badge not found")
		return nil, ErrNotFound
	}

	blocked, err := a.IsBlocked(db, user.ID)
	if err != nil {
		return nil, err
	}
	if blocked {
		a.logAttempt(db, &user.ID, models.AuthMethodBarcode, false, meta, "temporarily blocked")
		return nil, ErrTemporarilyBlocked
	}

	a.logAttempt(db, &user.ID, models.AuthMethodBarcode, true, meta, "")
	return user, nil
}

// ByPIN resolves a user from a 6-digit PIN. PINs are stored hashed, so
// the scan compares the candidate against every PIN-bearing user in
// store order; O(n) bcrypt work, acceptable for small deployments.
// Blocked candidates are skipped before any hash comparison, and a scan
// that skipped one ends in ErrTemporarilyBlocked rather than
// ErrNotFound so a locked-out user never gets their hash compared.
// A failed scan writes one failure row per candidate whose hash was
// compared; those rows are what IsBlocked counts, so repeated wrong
// guesses at the terminal lock the compared accounts out.
func (a *Authenticator) ByPIN(db *gorm.DB, pin string, meta Attempt) (*models.User, error) {
	if !pinPattern.MatchString(pin) {
		return nil, ErrInvalidFormat
	}

	var candidates []models.User
	if err := db.Preload("Department").Where("pin IS NOT NULL").Find(&candidates).Error; err != nil {
		return nil, err
	}

	user, compared, skippedBlocked, err := a.matchPIN(candidates, pin, func(id string) (bool, error) {
		return a.IsBlocked(db, id)
	})
	if err != nil {
		return nil, err
	}
	if user == nil {
		if skippedBlocked {
			a.logAttempt(db, nil, models.AuthMethodPIN, false, meta, "temporarily blocked")
			return nil, ErrTemporarilyBlocked
		}
		if len(compared) == 0 {
			a.logAttempt(db, nil, models.AuthMethodPIN, false, meta, "pin matched no user")
		}
		for i := range compared {
			a.logAttempt(db, &compared[i], models.AuthMethodPIN, false, meta, "pin matched no user")
		}
		return nil, ErrNotFound
	}

	a.logAttempt(db, &user.ID, models.AuthMethodPIN, true, meta, "")
	return user, nil
}

// matchPIN returns the matching user plus the ids of every candidate
// whose hash was actually compared, so the caller can attribute a
// failed attempt to them.
func (a *Authenticator) matchPIN(candidates []models.User, pin string, blocked func(id string) (bool, error)) (*models.User, []string, bool, error) {
	var compared []string
	skippedBlocked := false
	for i := range candidates {
		u := &candidates[i]
		if u.Pin == nil {
			continue
		}
		isBlocked, err := blocked(u.ID)
		if err != nil {
			return nil, compared, false, err
		}
		if isBlocked {
			skippedBlocked = true
			continue
		}
		compared = append(compared, u.ID)
		if bcrypt.CompareHashAndPassword([]byte(*u.Pin), []byte(pin)) == nil {
			return u, compared, skippedBlocked, nil
		}
	}
	return nil, compared, skippedBlocked, nil
}

// IsBlocked reports whether the user has accumulated MaxAttempts failed
// attempts inside the trailing Window.
func (a *Authenticator) IsBlocked(db *gorm.DB, userID string) (bool, error) {
	since := time.Now().Add(-a.Window)
	var logs []models.KioskAuthLog
	err := db.Where("user_id = ? AND attempt_at >= ?", userID, since).
		Order("attempt_at desc").
		Find(&logs).Error
	if err != nil {
		return false, err
	}
	return countFailures(logs) >= a.MaxAttempts, nil
}

func countFailures(logs []models.KioskAuthLog) int {
	failures := 0
	for _, l := range logs {
		if !l.Success && l.Method != models.AuthMethodSystem {
			failures++
		}
	}
	return failures
}

// logAttempt appends an audit row. Best effort: audit failures must not
// abort the authentication call.
func (a *Authenticator) logAttempt(db *gorm.DB, userID *string, method models.AuthMethod, success bool, meta Attempt, message string) {
	entry := models.KioskAuthLog{
		UserID:    userID,
		Method:    method,
		Success:   success,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Message:   message,
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("[WARN] failed to append kiosk auth log: %v", err)
	}
}

// HashPIN hashes a 6-digit PIN for storage.
func HashPIN(pin string) (string, error) {
	if !pinPattern.MatchString(pin) {
		return "", ErrInvalidFormat
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), PINHashCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
