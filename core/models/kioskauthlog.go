package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthMethod string

const (
	AuthMethodPIN     AuthMethod = "PIN"
	AuthMethodBarcode AuthMethod = "BARCODE"
	AuthMethodSystem  AuthMethod = "SYSTEM"
)

// KioskAuthLog is an append-only audit row. UserID is null when the
// attempt failed before a user could be identified. Rows are never
// updated and are removed only when their user is deleted; the lockout
// policy counts recent failures here.
type KioskAuthLog struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`
	UserID    *string    `gorm:"size:36;index:idx_kiosk_auth_user_at" json:"userId"`
	Method    AuthMethod `gorm:"size:16" json:"method"`
	Success   bool       `json:"success"`
	IP        string     `gorm:"size:64" json:"ip"`
	UserAgent string     `gorm:"size:255" json:"userAgent"`
	Message   string     `gorm:"size:255" json:"message"`
	AttemptAt time.Time  `gorm:"index:idx_kiosk_auth_user_at" json:"attemptAt"`
}

func (l *KioskAuthLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.AttemptAt.IsZero() {
		l.AttemptAt = time.Now()
	}
	return nil
}
