package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RecordType string

const (
	RecordEntry  RecordType = "ENTRY"
	RecordPause  RecordType = "PAUSE"
	RecordReturn RecordType = "RETURN"
	RecordExit   RecordType = "EXIT"
)

func (t RecordType) Valid() bool {
	switch t {
	case RecordEntry, RecordPause, RecordReturn, RecordExit:
		return true
	}
	return false
}

// Location is the optional geolocation captured with a punch,
// stored as a JSON column.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type TimeRecord struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	UserID    string         `gorm:"size:36;index:idx_time_records_user_ts" json:"userId"`
	Type      RecordType     `gorm:"size:16" json:"type"`
	Timestamp time.Time      `gorm:"index:idx_time_records_user_ts" json:"timestamp"`
	Location  datatypes.JSON `json:"location,omitempty"`
	Device    string         `gorm:"size:64" json:"device"`

	User       User               `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Correction *CorrectionRequest `gorm:"foreignKey:TimeRecordID" json:"correction,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

func (r *TimeRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
