package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CorrectionStatus string

const (
	CorrectionPending  CorrectionStatus = "PENDING"
	CorrectionApproved CorrectionStatus = "APPROVED"
	CorrectionRejected CorrectionStatus = "REJECTED"
)

func (s CorrectionStatus) Valid() bool {
	switch s {
	case CorrectionPending, CorrectionApproved, CorrectionRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed.
func (s CorrectionStatus) Terminal() bool {
	return s == CorrectionApproved || s == CorrectionRejected
}

type CorrectionRequest struct {
	ID            string           `gorm:"primaryKey;size:36" json:"id"`
	TimeRecordID  string           `gorm:"size:36;index" json:"timeRecordId"`
	RequestedByID string           `gorm:"size:36;index" json:"requestedById"`
	ApprovedByID  *string          `gorm:"size:36" json:"approvedById"`
	Reason        string           `gorm:"type:text" json:"reason"`
	Evidence      *string          `gorm:"type:longtext" json:"evidence,omitempty"`
	NewTimestamp  *time.Time       `json:"newTimestamp"`
	Status        CorrectionStatus `gorm:"size:16;default:PENDING" json:"status"`

	TimeRecord  TimeRecord `gorm:"foreignKey:TimeRecordID" json:"timeRecord,omitempty"`
	RequestedBy User       `gorm:"foreignKey:RequestedByID" json:"requestedBy,omitempty"`
	ApprovedBy  *User      `gorm:"foreignKey:ApprovedByID" json:"approvedBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *CorrectionRequest) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
