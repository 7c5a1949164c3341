package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WorkSchedule is one-to-one with a User. StartTime/EndTime and the
// break window are times of day ("08:00"); DaysOfWeek is the set of
// applicable weekdays (0=Sunday .. 6=Saturday) stored as JSON.
type WorkSchedule struct {
	ID         string         `gorm:"primaryKey;size:36" json:"id"`
	UserID     string         `gorm:"uniqueIndex;size:36" json:"userId"`
	StartTime  string         `gorm:"size:8" json:"startTime"`
	EndTime    string         `gorm:"size:8" json:"endTime"`
	BreakStart *string        `gorm:"size:8" json:"breakStart"`
	BreakEnd   *string        `gorm:"size:8" json:"breakEnd"`
	DaysOfWeek datatypes.JSON `json:"daysOfWeek"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *WorkSchedule) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Weekdays decodes the DaysOfWeek column.
func (s *WorkSchedule) Weekdays() []int {
	var days []int
	if len(s.DaysOfWeek) > 0 {
		_ = json.Unmarshal(s.DaysOfWeek, &days)
	}
	return days
}

// AppliesOn reports whether the schedule covers the given date's weekday.
func (s *WorkSchedule) AppliesOn(date time.Time) bool {
	day := int(date.Weekday())
	for _, d := range s.Weekdays() {
		if d == day {
			return true
		}
	}
	return false
}
