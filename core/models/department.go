package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Department struct {
	ID        string  `gorm:"primaryKey;size:36" json:"id"`
	Name      string  `gorm:"uniqueIndex;size:191" json:"name"`
	ManagerID *string `gorm:"size:36" json:"managerId"`

	Manager *User  `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	Users   []User `gorm:"foreignKey:DepartmentID" json:"users,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (d *Department) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
