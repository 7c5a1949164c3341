package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleEmployee Role = "EMPLOYEE"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

type User struct {
	ID           string  `gorm:"primaryKey;size:36" json:"id"`
	Name         string  `gorm:"size:191" json:"name"`
	Email        string  `gorm:"uniqueIndex;size:191" json:"email"`
	Password     string  `gorm:"size:191" json:"-"`
	Pin          *string `gorm:"size:191" json:"-"`
	Role         Role    `gorm:"size:16;default:EMPLOYEE" json:"role"`
	EmployeeID   string  `gorm:"uniqueIndex;size:64" json:"employeeId"`
	Barcode      string  `gorm:"uniqueIndex;size:64" json:"barcode"`
	DepartmentID *string `gorm:"size:36;index" json:"departmentId"`
	ManagerID    *string `gorm:"size:36;index" json:"managerId"`

	Department   *Department   `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	WorkSchedule *WorkSchedule `gorm:"foreignKey:UserID" json:"workSchedule,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func FindUserByID(db *gorm.DB, id string) (*User, error) {
	var user User
	err := db.Preload("Department").First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByEmail(db *gorm.DB, email string) (*User, error) {
	var user User
	err := db.First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByBarcode(db *gorm.DB, barcode string) (*User, error) {
	var user User
	err := db.Preload("Department").First(&user, "barcode = ?", barcode).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
