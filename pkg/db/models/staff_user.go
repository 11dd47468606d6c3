package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
)

// StaffUser is an operator of the admin API.
type StaffUser struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Email        string          `gorm:"column:email;not null;uniqueIndex"`
	Name         string          `gorm:"column:name;not null"`
	Role         enums.StaffRole `gorm:"column:role;type:varchar(16);not null;default:'staff'"`
	PasswordHash string          `gorm:"column:password_hash;not null"`
	IsActive     bool            `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time      `gorm:"column:last_login_at"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (StaffUser) TableName() string { return "staff_users" }

func (u *StaffUser) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
