package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
)

// Member is a gym customer. Status and ExpiryDate are written only through
// the membership ledger.
type Member struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	FirstName  string             `gorm:"column:first_name;not null"`
	LastName   string             `gorm:"column:last_name;not null"`
	Email      string             `gorm:"column:email;not null;uniqueIndex"`
	Phone      *string            `gorm:"column:phone"`
	Status     enums.MemberStatus `gorm:"column:status;type:varchar(32);not null;default:'pending';index"`
	ExpiryDate *time.Time         `gorm:"column:expiry_date;type:date;index"`
	PlanID     *uuid.UUID         `gorm:"column:plan_id;type:uuid"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *Member) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// FullName joins first and last name for display.
func (m Member) FullName() string {
	if m.LastName == "" {
		return m.FirstName
	}
	return m.FirstName + " " + m.LastName
}
