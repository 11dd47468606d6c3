package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
)

// MembershipPlan is a purchasable plan. Price is stored in cents.
type MembershipPlan struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Name         string             `gorm:"column:name;not null"`
	Description  *string            `gorm:"column:description"`
	Price        int64              `gorm:"column:price;not null"`
	Duration     int                `gorm:"column:duration;not null"`
	DurationType enums.DurationType `gorm:"column:duration_type;type:varchar(32);not null"`
	IsActive     bool               `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (MembershipPlan) TableName() string { return "membership_plans" }

func (p *MembershipPlan) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
