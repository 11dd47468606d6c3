package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
)

// Payment records money received for a plan. Amount is stored in cents.
type Payment struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	MemberID      uuid.UUID           `gorm:"column:member_id;type:uuid;not null;index"`
	PlanID        uuid.UUID           `gorm:"column:plan_id;type:uuid;not null"`
	Amount        int64               `gorm:"column:amount;not null"`
	PaymentMethod string              `gorm:"column:payment_method;not null"`
	PaymentDate   time.Time           `gorm:"column:payment_date;not null"`
	Status        enums.PaymentStatus `gorm:"column:status;type:varchar(32);not null;default:'pending';index"`
	ReceiptURL    *string             `gorm:"column:receipt_url;type:varchar(500)"`
	Notes         *string             `gorm:"column:notes"`
	VerifiedByID  *uuid.UUID          `gorm:"column:verified_by_id;type:uuid"`
	VerifiedAt    *time.Time          `gorm:"column:verified_at"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Payment) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
