package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
)

// Activity is an append-only audit entry. The delivery columns track
// forwarding to an external broker.
type Activity struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	ActivityType enums.ActivityType `gorm:"column:activity_type;type:varchar(64);not null;index"`
	Description  string             `gorm:"column:description;not null"`
	MemberID     *uuid.UUID         `gorm:"column:member_id;type:uuid;index"`
	UserID       *uuid.UUID         `gorm:"column:user_id;type:uuid"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime;index"`
	PublishedAt  *time.Time         `gorm:"column:published_at;index"`
	AttemptCount int                `gorm:"column:attempt_count;not null;default:0"`
	LastError    *string            `gorm:"column:last_error"`
}

func (a *Activity) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
