package controllers

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/gymdesk-backend/internal/payments"
	"github.com/angelmondragon/gymdesk-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gymdesk-backend/pkg/errors"
	"github.com/angelmondragon/gymdesk-backend/pkg/money"
)

const dateLayout = "2006-01-02"

type MemberView struct {
	ID         uuid.UUID  `json:"id"`
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Email      string     `json:"email"`
	Phone      *string    `json:"phone,omitempty"`
	Status     string     `json:"status"`
	ExpiryDate *string    `json:"expiryDate"`
	PlanID     *uuid.UUID `json:"planId"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func memberView(m models.Member) MemberView {
	return MemberView{
		ID:         m.ID,
		FirstName:  m.FirstName,
		LastName:   m.LastName,
		Email:      m.Email,
		Phone:      m.Phone,
		Status:     string(m.Status),
		ExpiryDate: formatDate(m.ExpiryDate),
		PlanID:     m.PlanID,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

type PlanView struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	Price        int64     `json:"price"`
	PriceDisplay string    `json:"price_display"`
	Duration     int       `json:"duration"`
	DurationType string    `json:"durationType"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

func planView(p models.MembershipPlan) PlanView {
	return PlanView{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		PriceDisplay: money.Format(p.Price),
		Duration:     p.Duration,
		DurationType: string(p.DurationType),
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
	}
}

type PaymentView struct {
	ID            uuid.UUID  `json:"id"`
	MemberID      uuid.UUID  `json:"memberId"`
	MemberName    string     `json:"memberName,omitempty"`
	PlanID        uuid.UUID  `json:"planId"`
	PlanName      string     `json:"planName,omitempty"`
	Amount        int64      `json:"amount"`
	AmountDisplay string     `json:"amount_display"`
	PaymentMethod string     `json:"paymentMethod"`
	PaymentDate   time.Time  `json:"paymentDate"`
	Status        string     `json:"status"`
	ReceiptURL    *string    `json:"receiptUrl,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	VerifiedByID  *uuid.UUID `json:"verifiedById,omitempty"`
	VerifiedAt    *time.Time `json:"verifiedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func paymentView(p models.Payment) PaymentView {
	return PaymentView{
		ID:            p.ID,
		MemberID:      p.MemberID,
		PlanID:        p.PlanID,
		Amount:        p.Amount,
		AmountDisplay: money.Format(p.Amount),
		PaymentMethod: p.PaymentMethod,
		PaymentDate:   p.PaymentDate,
		Status:        string(p.Status),
		ReceiptURL:    p.ReceiptURL,
		Notes:         p.Notes,
		VerifiedByID:  p.VerifiedByID,
		VerifiedAt:    p.VerifiedAt,
		CreatedAt:     p.CreatedAt,
	}
}

func paymentListView(p payments.PaymentView) PaymentView {
	view := paymentView(p.Payment)
	view.MemberName = p.MemberName
	view.PlanName = p.PlanName
	return view
}

type ActivityView struct {
	ID          uuid.UUID  `json:"id"`
	Type        string     `json:"activityType"`
	Description string     `json:"description"`
	MemberID    *uuid.UUID `json:"memberId,omitempty"`
	UserID      *uuid.UUID `json:"userId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func activityView(a models.Activity) ActivityView {
	return ActivityView{
		ID:          a.ID,
		Type:        string(a.ActivityType),
		Description: a.Description,
		MemberID:    a.MemberID,
		UserID:      a.UserID,
		CreatedAt:   a.CreatedAt,
	}
}

func mapSlice[T, V any](items []T, fn func(T) V) []V {
	out := make([]V, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(dateLayout)
	return &s
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(field string, raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	if t, err := time.Parse(dateLayout, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s must be YYYY-MM-DD or RFC 3339", field)
	}
	t = t.UTC()
	return &t, nil
}

// optionalUUID maps blank strings to uuid.Nil so the service can report them as missing.
func optionalUUID(field, raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s must be a uuid", field)
	}
	return id, nil
}

func optionalUUIDPtr(field string, raw *string) (*uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := optionalUUID(field, *raw)
	if err != nil || id == uuid.Nil {
		return nil, err
	}
	return &id, nil
}
