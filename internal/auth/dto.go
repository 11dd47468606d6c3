package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/gymdesk-backend/pkg/db/models"
	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
)

// LoginRequest captures the staff credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest creates a staff account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=120"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=admin staff"`
}

// StaffDTO is the public view of a staff user.
type StaffDTO struct {
	ID          uuid.UUID       `json:"id"`
	Email       string          `json:"email"`
	Name        string          `json:"name"`
	Role        enums.StaffRole `json:"role"`
	LastLoginAt *time.Time      `json:"lastLoginAt,omitempty"`
}

// LoginResponse contains the access token and the authenticated user.
type LoginResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	User        StaffDTO  `json:"user"`
}

func FromModel(u *models.StaffUser) StaffDTO {
	return StaffDTO{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		LastLoginAt: u.LastLoginAt,
	}
}
