package auth

import (
	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.StaffRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to staff clients.
type AccessTokenClaims struct {
	UserID uuid.UUID       `json:"user_id"`
	Role   enums.StaffRole `json:"role"`
	jwt.RegisteredClaims
}
