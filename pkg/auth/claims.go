package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/eldorado-books/bookstore-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	StaffID  uuid.UUID
	Username string
	FullName string
	Role     enums.StaffRole
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to staff clients.
type AccessTokenClaims struct {
	StaffID  uuid.UUID       `json:"staff_id"`
	Username string          `json:"username"`
	FullName string          `json:"full_name"`
	Role     enums.StaffRole `json:"role"`
	jwt.RegisteredClaims
}
