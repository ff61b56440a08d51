package auth

import "github.com/eldorado-books/bookstore-backend/internal/staff"

// LoginInput carries the credentials presented at the login endpoint.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshInput carries an expired (or expiring) access token plus the
// refresh token issued alongside it.
type RefreshInput struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Session is the token pair plus the authenticated account.
type Session struct {
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	Staff        staff.AccountView `json:"staff"`
}
