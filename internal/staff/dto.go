package staff

import (
	"time"

	"github.com/google/uuid"

	"github.com/eldorado-books/bookstore-backend/pkg/db/models"
	"github.com/eldorado-books/bookstore-backend/pkg/enums"
)

// AccountList is one page of staff accounts plus the cursor for the next page.
type AccountList struct {
	Accounts   []models.StaffAccount `json:"accounts"`
	NextCursor string                `json:"next_cursor,omitempty"`
}

// CreateAccountInput carries the fields required to provision an account.
type CreateAccountInput struct {
	Username string
	Password string
	FullName string
	Role     enums.StaffRole
}

// UpdateAccountInput carries a partial update. Nil fields are left untouched.
type UpdateAccountInput struct {
	FullName *string
	Role     *enums.StaffRole
	Password *string
	IsActive *bool
}

// AccountView is the safe projection returned by the API. Password hashes
// never leave the service.
type AccountView struct {
	ID          uuid.UUID       `json:"id"`
	Username    string          `json:"username"`
	FullName    string          `json:"full_name"`
	Role        enums.StaffRole `json:"role"`
	IsActive    bool            `json:"is_active"`
	LastLoginAt *time.Time      `json:"last_login_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ViewOf projects a staff model into its API shape.
func ViewOf(account *models.StaffAccount) AccountView {
	return AccountView{
		ID:          account.ID,
		Username:    account.Username,
		FullName:    account.FullName,
		Role:        account.Role,
		IsActive:    account.IsActive,
		LastLoginAt: account.LastLoginAt,
		CreatedAt:   account.CreatedAt,
	}
}
