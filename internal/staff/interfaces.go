package staff

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eldorado-books/bookstore-backend/pkg/db/models"
	"github.com/eldorado-books/bookstore-backend/pkg/enums"
	"github.com/eldorado-books/bookstore-backend/pkg/pagination"
)

// Repository defines persistence operations for staff accounts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, account *models.StaffAccount) (*models.StaffAccount, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.StaffAccount, error)
	FindByUsername(ctx context.Context, username string) (*models.StaffAccount, error)
	List(ctx context.Context, params pagination.Params) (*AccountList, error)
	Save(ctx context.Context, account *models.StaffAccount) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountActiveByRole(ctx context.Context, role enums.StaffRole) (int64, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
}
