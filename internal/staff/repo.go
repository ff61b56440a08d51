package staff

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eldorado-books/bookstore-backend/pkg/db/models"
	"github.com/eldorado-books/bookstore-backend/pkg/enums"
	"github.com/eldorado-books/bookstore-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a staff repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, account *models.StaffAccount) (*models.StaffAccount, error) {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return nil, err
	}
	return account, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.StaffAccount, error) {
	var account models.StaffAccount
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) FindByUsername(ctx context.Context, username string) (*models.StaffAccount, error) {
	var account models.StaffAccount
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params) (*AccountList, error) {
	query := r.db.WithContext(ctx).Model(&models.StaffAccount{})

	cursor, err := pagination.Parse(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var accounts []models.StaffAccount
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}

	list := &AccountList{Accounts: accounts}
	if len(accounts) > limit {
		list.Accounts = accounts[:limit]
		last := list.Accounts[limit-1]
		list.NextCursor = pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}
	return list, nil
}

func (r *repository) Save(ctx context.Context, account *models.StaffAccount) error {
	return r.db.WithContext(ctx).Save(account).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.StaffAccount{}).Error
}

func (r *repository) CountActiveByRole(ctx context.Context, role enums.StaffRole) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.StaffAccount{}).
		Where("role = ? AND is_active = ?", role, true).
		Count(&count).Error
	return count, err
}

func (r *repository) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&models.StaffAccount{}).
		Where("id = ?", id).
		Update("last_login_at", now).Error
}
