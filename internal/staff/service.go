package staff

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eldorado-books/bookstore-backend/pkg/config"
	"github.com/eldorado-books/bookstore-backend/pkg/db"
	"github.com/eldorado-books/bookstore-backend/pkg/db/models"
	"github.com/eldorado-books/bookstore-backend/pkg/enums"
	pkgerrors "github.com/eldorado-books/bookstore-backend/pkg/errors"
	"github.com/eldorado-books/bookstore-backend/pkg/pagination"
	"github.com/eldorado-books/bookstore-backend/pkg/security"
)

const (
	minPasswordLength  = 8
	tempPasswordLength = 12
)

// Service defines staff account management. Route-level permission checks
// keep these operations Manager-only.
type Service interface {
	Create(ctx context.Context, input CreateAccountInput) (*models.StaffAccount, error)
	Get(ctx context.Context, id uuid.UUID) (*models.StaffAccount, error)
	List(ctx context.Context, params pagination.Params) (*AccountList, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateAccountInput) (*models.StaffAccount, error)
	Delete(ctx context.Context, actorID, id uuid.UUID) error
	ResetPassword(ctx context.Context, id uuid.UUID) (string, error)
}

type service struct {
	repo        Repository
	passwordCfg config.PasswordConfig
}

// NewService builds the staff service.
func NewService(repo Repository, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("staff repository required")
	}
	return &service{repo: repo, passwordCfg: passwordCfg}, nil
}

func (s *service) Create(ctx context.Context, input CreateAccountInput) (*models.StaffAccount, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username required")
	}
	if strings.TrimSpace(input.FullName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name required")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid staff role")
	}
	if len(input.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	account := &models.StaffAccount{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(input.FullName),
		Role:         input.Role,
		IsActive:     true,
	}

	if _, err := s.repo.Create(ctx, account); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create staff account")
	}
	return account, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.StaffAccount, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "staff id required")
	}
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "staff account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load staff account")
	}
	return account, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*AccountList, error) {
	list, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list staff accounts")
	}
	return list, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateAccountInput) (*models.StaffAccount, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "staff id required")
	}
	if input.Role != nil && !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid staff role")
	}
	if input.Password != nil && len(*input.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "staff account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load staff account")
	}

	demotion := input.Role != nil && account.Role == enums.StaffRoleManager && *input.Role != enums.StaffRoleManager
	deactivation := input.IsActive != nil && !*input.IsActive && account.IsActive
	if (demotion || deactivation) && account.Role == enums.StaffRoleManager && account.IsActive {
		managers, err := s.repo.CountActiveByRole(ctx, enums.StaffRoleManager)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count managers")
		}
		if managers <= 1 {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot remove the last active manager")
		}
	}

	if input.FullName != nil {
		if strings.TrimSpace(*input.FullName) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name cannot be blank")
		}
		account.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Role != nil {
		account.Role = *input.Role
	}
	if input.IsActive != nil {
		account.IsActive = *input.IsActive
	}
	if input.Password != nil {
		hash, err := security.HashPassword(*input.Password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		account.PasswordHash = hash
	}

	if err := s.repo.Save(ctx, account); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update staff account")
	}
	return account, nil
}

func (s *service) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "staff id required")
	}
	if actorID == id {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot delete your own account")
	}

	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "staff account not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load staff account")
	}

	// inactive managers do not count toward the active pool, so deleting one
	// cannot strand the store without a manager
	if account.Role == enums.StaffRoleManager && account.IsActive {
		managers, err := s.repo.CountActiveByRole(ctx, enums.StaffRoleManager)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count managers")
		}
		if managers <= 1 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot remove the last active manager")
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete staff account")
	}
	return nil
}

// ResetPassword replaces the account's credential with a random temporary
// password and returns it once, in the clear. Only the hash is stored.
func (s *service) ResetPassword(ctx context.Context, id uuid.UUID) (string, error) {
	if id == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "staff id required")
	}

	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "staff account not found")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load staff account")
	}

	temp, err := security.GenerateTempPassword(tempPasswordLength)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temporary password")
	}
	hash, err := security.HashPassword(temp, s.passwordCfg)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	account.PasswordHash = hash
	if err := s.repo.Save(ctx, account); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset staff password")
	}
	return temp, nil
}
