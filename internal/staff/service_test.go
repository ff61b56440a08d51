package staff

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eldorado-books/bookstore-backend/pkg/config"
	"github.com/eldorado-books/bookstore-backend/pkg/db/models"
	"github.com/eldorado-books/bookstore-backend/pkg/enums"
	pkgerrors "github.com/eldorado-books/bookstore-backend/pkg/errors"
	"github.com/eldorado-books/bookstore-backend/pkg/pagination"
	"github.com/eldorado-books/bookstore-backend/pkg/security"
)

type stubStaffRepo struct {
	accounts  map[uuid.UUID]*models.StaffAccount
	createErr error
}

func newStubStaffRepo(accounts ...*models.StaffAccount) *stubStaffRepo {
	repo := &stubStaffRepo{accounts: map[uuid.UUID]*models.StaffAccount{}}
	for _, account := range accounts {
		repo.accounts[account.ID] = account
	}
	return repo
}

func (s *stubStaffRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubStaffRepo) Create(ctx context.Context, account *models.StaffAccount) (*models.StaffAccount, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.accounts[account.ID] = account
	return account, nil
}

func (s *stubStaffRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.StaffAccount, error) {
	account, ok := s.accounts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *account
	return &copied, nil
}

func (s *stubStaffRepo) FindByUsername(ctx context.Context, username string) (*models.StaffAccount, error) {
	for _, account := range s.accounts {
		if account.Username == username {
			copied := *account
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubStaffRepo) List(ctx context.Context, params pagination.Params) (*AccountList, error) {
	out := make([]models.StaffAccount, 0, len(s.accounts))
	for _, account := range s.accounts {
		out = append(out, *account)
	}
	return &AccountList{Accounts: out}, nil
}

func (s *stubStaffRepo) Save(ctx context.Context, account *models.StaffAccount) error {
	copied := *account
	s.accounts[account.ID] = &copied
	return nil
}

func (s *stubStaffRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.accounts, id)
	return nil
}

func (s *stubStaffRepo) CountActiveByRole(ctx context.Context, role enums.StaffRole) (int64, error) {
	var count int64
	for _, account := range s.accounts {
		if account.Role == role && account.IsActive {
			count++
		}
	}
	return count, nil
}

func (s *stubStaffRepo) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	return nil
}

func fastPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func managerAccount() *models.StaffAccount {
	return &models.StaffAccount{
		ID:       uuid.New(),
		Username: "boss",
		FullName: "Morgan Teller",
		Role:     enums.StaffRoleManager,
		IsActive: true,
	}
}

func clerkAccount() *models.StaffAccount {
	return &models.StaffAccount{
		ID:       uuid.New(),
		Username: "clerk",
		FullName: "Casey Till",
		Role:     enums.StaffRoleClerk,
		IsActive: true,
	}
}

func TestCreateAccountHashesPassword(t *testing.T) {
	repo := newStubStaffRepo()
	svc, err := NewService(repo, fastPasswordConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	account, err := svc.Create(context.Background(), CreateAccountInput{
		Username: "clerk",
		Password: "correct-horse",
		FullName: "Casey Till",
		Role:     enums.StaffRoleClerk,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if account.PasswordHash == "correct-horse" {
		t.Fatal("password must not be stored in the clear")
	}
	ok, err := security.VerifyPassword("correct-horse", account.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("stored hash should verify: ok=%v err=%v", ok, err)
	}
}

func TestCreateAccountValidation(t *testing.T) {
	svc, _ := NewService(newStubStaffRepo(), fastPasswordConfig())
	ctx := context.Background()

	cases := []CreateAccountInput{
		{Password: "longenough", FullName: "x", Role: enums.StaffRoleClerk},          // no username
		{Username: "a", Password: "longenough", Role: enums.StaffRoleClerk},          // no name
		{Username: "a", Password: "short", FullName: "x", Role: enums.StaffRoleClerk}, // weak password
		{Username: "a", Password: "longenough", FullName: "x", Role: "Intern"},        // bad role
	}
	for i, input := range cases {
		_, err := svc.Create(ctx, input)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestDeleteProtectsLastManager(t *testing.T) {
	manager := managerAccount()
	clerk := clerkAccount()
	repo := newStubStaffRepo(manager, clerk)
	svc, _ := NewService(repo, fastPasswordConfig())
	ctx := context.Background()

	err := svc.Delete(ctx, clerk.ID, manager.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("deleting the only manager should conflict, got %v", err)
	}

	second := managerAccount()
	second.ID = uuid.New()
	second.Username = "boss2"
	repo.accounts[second.ID] = second

	if err := svc.Delete(ctx, clerk.ID, manager.ID); err != nil {
		t.Fatalf("delete with a second manager present: %v", err)
	}
}

func TestDeleteInactiveManagerAllowed(t *testing.T) {
	active := managerAccount()
	retired := managerAccount()
	retired.Username = "boss-retired"
	retired.IsActive = false
	repo := newStubStaffRepo(active, retired)
	svc, _ := NewService(repo, fastPasswordConfig())

	// one active manager remains; the retired account never counted
	if err := svc.Delete(context.Background(), active.ID, retired.ID); err != nil {
		t.Fatalf("deleting an inactive manager: %v", err)
	}
	if _, ok := repo.accounts[retired.ID]; ok {
		t.Fatal("retired account should be gone")
	}
}

func TestResetPasswordIssuesTemporaryCredential(t *testing.T) {
	clerk := clerkAccount()
	clerk.PasswordHash = "old-hash"
	repo := newStubStaffRepo(clerk)
	svc, _ := NewService(repo, fastPasswordConfig())
	ctx := context.Background()

	temp, err := svc.ResetPassword(ctx, clerk.ID)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if len(temp) != 12 {
		t.Fatalf("expected a 12-character temporary password, got %q", temp)
	}

	saved := repo.accounts[clerk.ID]
	if saved.PasswordHash == "old-hash" {
		t.Fatal("stored hash should have been replaced")
	}
	ok, err := security.VerifyPassword(temp, saved.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("temporary password should verify against the new hash: ok=%v err=%v", ok, err)
	}

	_, err = svc.ResetPassword(ctx, uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unknown account should 404, got %v", err)
	}
}

func TestDeleteOwnAccountRejected(t *testing.T) {
	manager := managerAccount()
	svc, _ := NewService(newStubStaffRepo(manager), fastPasswordConfig())

	err := svc.Delete(context.Background(), manager.ID, manager.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("self-delete should conflict, got %v", err)
	}
}

func TestUpdateProtectsLastManagerDemotion(t *testing.T) {
	manager := managerAccount()
	repo := newStubStaffRepo(manager)
	svc, _ := NewService(repo, fastPasswordConfig())
	ctx := context.Background()

	clerkRole := enums.StaffRoleClerk
	_, err := svc.Update(ctx, manager.ID, UpdateAccountInput{Role: &clerkRole})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("demoting the only manager should conflict, got %v", err)
	}

	inactive := false
	_, err = svc.Update(ctx, manager.ID, UpdateAccountInput{IsActive: &inactive})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("deactivating the only manager should conflict, got %v", err)
	}

	name := "Morgan A. Teller"
	updated, err := svc.Update(ctx, manager.ID, UpdateAccountInput{FullName: &name})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if updated.FullName != name {
		t.Fatalf("expected renamed account, got %q", updated.FullName)
	}
}
