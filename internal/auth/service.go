package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eldorado-books/bookstore-backend/internal/staff"
	pkgauth "github.com/eldorado-books/bookstore-backend/pkg/auth"
	"github.com/eldorado-books/bookstore-backend/pkg/auth/session"
	"github.com/eldorado-books/bookstore-backend/pkg/config"
	"github.com/eldorado-books/bookstore-backend/pkg/db/models"
	pkgerrors "github.com/eldorado-books/bookstore-backend/pkg/errors"
	"github.com/eldorado-books/bookstore-backend/pkg/logger"
	"github.com/eldorado-books/bookstore-backend/pkg/security"
)

type accountStore interface {
	FindByUsername(ctx context.Context, username string) (*models.StaffAccount, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.StaffAccount, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// Service authenticates staff and manages their token sessions.
type Service interface {
	Login(ctx context.Context, input LoginInput) (*Session, error)
	Refresh(ctx context.Context, input RefreshInput) (*Session, error)
	Logout(ctx context.Context, accessID string) error
}

type service struct {
	accounts accountStore
	sessions sessionManager
	jwtCfg   config.JWTConfig
	logg     *logger.Logger
}

// NewService builds the auth service with the required dependencies.
func NewService(accounts accountStore, sessions sessionManager, jwtCfg config.JWTConfig, logg *logger.Logger) (Service, error) {
	if accounts == nil {
		return nil, fmt.Errorf("account store required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	return &service{accounts: accounts, sessions: sessions, jwtCfg: jwtCfg, logg: logg}, nil
}

// invalidCredentials is shared across every login failure mode so the
// response does not reveal whether the username exists.
func invalidCredentials() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}

func (s *service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, invalidCredentials()
	}

	account, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCredentials()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load staff account")
	}
	if !account.IsActive {
		return nil, invalidCredentials()
	}

	ok, err := security.VerifyPassword(input.Password, account.PasswordHash)
	if err != nil || !ok {
		return nil, invalidCredentials()
	}

	return s.issueSession(ctx, account)
}

func (s *service) Refresh(ctx context.Context, input RefreshInput) (*Session, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, input.AccessToken)
	if err != nil {
		return nil, invalidCredentials()
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, input.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, invalidCredentials()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	// Re-read the account so role changes and deactivations take effect at
	// the next refresh, not at token expiry.
	account, err := s.accounts.FindByID(ctx, claims.StaffID)
	if err != nil || !account.IsActive {
		_ = s.sessions.Revoke(ctx, newAccessID)
		return nil, invalidCredentials()
	}

	token, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now(), pkgauth.AccessTokenPayload{
		StaffID:  account.ID,
		Username: account.Username,
		FullName: account.FullName,
		Role:     account.Role,
		JTI:      newAccessID,
	})
	if err != nil {
		_ = s.sessions.Revoke(ctx, newAccessID)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return &Session{
		AccessToken:  token,
		RefreshToken: newRefresh,
		Staff:        staff.ViewOf(account),
	}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access id required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) issueSession(ctx context.Context, account *models.StaffAccount) (*Session, error) {
	accessID := session.NewAccessID()

	token, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now(), pkgauth.AccessTokenPayload{
		StaffID:  account.ID,
		Username: account.Username,
		FullName: account.FullName,
		Role:     account.Role,
		JTI:      accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	refresh, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}

	if err := s.accounts.TouchLastLogin(ctx, account.ID); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "failed to record last login")
	}

	return &Session{
		AccessToken:  token,
		RefreshToken: refresh,
		Staff:        staff.ViewOf(account),
	}, nil
}
