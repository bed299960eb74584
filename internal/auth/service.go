package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/jmkoster/stockroom-backend/pkg/config"
	"github.com/jmkoster/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/jmkoster/stockroom-backend/pkg/errors"
	"github.com/jmkoster/stockroom-backend/pkg/security"
)

// Service verifies per-request header credentials.
type Service interface {
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

type userFinder interface {
	FindByName(ctx context.Context, name string) (*models.User, error)
}

type service struct {
	users   userFinder
	authCfg config.AuthConfig
}

// NewService constructs the credential verifier.
func NewService(users userFinder, authCfg config.AuthConfig) (Service, error) {
	if users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{users: users, authCfg: authCfg}, nil
}

// Authenticate resolves the username and checks the peppered digest. An
// unknown username is NOT_FOUND; a wrong password is UNAUTHORIZED. The two
// are deliberately distinct.
func (s *service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "credentials required")
	}

	user, err := s.users.FindByName(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading user")
	}

	if err := security.VerifyPassword(password, user.Password, s.authCfg); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying credentials")
	}
	return user, nil
}
