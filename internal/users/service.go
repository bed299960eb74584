package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	permission "github.com/jmkoster/stockroom-backend/internal/permissions"
	"github.com/jmkoster/stockroom-backend/internal/sequence"
	"github.com/jmkoster/stockroom-backend/pkg/config"
	"github.com/jmkoster/stockroom-backend/pkg/db"
	"github.com/jmkoster/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/jmkoster/stockroom-backend/pkg/errors"
	"github.com/jmkoster/stockroom-backend/pkg/pagination"
	"github.com/jmkoster/stockroom-backend/pkg/security"
)

// BootstrapUserID is reserved for the account created by Bootstrap. Regular
// signups allocate from 1 upward, so the first operator is always
// distinguishable.
const BootstrapUserID int32 = 0

// Service manages user accounts. A user is always three rows committed
// together: users, permissions, preferences.
type Service interface {
	Bootstrap(ctx context.Context, input CredentialsInput) (*models.User, error)
	Signup(ctx context.Context, input SignupInput) (*models.User, error)
	GetByName(ctx context.Context, name string) (*models.User, error)
	GetByID(ctx context.Context, id int32) (*models.User, error)
	List(ctx context.Context, params pagination.Params) ([]models.User, error)
	Update(ctx context.Context, id int32, input UpdateInput) (*models.User, error)
	Delete(ctx context.Context, id int32) error
}

// CredentialsInput is the minimal account payload.
type CredentialsInput struct {
	Name     string
	Password string
}

// SignupInput extends credentials with the builder's optional fields.
type SignupInput struct {
	Name     string
	Password string
	Email    *string
}

// UpdateInput holds optional mutation values for a user. A provided password
// is re-hashed before storage.
type UpdateInput struct {
	Name     *string
	Email    *string
	Password *string
}

type service struct {
	repo     *Repository
	permRepo *permission.Repository
	dbClient *db.Client
	authCfg  config.AuthConfig
}

// NewService constructs the user service.
func NewService(repo *Repository, permRepo *permission.Repository, dbClient *db.Client, authCfg config.AuthConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if permRepo == nil {
		return nil, fmt.Errorf("permission repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, permRepo: permRepo, dbClient: dbClient, authCfg: authCfg}, nil
}

// Bootstrap creates the very first account with every capability enabled.
// It is a rejected no-op once any user exists.
func (s *service) Bootstrap(ctx context.Context, input CredentialsInput) (*models.User, error) {
	name, err := normalizeUsername(input.Name)
	if err != nil {
		return nil, err
	}

	digest, err := security.HashPassword(input.Password, s.authCfg)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password cannot be empty")
	}

	created := &models.User{ID: BootstrapUserID, Name: name, Password: digest}
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		count, err := txRepo.Count(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "counting users")
		}
		if count > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "bootstrap already completed")
		}

		return s.createAccount(ctx, tx, created, allCapabilities(created.ID))
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Signup creates a regular account with every capability disabled. The admin
// requirement on the caller is enforced at the route gate.
func (s *service) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	name, err := normalizeUsername(input.Name)
	if err != nil {
		return nil, err
	}

	digest, err := security.HashPassword(input.Password, s.authCfg)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password cannot be empty")
	}

	if _, err := s.repo.FindByName(ctx, name); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking username")
	}

	created := &models.User{Name: name, Password: digest}
	if input.Email != nil {
		created.Email = strings.TrimSpace(*input.Email)
	}

	insert := func() error {
		return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
			id, err := sequence.NextID(ctx, tx, &models.User{})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocating user id")
			}
			created.ID = id
			return s.createAccount(ctx, tx, created, noCapabilities(id))
		})
	}

	// Two racing signups can allocate the same id; the loser's insert hits
	// the primary key and gets one retry with a fresh id.
	if err := insert(); err != nil {
		if !db.IsUniqueViolation(err) {
			return nil, err
		}
		if err := insert(); err != nil {
			if db.IsUniqueViolation(err) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "user id allocation conflict")
			}
			return nil, err
		}
	}
	return created, nil
}

// createAccount inserts the three rows that make up an account. Must run
// inside a transaction.
func (s *service) createAccount(ctx context.Context, tx *gorm.DB, user *models.User, perm *models.Permission) error {
	txRepo := s.repo.WithTx(tx)
	txPerm := s.permRepo.WithTx(tx)

	if err := txRepo.Create(ctx, user); err != nil {
		return err
	}
	if err := txPerm.Create(ctx, perm); err != nil {
		return err
	}
	return txRepo.CreatePreference(ctx, &models.Preference{UserID: user.ID})
}

// GetByName loads a user by username.
func (s *service) GetByName(ctx context.Context, name string) (*models.User, error) {
	user, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading user")
	}
	return user, nil
}

// GetByID loads a user by id.
func (s *service) GetByID(ctx context.Context, id int32) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading user")
	}
	return user, nil
}

// List returns users ordered by id.
func (s *service) List(ctx context.Context, params pagination.Params) ([]models.User, error) {
	users, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing users")
	}
	return users, nil
}

// Update applies the provided fields and re-hashes a new password.
func (s *service) Update(ctx context.Context, id int32, input UpdateInput) (*models.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := applyUpdateToUser(user, input, s.authCfg); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, user); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving user")
	}
	return user, nil
}

// Delete removes the user and its permission and preference rows together.
func (s *service) Delete(ctx context.Context, id int32) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		txPerm := s.permRepo.WithTx(tx)

		if err := txPerm.DeleteByUserID(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting permission row")
		}
		if err := txRepo.DeletePreference(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting preference row")
		}
		if err := txRepo.DeleteByID(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting user row")
		}
		return nil
	})
}

func applyUpdateToUser(user *models.User, input UpdateInput, authCfg config.AuthConfig) error {
	if input.Name != nil {
		name, err := normalizeUsername(*input.Name)
		if err != nil {
			return err
		}
		user.Name = name
	}
	if input.Email != nil {
		user.Email = strings.TrimSpace(*input.Email)
	}
	if input.Password != nil {
		digest, err := security.HashPassword(*input.Password, authCfg)
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "password cannot be empty")
		}
		user.Password = digest
	}
	return nil
}

func normalizeUsername(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	return trimmed, nil
}

func allCapabilities(userID int32) *models.Permission {
	return &models.Permission{
		UserID: userID,
		Admin:  true, ViewPending: true, ViewReceived: true, EditPending: true,
		CreateOrders: true, EditReceived: true, RemoveOrders: true,
		EditProducts: true, ViewProducts: true, ViewSuppliers: true,
	}
}

func noCapabilities(userID int32) *models.Permission {
	return &models.Permission{UserID: userID}
}
