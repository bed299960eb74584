package permission

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/jmkoster/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/jmkoster/stockroom-backend/pkg/errors"
)

// Service answers capability questions and manages permission rows.
type Service interface {
	Authorize(ctx context.Context, userID int32, cap Capability) (bool, error)
	Get(ctx context.Context, userID int32) (*models.Permission, error)
	Update(ctx context.Context, userID int32, flags UpdateInput) (*models.Permission, error)
}

// UpdateInput carries the full flag set; permission updates are whole-row.
type UpdateInput struct {
	Admin         bool
	ViewPending   bool
	ViewReceived  bool
	EditPending   bool
	CreateOrders  bool
	EditReceived  bool
	RemoveOrders  bool
	EditProducts  bool
	ViewProducts  bool
	ViewSuppliers bool
}

type permissionFinder interface {
	FindByUserID(ctx context.Context, userID int32) (*models.Permission, error)
	Save(ctx context.Context, perm *models.Permission) error
}

type service struct {
	repo permissionFinder
}

// NewService constructs the permission oracle.
func NewService(repo permissionFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("permission repository required")
	}
	return &service{repo: repo}, nil
}

// Authorize reports whether the user holds the capability. A user without a
// permission row is a data fault, surfaced as NOT_FOUND rather than treated
// as an implicit all-deny.
func (s *service) Authorize(ctx context.Context, userID int32, cap Capability) (bool, error) {
	perm, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, pkgerrors.New(pkgerrors.CodeNotFound, "permission row not found")
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading permission row")
	}
	return Flag(perm, cap)
}

// Get returns the full flag set for a user.
func (s *service) Get(ctx context.Context, userID int32) (*models.Permission, error) {
	perm, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "permission row not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading permission row")
	}
	return perm, nil
}

// Update replaces every flag on the user's permission row.
func (s *service) Update(ctx context.Context, userID int32, flags UpdateInput) (*models.Permission, error) {
	perm, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	perm.Admin = flags.Admin
	perm.ViewPending = flags.ViewPending
	perm.ViewReceived = flags.ViewReceived
	perm.EditPending = flags.EditPending
	perm.CreateOrders = flags.CreateOrders
	perm.EditReceived = flags.EditReceived
	perm.RemoveOrders = flags.RemoveOrders
	perm.EditProducts = flags.EditProducts
	perm.ViewProducts = flags.ViewProducts
	perm.ViewSuppliers = flags.ViewSuppliers

	if err := s.repo.Save(ctx, perm); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving permission row")
	}
	return perm, nil
}
