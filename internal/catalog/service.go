package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/jmkoster/stockroom-backend/internal/sequence"
	"github.com/jmkoster/stockroom-backend/pkg/db"
	"github.com/jmkoster/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/jmkoster/stockroom-backend/pkg/errors"
	"github.com/jmkoster/stockroom-backend/pkg/pagination"
)

// Service manages the three owner entities. Array membership edits are the
// product service's concern; this service covers the owner rows themselves.
type Service interface {
	CreateBrand(ctx context.Context, input BrandInput) (*models.Brand, error)
	GetBrand(ctx context.Context, id int32) (*models.Brand, error)
	ListBrands(ctx context.Context, params pagination.Params) ([]models.Brand, error)
	UpdateBrand(ctx context.Context, id int32, input BrandInput) (*models.Brand, error)
	DeleteBrand(ctx context.Context, id int32) error

	CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error)
	GetCategory(ctx context.Context, id int32) (*models.Category, error)
	ListCategories(ctx context.Context, params pagination.Params) ([]models.Category, error)
	UpdateCategory(ctx context.Context, id int32, input CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int32) error

	CreateSupplier(ctx context.Context, input SupplierInput) (*models.Supplier, error)
	GetSupplier(ctx context.Context, id int32) (*models.Supplier, error)
	ListSuppliers(ctx context.Context, params pagination.Params) ([]models.Supplier, error)
	UpdateSupplier(ctx context.Context, id int32, input SupplierInput) (*models.Supplier, error)
	DeleteSupplier(ctx context.Context, id int32) error

	Names(ctx context.Context, kind Kind) ([]NameRow, error)
}

// BrandInput holds the brand payload.
type BrandInput struct {
	Name string
}

// CategoryInput holds the category payload.
type CategoryInput struct {
	Name string
}

// SupplierInput holds the supplier payload.
type SupplierInput struct {
	Name        string
	PhoneNumber *string
	Email       *string
}

type service struct {
	repo     *Repository
	dbClient *db.Client
}

// NewService constructs the catalog service.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

func (s *service) CreateBrand(ctx context.Context, input BrandInput) (*models.Brand, error) {
	name, err := normalizeName(input.Name)
	if err != nil {
		return nil, err
	}
	brand := &models.Brand{Name: name, Products: pq.Int32Array{}}
	if err := s.createOwner(ctx, &models.Brand{}, func(id int32) any {
		brand.ID = id
		return brand
	}); err != nil {
		return nil, err
	}
	return brand, nil
}

func (s *service) GetBrand(ctx context.Context, id int32) (*models.Brand, error) {
	brand, err := s.repo.FindBrand(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "brand")
	}
	return brand, nil
}

func (s *service) ListBrands(ctx context.Context, params pagination.Params) ([]models.Brand, error) {
	brands, err := s.repo.ListBrands(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing brands")
	}
	return brands, nil
}

func (s *service) UpdateBrand(ctx context.Context, id int32, input BrandInput) (*models.Brand, error) {
	name, err := normalizeName(input.Name)
	if err != nil {
		return nil, err
	}
	brand, err := s.GetBrand(ctx, id)
	if err != nil {
		return nil, err
	}
	brand.Name = name
	if err := s.repo.Save(ctx, brand); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving brand")
	}
	return brand, nil
}

func (s *service) DeleteBrand(ctx context.Context, id int32) error {
	return s.deleteOwner(ctx, KindBrand, id)
}

func (s *service) CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error) {
	name, err := normalizeName(input.Name)
	if err != nil {
		return nil, err
	}
	category := &models.Category{Name: name, Products: pq.Int32Array{}}
	if err := s.createOwner(ctx, &models.Category{}, func(id int32) any {
		category.ID = id
		return category
	}); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *service) GetCategory(ctx context.Context, id int32) (*models.Category, error) {
	category, err := s.repo.FindCategory(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "category")
	}
	return category, nil
}

func (s *service) ListCategories(ctx context.Context, params pagination.Params) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing categories")
	}
	return categories, nil
}

func (s *service) UpdateCategory(ctx context.Context, id int32, input CategoryInput) (*models.Category, error) {
	name, err := normalizeName(input.Name)
	if err != nil {
		return nil, err
	}
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = name
	if err := s.repo.Save(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving category")
	}
	return category, nil
}

func (s *service) DeleteCategory(ctx context.Context, id int32) error {
	return s.deleteOwner(ctx, KindCategory, id)
}

func (s *service) CreateSupplier(ctx context.Context, input SupplierInput) (*models.Supplier, error) {
	name, err := normalizeName(input.Name)
	if err != nil {
		return nil, err
	}
	supplier := &models.Supplier{
		Name:        name,
		PhoneNumber: input.PhoneNumber,
		Email:       input.Email,
		Products:    pq.Int32Array{},
	}
	if err := s.createOwner(ctx, &models.Supplier{}, func(id int32) any {
		supplier.ID = id
		return supplier
	}); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *service) GetSupplier(ctx context.Context, id int32) (*models.Supplier, error) {
	supplier, err := s.repo.FindSupplier(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "supplier")
	}
	return supplier, nil
}

func (s *service) ListSuppliers(ctx context.Context, params pagination.Params) ([]models.Supplier, error) {
	suppliers, err := s.repo.ListSuppliers(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing suppliers")
	}
	return suppliers, nil
}

func (s *service) UpdateSupplier(ctx context.Context, id int32, input SupplierInput) (*models.Supplier, error) {
	name, err := normalizeName(input.Name)
	if err != nil {
		return nil, err
	}
	supplier, err := s.GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	supplier.Name = name
	supplier.PhoneNumber = input.PhoneNumber
	supplier.Email = input.Email
	if err := s.repo.Save(ctx, supplier); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving supplier")
	}
	return supplier, nil
}

func (s *service) DeleteSupplier(ctx context.Context, id int32) error {
	return s.deleteOwner(ctx, KindSupplier, id)
}

func (s *service) Names(ctx context.Context, kind Kind) ([]NameRow, error) {
	rows, err := s.repo.Names(ctx, kind)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing names")
	}
	return rows, nil
}

// createOwner allocates an id inside a transaction and inserts the row the
// factory builds around it, retrying once on an id collision.
func (s *service) createOwner(ctx context.Context, model any, build func(id int32) any) error {
	insert := func() error {
		return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
			id, err := sequence.NextID(ctx, tx, model)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocating id")
			}
			return s.repo.WithTx(tx).Create(ctx, build(id))
		})
	}

	if err := insert(); err != nil {
		if !db.IsUniqueViolation(err) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating row")
		}
		if err := insert(); err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "id allocation conflict")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating row")
		}
	}
	return nil
}

func (s *service) deleteOwner(ctx context.Context, kind Kind, id int32) error {
	affected, err := s.repo.Delete(ctx, kind, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting row")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s not found", kind))
	}
	return nil
}

func mapLookupError(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading "+entity)
}

func normalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	return trimmed, nil
}
