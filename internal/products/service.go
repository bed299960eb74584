package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jmkoster/stockroom-backend/internal/catalog"
	"github.com/jmkoster/stockroom-backend/internal/sequence"
	"github.com/jmkoster/stockroom-backend/pkg/db"
	"github.com/jmkoster/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/jmkoster/stockroom-backend/pkg/errors"
	"github.com/jmkoster/stockroom-backend/pkg/pagination"
)

// Service exposes product management plus the membership edges into brands,
// categories, and suppliers.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Product, error)
	Get(ctx context.Context, id int32) (*models.Product, error)
	List(ctx context.Context, params pagination.Params) ([]models.Product, error)
	Names(ctx context.Context) ([]NameRow, error)
	Update(ctx context.Context, id int32, input UpdateInput) (*models.Product, error)
	Delete(ctx context.Context, id int32) error

	Attach(ctx context.Context, productID int32, kind catalog.Kind, ownerID int32) error
	Detach(ctx context.Context, productID int32, kind catalog.Kind, ownerID int32) error
	BrandOf(ctx context.Context, productID int32) (*models.Brand, error)
	CategoriesOf(ctx context.Context, productID int32) ([]models.Category, error)
	SuppliersOf(ctx context.Context, productID int32) ([]models.Supplier, error)
}

// CreateInput is the product builder payload. Stock always starts at zero;
// it only moves through the order lifecycle.
type CreateInput struct {
	UPC                 string
	Name                string
	Description         string
	CaseSize            *int32
	MeasureByWeight     bool
	CostPricePerUnit    decimal.Decimal
	SellingPricePerUnit decimal.Decimal
	SaleEnd             *time.Time
	BuyLevel            *float64
	SalePrice           *decimal.Decimal

	BrandID     *int32
	CategoryIDs []int32
	SupplierIDs []int32
}

// UpdateInput holds optional mutation values for a product.
type UpdateInput struct {
	UPC                 *string
	Name                *string
	Description         *string
	CaseSize            *int32
	MeasureByWeight     *bool
	CostPricePerUnit    *decimal.Decimal
	SellingPricePerUnit *decimal.Decimal
	SaleEnd             *time.Time
	BuyLevel            *float64
	SalePrice           *decimal.Decimal
}

type service struct {
	repo        *Repository
	catalogRepo *catalog.Repository
	dbClient    *db.Client
}

// NewService constructs the product service.
func NewService(repo *Repository, catalogRepo *catalog.Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, catalogRepo: catalogRepo, dbClient: dbClient}, nil
}

// Create inserts the product and attaches its initial brand, categories, and
// suppliers in one transaction; a failed attach rolls the product back too.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Product, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	product := &models.Product{
		UPC:                 strings.TrimSpace(input.UPC),
		Name:                strings.TrimSpace(input.Name),
		Description:         strings.TrimSpace(input.Description),
		Amount:              0,
		CaseSize:            input.CaseSize,
		MeasureByWeight:     input.MeasureByWeight,
		CostPricePerUnit:    input.CostPricePerUnit,
		SellingPricePerUnit: input.SellingPricePerUnit,
		SaleEnd:             input.SaleEnd,
		BuyLevel:            input.BuyLevel,
		SalePrice:           input.SalePrice,
	}

	insert := func() error {
		return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
			id, err := sequence.NextID(ctx, tx, &models.Product{})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocating product id")
			}
			product.ID = id

			if err := s.repo.WithTx(tx).Create(ctx, product); err != nil {
				return err
			}
			return s.attachInitialOwners(ctx, tx, product.ID, input)
		})
	}

	if err := insert(); err != nil {
		typed := pkgerrors.As(err)
		switch {
		case typed != nil:
			return nil, err
		case errors.Is(err, catalog.ErrOwnerNotFound):
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog owner not found")
		case db.IsUniqueViolation(err):
			if err := insert(); err != nil {
				if db.IsUniqueViolation(err) {
					return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product id allocation conflict")
				}
				return nil, mapCreateRetryError(err)
			}
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating product")
		}
	}
	return product, nil
}

func (s *service) attachInitialOwners(ctx context.Context, tx *gorm.DB, productID int32, input CreateInput) error {
	txCatalog := s.catalogRepo.WithTx(tx)

	if input.BrandID != nil {
		if err := txCatalog.Attach(ctx, catalog.KindBrand, *input.BrandID, productID); err != nil {
			return err
		}
	}
	for _, categoryID := range input.CategoryIDs {
		if err := txCatalog.Attach(ctx, catalog.KindCategory, categoryID, productID); err != nil {
			return err
		}
	}
	for _, supplierID := range input.SupplierIDs {
		if err := txCatalog.Attach(ctx, catalog.KindSupplier, supplierID, productID); err != nil {
			return err
		}
	}
	return nil
}

// Get loads one product.
func (s *service) Get(ctx context.Context, id int32) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}
	return product, nil
}

// List returns products ordered by id.
func (s *service) List(ctx context.Context, params pagination.Params) ([]models.Product, error) {
	products, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing products")
	}
	return products, nil
}

// Names returns the picker projection.
func (s *service) Names(ctx context.Context) ([]NameRow, error) {
	rows, err := s.repo.Names(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing product names")
	}
	return rows, nil
}

// Update applies the provided fields to the product row.
func (s *service) Update(ctx context.Context, id int32, input UpdateInput) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := applyUpdateToProduct(product, input); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving product")
	}
	return product, nil
}

// Delete removes the product and everything that references it in one
// transaction: order rows first, then the membership arrays, then the row.
func (s *service) Delete(ctx context.Context, id int32) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		txCatalog := s.catalogRepo.WithTx(tx)

		if err := txRepo.DeleteOrdersByProduct(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting product orders")
		}
		if err := txCatalog.CascadeDetachAll(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detaching product")
		}
		if err := txRepo.DeleteByID(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting product row")
		}
		return nil
	})
}

// Attach adds the product to an owner's array.
func (s *service) Attach(ctx context.Context, productID int32, kind catalog.Kind, ownerID int32) error {
	if _, err := s.Get(ctx, productID); err != nil {
		return err
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.catalogRepo.WithTx(tx).Attach(ctx, kind, ownerID, productID)
	})
	return mapMembershipError(err, kind)
}

// Detach removes the product from an owner's array.
func (s *service) Detach(ctx context.Context, productID int32, kind catalog.Kind, ownerID int32) error {
	if _, err := s.Get(ctx, productID); err != nil {
		return err
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.catalogRepo.WithTx(tx).Detach(ctx, kind, ownerID, productID)
	})
	return mapMembershipError(err, kind)
}

// BrandOf returns the product's brand, or nil when it has none.
func (s *service) BrandOf(ctx context.Context, productID int32) (*models.Brand, error) {
	if _, err := s.Get(ctx, productID); err != nil {
		return nil, err
	}
	brand, err := s.catalogRepo.BrandOf(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolving brand")
	}
	return brand, nil
}

// CategoriesOf returns every category holding the product.
func (s *service) CategoriesOf(ctx context.Context, productID int32) ([]models.Category, error) {
	if _, err := s.Get(ctx, productID); err != nil {
		return nil, err
	}
	categories, err := s.catalogRepo.CategoriesOf(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolving categories")
	}
	return categories, nil
}

// SuppliersOf returns every supplier holding the product.
func (s *service) SuppliersOf(ctx context.Context, productID int32) ([]models.Supplier, error) {
	if _, err := s.Get(ctx, productID); err != nil {
		return nil, err
	}
	suppliers, err := s.catalogRepo.SuppliersOf(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolving suppliers")
	}
	return suppliers, nil
}

func validateCreateInput(input CreateInput) error {
	if strings.TrimSpace(input.UPC) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "upc is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.CostPricePerUnit.IsNegative() || input.SellingPricePerUnit.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "prices cannot be negative")
	}
	if input.SalePrice != nil && input.SalePrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "sale_price cannot be negative")
	}
	return nil
}

func applyUpdateToProduct(product *models.Product, input UpdateInput) error {
	if input.UPC != nil {
		upc := strings.TrimSpace(*input.UPC)
		if upc == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "upc cannot be blank")
		}
		product.UPC = upc
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "name cannot be blank")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.CaseSize != nil {
		product.CaseSize = input.CaseSize
	}
	if input.MeasureByWeight != nil {
		product.MeasureByWeight = *input.MeasureByWeight
	}
	if input.CostPricePerUnit != nil {
		if input.CostPricePerUnit.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "prices cannot be negative")
		}
		product.CostPricePerUnit = *input.CostPricePerUnit
	}
	if input.SellingPricePerUnit != nil {
		if input.SellingPricePerUnit.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "prices cannot be negative")
		}
		product.SellingPricePerUnit = *input.SellingPricePerUnit
	}
	if input.SaleEnd != nil {
		product.SaleEnd = input.SaleEnd
	}
	if input.BuyLevel != nil {
		product.BuyLevel = input.BuyLevel
	}
	if input.SalePrice != nil {
		if input.SalePrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "sale_price cannot be negative")
		}
		product.SalePrice = input.SalePrice
	}
	return nil
}

func mapMembershipError(err error, kind catalog.Kind) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	if errors.Is(err, catalog.ErrOwnerNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s not found", kind))
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating membership")
}

func mapCreateRetryError(err error) error {
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	if errors.Is(err, catalog.ErrOwnerNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "catalog owner not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating product")
}
