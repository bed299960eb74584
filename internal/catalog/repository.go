package catalog

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/jmkoster/stockroom-backend/pkg/db/models"
	"github.com/jmkoster/stockroom-backend/pkg/pagination"
)

// Repository persists brands, categories, and suppliers, and owns the
// products-array membership operations shared by all three.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindBrand loads one brand.
func (r *Repository) FindBrand(ctx context.Context, id int32) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.WithContext(ctx).First(&brand, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

// FindCategory loads one category.
func (r *Repository) FindCategory(ctx context.Context, id int32) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// FindSupplier loads one supplier.
func (r *Repository) FindSupplier(ctx context.Context, id int32) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := r.db.WithContext(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

// ListBrands returns brands ordered by id.
func (r *Repository) ListBrands(ctx context.Context, params pagination.Params) ([]models.Brand, error) {
	params = params.Normalize()
	var brands []models.Brand
	err := r.db.WithContext(ctx).Order("id ASC").Limit(params.Limit).Offset(params.Offset).Find(&brands).Error
	if err != nil {
		return nil, err
	}
	return brands, nil
}

// ListCategories returns categories ordered by id.
func (r *Repository) ListCategories(ctx context.Context, params pagination.Params) ([]models.Category, error) {
	params = params.Normalize()
	var categories []models.Category
	err := r.db.WithContext(ctx).Order("id ASC").Limit(params.Limit).Offset(params.Offset).Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// ListSuppliers returns suppliers ordered by id.
func (r *Repository) ListSuppliers(ctx context.Context, params pagination.Params) ([]models.Supplier, error) {
	params = params.Normalize()
	var suppliers []models.Supplier
	err := r.db.WithContext(ctx).Order("id ASC").Limit(params.Limit).Offset(params.Offset).Find(&suppliers).Error
	if err != nil {
		return nil, err
	}
	return suppliers, nil
}

// NameRow is the (id, name) projection used by picker endpoints.
type NameRow struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

// Names returns the (id, name) projection for the kind's table.
func (r *Repository) Names(ctx context.Context, kind Kind) ([]NameRow, error) {
	table, err := kind.table()
	if err != nil {
		return nil, err
	}
	var rows []NameRow
	if err := r.db.WithContext(ctx).Table(table).Select("id, name").Order("id ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Create inserts an owner row; the model carries its pre-allocated id.
func (r *Repository) Create(ctx context.Context, owner any) error {
	return r.db.WithContext(ctx).Create(owner).Error
}

// Save writes the full owner row back.
func (r *Repository) Save(ctx context.Context, owner any) error {
	return r.db.WithContext(ctx).Save(owner).Error
}

// Delete removes an owner row by id.
func (r *Repository) Delete(ctx context.Context, kind Kind, id int32) (int64, error) {
	table, err := kind.table()
	if err != nil {
		return 0, err
	}
	res := r.db.WithContext(ctx).Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	return res.RowsAffected, res.Error
}
