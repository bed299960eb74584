package product

import (
	"context"

	"gorm.io/gorm"

	"github.com/jmkoster/stockroom-backend/pkg/db/models"
	"github.com/jmkoster/stockroom-backend/pkg/pagination"
)

// Repository persists product rows and the order rows scrubbed alongside a
// product deletion.
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

// FindByID loads one product.
func (r *Repository) FindByID(ctx context.Context, id int32) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns products ordered by id.
func (r *Repository) List(ctx context.Context, params pagination.Params) ([]models.Product, error) {
	params = params.Normalize()
	var products []models.Product
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// NameRow is the (id, name, upc) projection used by picker endpoints.
type NameRow struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
	UPC  string `json:"upc"`
}

// Names returns the picker projection for every product.
func (r *Repository) Names(ctx context.Context) ([]NameRow, error) {
	var rows []NameRow
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("id, name, upc").
		Order("id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Create inserts a new product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Save writes the full product row back.
func (r *Repository) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// DeleteByID removes a product row.
func (r *Repository) DeleteByID(ctx context.Context, id int32) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
}

// DeleteOrdersByProduct removes every pending and received order row that
// references the product. Runs inside the product-deletion transaction.
func (r *Repository) DeleteOrdersByProduct(ctx context.Context, productID int32) error {
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.PendingOrder{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.ReceivedOrder{}).Error
}
