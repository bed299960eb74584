package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmkoster/stockroom-backend/pkg/db/models"
)

// ErrOwnerNotFound signals an attach/detach against an owner id that does
// not exist.
var ErrOwnerNotFound = errors.New("catalog owner not found")

// Attach appends the product id to the owner's products array. The owner row
// is locked first so two concurrent membership edits cannot overwrite each
// other's array. Duplicate appends are permitted; membership is counted, not
// set-like. Must run inside a transaction.
func (r *Repository) Attach(ctx context.Context, kind Kind, ownerID, productID int32) error {
	table, err := kind.table()
	if err != nil {
		return err
	}

	if err := r.lockOwner(ctx, table, ownerID); err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Exec(fmt.Sprintf("UPDATE %s SET products = array_append(products, ?) WHERE id = ?", table), productID, ownerID).
		Error
}

// Detach removes every occurrence of the product id from the owner's array,
// under the same row lock as Attach. Must run inside a transaction.
func (r *Repository) Detach(ctx context.Context, kind Kind, ownerID, productID int32) error {
	table, err := kind.table()
	if err != nil {
		return err
	}

	if err := r.lockOwner(ctx, table, ownerID); err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Exec(fmt.Sprintf("UPDATE %s SET products = array_remove(products, ?) WHERE id = ?", table), productID, ownerID).
		Error
}

// CascadeDetachAll scrubs the product id from every supplier, category, and
// brand that references it. Each statement rewrites all matching rows at
// once. Must run inside the product-deletion transaction.
func (r *Repository) CascadeDetachAll(ctx context.Context, productID int32) error {
	for _, kind := range []Kind{KindSupplier, KindCategory, KindBrand} {
		table, err := kind.table()
		if err != nil {
			return err
		}
		err = r.db.WithContext(ctx).
			Exec(fmt.Sprintf(
				"UPDATE %s SET products = array_remove(products, ?) WHERE products @> ARRAY[?]::integer[]",
				table), productID, productID).
			Error
		if err != nil {
			return fmt.Errorf("detaching product from %s: %w", table, err)
		}
	}
	return nil
}

// BrandOf returns the brand listing the product, or nil when no brand does.
// A product belongs to at most one brand by convention; if data drift ever
// produces more, the lowest id wins.
func (r *Repository) BrandOf(ctx context.Context, productID int32) (*models.Brand, error) {
	var brands []models.Brand
	err := r.db.WithContext(ctx).
		Where("products @> ARRAY[?]::integer[]", productID).
		Order("id ASC").
		Limit(1).
		Find(&brands).Error
	if err != nil {
		return nil, err
	}
	if len(brands) == 0 {
		return nil, nil
	}
	return &brands[0], nil
}

// CategoriesOf returns every category listing the product.
func (r *Repository) CategoriesOf(ctx context.Context, productID int32) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Where("products @> ARRAY[?]::integer[]", productID).
		Order("id ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// SuppliersOf returns every supplier listing the product.
func (r *Repository) SuppliersOf(ctx context.Context, productID int32) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	err := r.db.WithContext(ctx).
		Where("products @> ARRAY[?]::integer[]", productID).
		Order("id ASC").
		Find(&suppliers).Error
	if err != nil {
		return nil, err
	}
	return suppliers, nil
}

// lockOwner takes a row lock on the owner and doubles as the existence check.
func (r *Repository) lockOwner(ctx context.Context, table string, ownerID int32) error {
	var locked int32
	err := r.db.WithContext(ctx).
		Raw(fmt.Sprintf("SELECT id FROM %s WHERE id = ? FOR UPDATE", table), ownerID).
		Scan(&locked).Error
	if err != nil {
		return err
	}
	if locked != ownerID {
		return ErrOwnerNotFound
	}
	return nil
}
