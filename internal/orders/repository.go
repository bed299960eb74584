package order

import (
	"context"

	"gorm.io/gorm"

	"github.com/jmkoster/stockroom-backend/pkg/db/models"
	"github.com/jmkoster/stockroom-backend/pkg/pagination"
)

// Repository persists both phases of the order lifecycle.
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

// FindPending loads one pending order.
func (r *Repository) FindPending(ctx context.Context, id int32) (*models.PendingOrder, error) {
	var row models.PendingOrder
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ListPending returns pending orders ordered by id.
func (r *Repository) ListPending(ctx context.Context, params pagination.Params) ([]models.PendingOrder, error) {
	params = params.Normalize()
	var rows []models.PendingOrder
	err := r.db.WithContext(ctx).Order("id ASC").Limit(params.Limit).Offset(params.Offset).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CreatePending inserts a pending order row.
func (r *Repository) CreatePending(ctx context.Context, row *models.PendingOrder) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// SavePending writes the full pending order row back.
func (r *Repository) SavePending(ctx context.Context, row *models.PendingOrder) error {
	return r.db.WithContext(ctx).Save(row).Error
}

// DeletePending removes a pending order row, reporting how many rows matched.
func (r *Repository) DeletePending(ctx context.Context, id int32) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PendingOrder{})
	return res.RowsAffected, res.Error
}

// FindReceived loads one received order.
func (r *Repository) FindReceived(ctx context.Context, id int32) (*models.ReceivedOrder, error) {
	var row models.ReceivedOrder
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ListReceived returns received orders ordered by id.
func (r *Repository) ListReceived(ctx context.Context, params pagination.Params) ([]models.ReceivedOrder, error) {
	params = params.Normalize()
	var rows []models.ReceivedOrder
	err := r.db.WithContext(ctx).Order("id ASC").Limit(params.Limit).Offset(params.Offset).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateReceived inserts a received order row.
func (r *Repository) CreateReceived(ctx context.Context, row *models.ReceivedOrder) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// SaveReceived writes the full received order row back.
func (r *Repository) SaveReceived(ctx context.Context, row *models.ReceivedOrder) error {
	return r.db.WithContext(ctx).Save(row).Error
}

// DeleteReceived removes a received order row, reporting how many rows matched.
func (r *Repository) DeleteReceived(ctx context.Context, id int32) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ReceivedOrder{})
	return res.RowsAffected, res.Error
}
