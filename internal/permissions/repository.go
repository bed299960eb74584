package permission

import (
	"context"

	"gorm.io/gorm"

	"github.com/jmkoster/stockroom-backend/pkg/db/models"
)

// Repository persists permission rows.
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

// FindByUserID loads the permission row for one user.
func (r *Repository) FindByUserID(ctx context.Context, userID int32) (*models.Permission, error) {
	var perm models.Permission
	if err := r.db.WithContext(ctx).First(&perm, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &perm, nil
}

// Create inserts the permission row for a new user.
func (r *Repository) Create(ctx context.Context, perm *models.Permission) error {
	return r.db.WithContext(ctx).Create(perm).Error
}

// Save writes the full flag set back.
func (r *Repository) Save(ctx context.Context, perm *models.Permission) error {
	return r.db.WithContext(ctx).Save(perm).Error
}

// DeleteByUserID removes the permission row for a user.
func (r *Repository) DeleteByUserID(ctx context.Context, userID int32) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Permission{}).Error
}
