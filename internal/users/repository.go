package user

import (
	"context"

	"gorm.io/gorm"

	"github.com/jmkoster/stockroom-backend/pkg/db/models"
	"github.com/jmkoster/stockroom-backend/pkg/pagination"
)

// Repository persists user accounts and their preference rows.
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

// FindByID loads one user.
func (r *Repository) FindByID(ctx context.Context, id int32) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByName loads a user by exact username.
func (r *Repository) FindByName(ctx context.Context, name string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns users ordered by id.
func (r *Repository) List(ctx context.Context, params pagination.Params) ([]models.User, error) {
	params = params.Normalize()
	var users []models.User
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Count returns the number of user rows.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a new user row.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Save writes the full user row back.
func (r *Repository) Save(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// DeleteByID removes a user row.
func (r *Repository) DeleteByID(ctx context.Context, id int32) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{}).Error
}

// CreatePreference inserts the preference row for a new user.
func (r *Repository) CreatePreference(ctx context.Context, pref *models.Preference) error {
	return r.db.WithContext(ctx).Create(pref).Error
}

// DeletePreference removes the preference row for a user.
func (r *Repository) DeletePreference(ctx context.Context, userID int32) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Preference{}).Error
}
