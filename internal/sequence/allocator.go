package sequence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// NextID returns the next identifier for the model's table: one past the
// current maximum, starting at 1 for an empty table. Gaps below the maximum
// are never reused; deleting the maximum row makes its id available again.
// Call inside the same transaction as the insert so a concurrent allocation
// surfaces as a unique violation rather than silent overwrite; callers retry
// once on conflict.
func NextID(ctx context.Context, tx *gorm.DB, model any) (int32, error) {
	if tx == nil {
		return 0, fmt.Errorf("tx is required")
	}

	var current *int32
	if err := tx.WithContext(ctx).Model(model).Select("MAX(id)").Scan(&current).Error; err != nil {
		return 0, fmt.Errorf("scanning max id: %w", err)
	}
	if current == nil {
		return 1, nil
	}
	return *current + 1, nil
}
