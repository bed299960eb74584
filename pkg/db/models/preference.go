package models

// Preference is the per-user settings row. It currently carries no fields
// beyond the key; it exists so user creation and deletion stay symmetric
// once settings arrive.
type Preference struct {
	UserID int32 `gorm:"column:user_id;primaryKey;autoIncrement:false" json:"user_id"`
}
