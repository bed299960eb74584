package models

// PendingOrder is an order that has been placed but not yet received.
type PendingOrder struct {
	ID        int32   `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	ProductID int32   `gorm:"column:product_id;not null" json:"product_id"`
	Amount    float64 `gorm:"column:amount;not null" json:"amount"`
}
