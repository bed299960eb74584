package models

import "time"

// ReceivedOrder is the terminal phase of an order. GrossAmount is the
// quantity originally ordered; ActuallyReceived and Damaged record what
// physically arrived. The id is unrelated to the pending order it came from.
type ReceivedOrder struct {
	ID               int32      `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Received         *time.Time `gorm:"column:received" json:"received"`
	ProductID        int32      `gorm:"column:product_id;not null" json:"product_id"`
	GrossAmount      float64    `gorm:"column:gross_amount;not null" json:"gross_amount"`
	ActuallyReceived float64    `gorm:"column:actually_received;not null" json:"actually_received"`
	Damaged          float64    `gorm:"column:damaged;not null" json:"damaged"`
}
