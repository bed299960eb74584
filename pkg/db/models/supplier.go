package models

import "github.com/lib/pq"

// Supplier owns an array of product ids plus optional contact details.
type Supplier struct {
	ID          int32         `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Name        string        `gorm:"column:name;not null" json:"name"`
	PhoneNumber *string       `gorm:"column:phone_number" json:"phone_number"`
	Email       *string       `gorm:"column:email" json:"email"`
	Products    pq.Int32Array `gorm:"column:products;type:integer[];not null" json:"products"`
}
