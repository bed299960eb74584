package models

import "github.com/lib/pq"

// Brand owns an array of product ids. The array is the single source of
// truth for brand membership; products carry no back reference.
type Brand struct {
	ID       int32         `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Name     string        `gorm:"column:name;not null" json:"name"`
	Products pq.Int32Array `gorm:"column:products;type:integer[];not null" json:"products"`
}
