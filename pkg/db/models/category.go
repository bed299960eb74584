package models

import "github.com/lib/pq"

// Category owns an array of product ids, like Brand but many-per-product.
type Category struct {
	ID       int32         `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Name     string        `gorm:"column:name;not null" json:"name"`
	Products pq.Int32Array `gorm:"column:products;type:integer[];not null" json:"products"`
}
