package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a stocked item. Amount is the current stock level and starts
// at zero; prices are arbitrary-precision decimals.
type Product struct {
	ID                  int32            `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	UPC                 string           `gorm:"column:upc;not null" json:"upc"`
	Name                string           `gorm:"column:name;not null" json:"name"`
	Description         string           `gorm:"column:description;not null" json:"description"`
	Amount              float64          `gorm:"column:amount;not null" json:"amount"`
	CaseSize            *int32           `gorm:"column:case_size" json:"case_size"`
	MeasureByWeight     bool             `gorm:"column:measure_by_weight;not null" json:"measure_by_weight"`
	CostPricePerUnit    decimal.Decimal  `gorm:"column:cost_price_per_unit;type:numeric;not null" json:"cost_price_per_unit"`
	SellingPricePerUnit decimal.Decimal  `gorm:"column:selling_price_per_unit;type:numeric;not null" json:"selling_price_per_unit"`
	SaleEnd             *time.Time       `gorm:"column:sale_end" json:"sale_end"`
	BuyLevel            *float64         `gorm:"column:buy_level" json:"buy_level"`
	SalePrice           *decimal.Decimal `gorm:"column:sale_price;type:numeric" json:"sale_price"`
}
