package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jmkoster/stockroom-backend/api/responses"
	"github.com/jmkoster/stockroom-backend/api/validators"
	"github.com/jmkoster/stockroom-backend/internal/catalog"
	product "github.com/jmkoster/stockroom-backend/internal/products"
	"github.com/jmkoster/stockroom-backend/pkg/logger"
	"github.com/jmkoster/stockroom-backend/pkg/pagination"
)

type createProductRequest struct {
	UPC                 string           `json:"upc" validate:"required,max=100"`
	Name                string           `json:"name" validate:"required,max=200"`
	Description         string           `json:"description,omitempty"`
	CaseSize            *int32           `json:"case_size,omitempty" validate:"omitempty,min=1"`
	MeasureByWeight     bool             `json:"measure_by_weight"`
	CostPricePerUnit    decimal.Decimal  `json:"cost_price_per_unit"`
	SellingPricePerUnit decimal.Decimal  `json:"selling_price_per_unit"`
	SaleEnd             *time.Time       `json:"sale_end,omitempty"`
	BuyLevel            *float64         `json:"buy_level,omitempty" validate:"omitempty,gte=0"`
	SalePrice           *decimal.Decimal `json:"sale_price,omitempty"`
	BrandID             *int32           `json:"brand_id,omitempty" validate:"omitempty,min=1"`
	CategoryIDs         []int32          `json:"category_ids,omitempty" validate:"omitempty,dive,min=1"`
	SupplierIDs         []int32          `json:"supplier_ids,omitempty" validate:"omitempty,dive,min=1"`
}

type updateProductRequest struct {
	UPC                 *string          `json:"upc,omitempty" validate:"omitempty,min=1,max=100"`
	Name                *string          `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description         *string          `json:"description,omitempty"`
	CaseSize            *int32           `json:"case_size,omitempty" validate:"omitempty,min=1"`
	MeasureByWeight     *bool            `json:"measure_by_weight,omitempty"`
	CostPricePerUnit    *decimal.Decimal `json:"cost_price_per_unit,omitempty"`
	SellingPricePerUnit *decimal.Decimal `json:"selling_price_per_unit,omitempty"`
	SaleEnd             *time.Time       `json:"sale_end,omitempty"`
	BuyLevel            *float64         `json:"buy_level,omitempty" validate:"omitempty,gte=0"`
	SalePrice           *decimal.Decimal `json:"sale_price,omitempty"`
}

// CreateProduct handles the product builder: the row plus its initial brand,
// category and supplier links land in one transaction.
func CreateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), product.CreateInput{
			UPC:                 validators.SanitizeString(payload.UPC, 100),
			Name:                validators.SanitizeString(payload.Name, 200),
			Description:         payload.Description,
			CaseSize:            payload.CaseSize,
			MeasureByWeight:     payload.MeasureByWeight,
			CostPricePerUnit:    payload.CostPricePerUnit,
			SellingPricePerUnit: payload.SellingPricePerUnit,
			SaleEnd:             payload.SaleEnd,
			BuyLevel:            payload.BuyLevel,
			SalePrice:           payload.SalePrice,
			BrandID:             payload.BrandID,
			CategoryIDs:         payload.CategoryIDs,
			SupplierIDs:         payload.SupplierIDs,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func GetProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.Int32Param(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, row)
	}
}

func ListProducts(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context(), pagination.FromRequest(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}

// ProductNames serves the (id, name, upc) picker projection.
func ProductNames(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := svc.Names(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, names)
	}
}

func UpdateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.Int32Param(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), id, product.UpdateInput{
			UPC:                 payload.UPC,
			Name:                payload.Name,
			Description:         payload.Description,
			CaseSize:            payload.CaseSize,
			MeasureByWeight:     payload.MeasureByWeight,
			CostPricePerUnit:    payload.CostPricePerUnit,
			SellingPricePerUnit: payload.SellingPricePerUnit,
			SaleEnd:             payload.SaleEnd,
			BuyLevel:            payload.BuyLevel,
			SalePrice:           payload.SalePrice,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

// DeleteProduct removes the product, its orders and every array membership in
// one transaction.
func DeleteProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.Int32Param(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"deleted": id})
	}
}

// AttachProductOwner links a product into one owner's products array. The
// owner id rides in the path parameter named by ownerParam.
func AttachProductOwner(svc product.Service, kind catalog.Kind, ownerParam string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.Int32Param(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ownerID, err := validators.Int32Param(r, ownerParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Attach(r.Context(), productID, kind, ownerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"product_id": productID, string(kind) + "_id": ownerID})
	}
}

// DetachProductOwner removes every occurrence of the product from one owner's
// products array.
func DetachProductOwner(svc product.Service, kind catalog.Kind, ownerParam string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.Int32Param(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ownerID, err := validators.Int32Param(r, ownerParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Detach(r.Context(), productID, kind, ownerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"product_id": productID, string(kind) + "_id": ownerID})
	}
}

// ProductBrand returns the product's brand, or null when it has none.
func ProductBrand(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.Int32Param(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		brand, err := svc.BrandOf(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, brand)
	}
}

func ProductCategories(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.Int32Param(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		categories, err := svc.CategoriesOf(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, categories)
	}
}

func ProductSuppliers(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.Int32Param(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		suppliers, err := svc.SuppliersOf(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, suppliers)
	}
}
