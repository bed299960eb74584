package product

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/jmkoster/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/jmkoster/stockroom-backend/pkg/errors"
)

func TestValidateCreateInput(t *testing.T) {
	valid := CreateInput{
		UPC:                 "036000291452",
		Name:                "whole milk",
		CostPricePerUnit:    decimal.NewFromFloat(1.25),
		SellingPricePerUnit: decimal.NewFromFloat(2.49),
	}
	if err := validateCreateInput(valid); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}

	cases := []struct {
		name  string
		input CreateInput
	}{
		{"missing upc", CreateInput{Name: "milk", CostPricePerUnit: decimal.New(1, 0), SellingPricePerUnit: decimal.New(2, 0)}},
		{"missing name", CreateInput{UPC: "036000291452", CostPricePerUnit: decimal.New(1, 0), SellingPricePerUnit: decimal.New(2, 0)}},
		{"negative cost", CreateInput{UPC: "036000291452", Name: "milk", CostPricePerUnit: decimal.New(-1, 0), SellingPricePerUnit: decimal.New(2, 0)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateCreateInput(tc.input)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestApplyUpdateToProductTrimsAndCopies(t *testing.T) {
	product := &models.Product{
		UPC:  "old-upc",
		Name: "old name",
	}

	newUPC := "  036000291452  "
	newName := " Whole Milk "
	newCost := decimal.NewFromFloat(1.50)
	weight := true

	err := applyUpdateToProduct(product, UpdateInput{
		UPC:              &newUPC,
		Name:             &newName,
		CostPricePerUnit: &newCost,
		MeasureByWeight:  &weight,
	})
	if err != nil {
		t.Fatalf("applyUpdateToProduct: %v", err)
	}

	if product.UPC != "036000291452" {
		t.Fatalf("expected trimmed upc, got %q", product.UPC)
	}
	if product.Name != "Whole Milk" {
		t.Fatalf("expected trimmed name, got %q", product.Name)
	}
	if !product.CostPricePerUnit.Equal(newCost) {
		t.Fatalf("expected updated cost, got %s", product.CostPricePerUnit)
	}
	if !product.MeasureByWeight {
		t.Fatal("expected measure_by_weight to be set")
	}
}

func TestApplyUpdateToProduct_PartialLeavesRest(t *testing.T) {
	cost := decimal.NewFromFloat(1.25)
	product := &models.Product{
		UPC:              "036000291452",
		Name:             "whole milk",
		Amount:           12,
		CostPricePerUnit: cost,
	}

	desc := "gallon jug"
	if err := applyUpdateToProduct(product, UpdateInput{Description: &desc}); err != nil {
		t.Fatalf("applyUpdateToProduct: %v", err)
	}
	if product.UPC != "036000291452" || product.Name != "whole milk" || product.Amount != 12 {
		t.Fatal("fields not present in the update must be untouched")
	}
	if product.Description != "gallon jug" {
		t.Fatalf("expected updated description, got %q", product.Description)
	}
}

func TestApplyUpdateToProduct_RejectsBlankName(t *testing.T) {
	product := &models.Product{Name: "milk"}
	blank := "  "
	err := applyUpdateToProduct(product, UpdateInput{Name: &blank})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if product.Name != "milk" {
		t.Fatal("failed update must not mutate the product")
	}
}

func TestApplyUpdateToProduct_RejectsNegativePrice(t *testing.T) {
	product := &models.Product{}
	negative := decimal.NewFromFloat(-0.01)
	err := applyUpdateToProduct(product, UpdateInput{SellingPricePerUnit: &negative})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
