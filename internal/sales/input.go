package sales

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/erazemk/resell/internal/model"
	"github.com/erazemk/resell/internal/validation"
)

// SaleFields are the mutable fields of a sale. Update replaces all of them;
// omitted fees mean zero, not "unchanged".
type SaleFields struct {
	Platform     model.Platform   `json:"platform" validate:"required,oneof=amazon ebay facebook mercari poshmark other"`
	SalePrice    *decimal.Decimal `json:"sale_price" validate:"required,dgte=0"`
	SaleDate     string           `json:"sale_date" validate:"required,datetime=2006-01-02"`
	QuantitySold *int             `json:"quantity_sold" validate:"required,gt=0"`
	PlatformFees *decimal.Decimal `json:"platform_fees" validate:"omitempty,dgte=0"`
	ShippingCost *decimal.Decimal `json:"shipping_cost" validate:"omitempty,dgte=0"`
	OtherFees    *decimal.Decimal `json:"other_fees" validate:"omitempty,dgte=0"`
	Notes        string           `json:"notes" validate:"max=2000"`
}

// CreateSaleInput is a request to record a new sale of an item.
type CreateSaleInput struct {
	ItemID int64 `json:"item_id" validate:"required,gt=0"`
	SaleFields
}

// PurchaseInput confirms the purchase of a shopping-list entry.
type PurchaseInput struct {
	ShoppingListID int64            `json:"shopping_list_id" validate:"required,gt=0"`
	ActualPrice    *decimal.Decimal `json:"actual_price" validate:"required,dgt=0"`
	ActualLocation string           `json:"actual_location" validate:"required,max=200"`
	Quantity       *int             `json:"quantity" validate:"required,gt=0"`
	PurchaseDate   string           `json:"purchase_date" validate:"required,datetime=2006-01-02"`
}

func validate(in any) error {
	if err := validation.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// apply copies the fields onto s, defaulting absent fees to zero.
func (f *SaleFields) apply(s *model.Sale) {
	s.Platform = f.Platform
	s.SalePrice = *f.SalePrice
	s.SaleDate = f.SaleDate
	s.QuantitySold = *f.QuantitySold
	s.PlatformFees = orZero(f.PlatformFees)
	s.ShippingCost = orZero(f.ShippingCost)
	s.OtherFees = orZero(f.OtherFees)
	s.Notes = f.Notes
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
