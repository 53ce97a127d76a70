package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is one batch of inventory bought at a single cost basis.
//
// QuantityOnHand + QuantitySold == QuantityPurchased holds for every item
// whose counters are only touched by sale operations.
type Item struct {
	ID                int64           `json:"id"`
	UserID            int64           `json:"user_id"`
	Name              string          `json:"name"`
	Category          string          `json:"category,omitempty"`
	PurchasePrice     decimal.Decimal `json:"purchase_price"`
	QuantityPurchased int             `json:"quantity_purchased"`
	QuantityOnHand    int             `json:"quantity_on_hand"`
	QuantitySold      int             `json:"quantity_sold"`
	PurchaseLocation  string          `json:"purchase_location,omitempty"`
	PurchaseDate      string          `json:"purchase_date,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	Archived          bool            `json:"archived"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// InventoryValue is the cost basis of the units still on hand.
func (i *Item) InventoryValue() decimal.Decimal {
	return i.PurchasePrice.Mul(decimal.NewFromInt(int64(i.QuantityOnHand)))
}
