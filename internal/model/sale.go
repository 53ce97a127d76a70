package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Platform is a marketplace a sale was made on.
type Platform string

// Platforms.
const (
	PlatformAmazon   Platform = "amazon"
	PlatformEbay     Platform = "ebay"
	PlatformFacebook Platform = "facebook"
	PlatformMercari  Platform = "mercari"
	PlatformPoshmark Platform = "poshmark"
	PlatformOther    Platform = "other"
)

// Platforms lists every known platform in display order.
var Platforms = []Platform{
	PlatformAmazon,
	PlatformEbay,
	PlatformFacebook,
	PlatformMercari,
	PlatformPoshmark,
	PlatformOther,
}

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// DateLayout is the format of sale and purchase dates.
const DateLayout = "2006-01-02"

// Sale is one sale of some quantity of an item on one platform.
// SalePrice is per unit; the profit fields are derived and never set by clients.
type Sale struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"user_id"`
	ItemID       int64           `json:"item_id"`
	Platform     Platform        `json:"platform"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	SaleDate     string          `json:"sale_date"`
	QuantitySold int             `json:"quantity_sold"`
	PlatformFees decimal.Decimal `json:"platform_fees"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	OtherFees    decimal.Decimal `json:"other_fees"`
	GrossProfit  decimal.Decimal `json:"gross_profit"`
	NetProfit    decimal.Decimal `json:"net_profit"`
	ProfitMargin decimal.Decimal `json:"profit_margin"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	// Joined fields (not always populated).
	ItemName string `json:"item_name,omitempty"`
}

// Revenue is the sale price times the quantity sold.
func (s *Sale) Revenue() decimal.Decimal {
	return s.SalePrice.Mul(decimal.NewFromInt(int64(s.QuantitySold)))
}

// TotalFees is the sum of all fee fields.
func (s *Sale) TotalFees() decimal.Decimal {
	return s.PlatformFees.Add(s.ShippingCost).Add(s.OtherFees)
}
