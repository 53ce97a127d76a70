package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShoppingEntry is an intent to restock. Marking it purchased turns it into a
// new Item and removes the entry.
type ShoppingEntry struct {
	ID                int64            `json:"id"`
	UserID            int64            `json:"user_id"`
	Name              string           `json:"name"`
	Category          string           `json:"category,omitempty"`
	TargetPrice       *decimal.Decimal `json:"target_price,omitempty"`
	PreferredLocation string           `json:"preferred_location,omitempty"`
	Quantity          int              `json:"quantity"`
	Notes             string           `json:"notes,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
}
