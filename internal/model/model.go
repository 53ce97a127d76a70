// Package model holds the plain data types shared by the store, the sales
// engine and the API.
package model

import "github.com/shopspring/decimal"

func init() {
	// Money goes over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}
