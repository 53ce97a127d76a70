package sales

import (
	"github.com/shopspring/decimal"

	"github.com/erazemk/resell/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Profit holds the derived money fields of a sale.
type Profit struct {
	Gross  decimal.Decimal
	Net    decimal.Decimal
	Margin decimal.Decimal
}

// ComputeProfit derives gross profit, net profit and margin percent for a
// sale of quantity units at salePrice each, against the item's unit cost.
// Margin is zero unless salePrice is strictly positive.
func ComputeProfit(salePrice, unitCost decimal.Decimal, quantity int, fees ...decimal.Decimal) Profit {
	qty := decimal.NewFromInt(int64(quantity))

	gross := salePrice.Sub(unitCost).Mul(qty)
	net := gross
	for _, f := range fees {
		net = net.Sub(f)
	}

	margin := decimal.Zero
	if salePrice.IsPositive() {
		margin = net.Div(salePrice.Mul(qty)).Mul(hundred)
	}

	return Profit{Gross: gross, Net: net, Margin: margin}
}

// applyProfit recomputes s's derived fields from its inputs and unitCost.
func applyProfit(s *model.Sale, unitCost decimal.Decimal) {
	p := ComputeProfit(s.SalePrice, unitCost, s.QuantitySold, s.PlatformFees, s.ShippingCost, s.OtherFees)
	s.GrossProfit = p.Gross
	s.NetProfit = p.Net
	s.ProfitMargin = p.Margin
}
