package sales

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/erazemk/resell/internal/model"
	"github.com/erazemk/resell/internal/store"
)

// Totals aggregates a set of sales.
type Totals struct {
	Sales       int             `json:"sales"`
	Units       int             `json:"units"`
	Revenue     decimal.Decimal `json:"revenue"`
	Fees        decimal.Decimal `json:"fees"`
	GrossProfit decimal.Decimal `json:"gross_profit"`
	NetProfit   decimal.Decimal `json:"net_profit"`
	// Margin is net profit over revenue, in percent; zero without revenue.
	Margin decimal.Decimal `json:"profit_margin"`
}

// PlatformTotals is Totals for one platform.
type PlatformTotals struct {
	Platform model.Platform `json:"platform"`
	Totals
}

// Summary is a profit report over an optional date range.
type Summary struct {
	From       string           `json:"from,omitempty"`
	To         string           `json:"to,omitempty"`
	Totals     Totals           `json:"totals"`
	ByPlatform []PlatformTotals `json:"by_platform"`
}

func (t *Totals) add(s *model.Sale) {
	t.Sales++
	t.Units += s.QuantitySold
	t.Revenue = t.Revenue.Add(s.Revenue())
	t.Fees = t.Fees.Add(s.TotalFees())
	t.GrossProfit = t.GrossProfit.Add(s.GrossProfit)
	t.NetProfit = t.NetProfit.Add(s.NetProfit)
}

func (t *Totals) finish() {
	if t.Revenue.IsPositive() {
		t.Margin = t.NetProfit.Div(t.Revenue).Mul(hundred).Round(2)
	}
}

// Summarize builds a Summary from already loaded sales. Platforms without
// sales are omitted from ByPlatform; order follows model.Platforms.
func Summarize(sales []model.Sale) Summary {
	var sum Summary
	per := make(map[model.Platform]*PlatformTotals)

	for i := range sales {
		s := &sales[i]
		sum.Totals.add(s)

		pt, ok := per[s.Platform]
		if !ok {
			pt = &PlatformTotals{Platform: s.Platform}
			per[s.Platform] = pt
		}
		pt.add(s)
	}

	sum.Totals.finish()
	sum.ByPlatform = []PlatformTotals{}
	for _, p := range model.Platforms {
		if pt, ok := per[p]; ok {
			pt.finish()
			sum.ByPlatform = append(sum.ByPlatform, *pt)
		}
	}
	return sum
}

// Summary reports totals for the owner's sales dated within [from, to].
// Empty bounds are open.
func (e *Engine) Summary(ctx context.Context, ownerID int64, from, to string) (*Summary, error) {
	sales, err := store.ListSales(ctx, e.DB, store.SaleFilter{UserID: ownerID, From: from, To: to})
	if err != nil {
		return nil, persistence(fmt.Errorf("loading sales for summary: %w", err))
	}

	sum := Summarize(sales)
	sum.From, sum.To = from, to
	return &sum, nil
}
