package sales

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/resell/internal/db"
	"github.com/erazemk/resell/internal/model"
	"github.com/erazemk/resell/internal/store"
)

type fixture struct {
	engine *Engine
	db     *sql.DB
	seller int64
	item   *model.Item
}

// newFixture returns an engine with one seller owning an item bought at
// purchase price 10 with 5 units on hand.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, db.NewTestDB(t))
}

// newFileDB opens a database file with the production pool settings, so
// concurrent transactions really use separate connections.
func newFileDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "resell.sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.EnsureSchema(database))
	return database
}

func newFixtureOn(t *testing.T, database *sql.DB) *fixture {
	t.Helper()
	ctx := context.Background()

	user, err := store.CreateUser(ctx, database, "alice", "hash", model.RoleSeller)
	require.NoError(t, err)

	item, err := store.CreateItem(ctx, database, store.ItemParams{
		UserID:        user.ID,
		Name:          "Vintage camera",
		PurchasePrice: dec("10"),
		Quantity:      5,
	})
	require.NoError(t, err)

	return &fixture{engine: NewEngine(database), db: database, seller: user.ID, item: item}
}

func (f *fixture) reloadItem(t *testing.T) *model.Item {
	t.Helper()
	item, err := store.GetItem(context.Background(), f.db, f.item.ID, f.seller)
	require.NoError(t, err)
	require.NotNil(t, item)
	return item
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(n int) *int { return &n }

func assertDecimal(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "%s: want %s, got %s", field, want, got)
}

// fields is the 25/unit, 2 units, fees 3 + shipping 2 sale.
func fields(qty int) SaleFields {
	return SaleFields{
		Platform:     model.PlatformEbay,
		SalePrice:    decPtr("25"),
		SaleDate:     "2024-06-01",
		QuantitySold: intPtr(qty),
		PlatformFees: decPtr("3"),
		ShippingCost: decPtr("2"),
		OtherFees:    decPtr("0"),
	}
}

func (f *fixture) record(t *testing.T, qty int) *model.Sale {
	t.Helper()
	s, err := f.engine.RecordSale(context.Background(), f.seller, CreateSaleInput{ItemID: f.item.ID, SaleFields: fields(qty)})
	require.NoError(t, err)
	return s
}

func TestRecordSaleComputesProfitAndMovesStock(t *testing.T) {
	f := newFixture(t)

	s := f.record(t, 2)

	assertDecimal(t, "30", s.GrossProfit, "gross_profit")
	assertDecimal(t, "25", s.NetProfit, "net_profit")
	assertDecimal(t, "50", s.ProfitMargin, "profit_margin")
	assert.Equal(t, "Vintage camera", s.ItemName)
	assert.Equal(t, model.PlatformEbay, s.Platform)

	item := f.reloadItem(t)
	assert.Equal(t, 3, item.QuantityOnHand)
	assert.Equal(t, 2, item.QuantitySold)
	assert.Equal(t, item.QuantityPurchased, item.QuantityOnHand+item.QuantitySold)
}

func TestRecordSaleDefaultsFeesToZero(t *testing.T) {
	f := newFixture(t)

	s, err := f.engine.RecordSale(context.Background(), f.seller, CreateSaleInput{
		ItemID: f.item.ID,
		SaleFields: SaleFields{
			Platform:     model.PlatformPoshmark,
			SalePrice:    decPtr("12.50"),
			SaleDate:     "2024-06-01",
			QuantitySold: intPtr(1),
		},
	})
	require.NoError(t, err)

	assertDecimal(t, "0", s.PlatformFees, "platform_fees")
	assertDecimal(t, "0", s.ShippingCost, "shipping_cost")
	assertDecimal(t, "0", s.OtherFees, "other_fees")
	assertDecimal(t, "2.5", s.NetProfit, "net_profit")
	assertDecimal(t, "20", s.ProfitMargin, "profit_margin")
}

func TestRecordSaleZeroPriceHasZeroMargin(t *testing.T) {
	f := newFixture(t)

	in := CreateSaleInput{ItemID: f.item.ID, SaleFields: fields(1)}
	in.SalePrice = decPtr("0")
	s, err := f.engine.RecordSale(context.Background(), f.seller, in)
	require.NoError(t, err)

	assertDecimal(t, "-10", s.GrossProfit, "gross_profit")
	assertDecimal(t, "-15", s.NetProfit, "net_profit")
	assertDecimal(t, "0", s.ProfitMargin, "profit_margin")
}

func TestRecordSaleExactlyOnHand(t *testing.T) {
	f := newFixture(t)

	f.record(t, 5)

	item := f.reloadItem(t)
	assert.Equal(t, 0, item.QuantityOnHand)
	assert.Equal(t, 5, item.QuantitySold)
}

func TestRecordSaleOneMoreThanOnHandFails(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.RecordSale(context.Background(), f.seller, CreateSaleInput{ItemID: f.item.ID, SaleFields: fields(6)})
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "only 5 available")

	item := f.reloadItem(t)
	assert.Equal(t, 5, item.QuantityOnHand)
	assert.Equal(t, 0, item.QuantitySold)

	sales, err := store.ListSales(context.Background(), f.db, store.SaleFilter{UserID: f.seller})
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestRecordSaleUnknownItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.RecordSale(ctx, f.seller, CreateSaleInput{ItemID: f.item.ID + 100, SaleFields: fields(1)})
	require.ErrorIs(t, err, ErrNotFound)

	other, err := store.CreateUser(ctx, f.db, "bob", "hash", model.RoleSeller)
	require.NoError(t, err)
	_, err = f.engine.RecordSale(ctx, other.ID, CreateSaleInput{ItemID: f.item.ID, SaleFields: fields(1)})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRecordSaleInvalidInput(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		mutate func(*CreateSaleInput)
		want   string
	}{
		{"missing item", func(in *CreateSaleInput) { in.ItemID = 0 }, "item_id"},
		{"negative price", func(in *CreateSaleInput) { in.SalePrice = decPtr("-1") }, "sale_price"},
		{"missing price", func(in *CreateSaleInput) { in.SalePrice = nil }, "sale_price"},
		{"zero quantity", func(in *CreateSaleInput) { in.QuantitySold = intPtr(0) }, "quantity_sold"},
		{"missing quantity", func(in *CreateSaleInput) { in.QuantitySold = nil }, "quantity_sold"},
		{"unknown platform", func(in *CreateSaleInput) { in.Platform = "etsy" }, "platform"},
		{"bad date", func(in *CreateSaleInput) { in.SaleDate = "June 1st" }, "sale_date"},
		{"negative fee", func(in *CreateSaleInput) { in.ShippingCost = decPtr("-0.01") }, "shipping_cost"},
		{"tiny negative price", func(in *CreateSaleInput) { in.SalePrice = decPtr("-1e-400") }, "sale_price"},
		{"tiny negative fee", func(in *CreateSaleInput) { in.OtherFees = decPtr("-1e-400") }, "other_fees"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := CreateSaleInput{ItemID: f.item.ID, SaleFields: fields(1)}
			tt.mutate(&in)

			_, err := f.engine.RecordSale(context.Background(), f.seller, in)
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	item := f.reloadItem(t)
	assert.Equal(t, 5, item.QuantityOnHand)
}

func TestUpdateSaleBeyondStockFails(t *testing.T) {
	f := newFixture(t)
	s := f.record(t, 2)

	// 3 on hand, raising from 2 to 6 needs 4 more.
	_, err := f.engine.UpdateSale(context.Background(), f.seller, s.ID, fields(6))
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "need 4 more, only 3 available")

	item := f.reloadItem(t)
	assert.Equal(t, 3, item.QuantityOnHand)
	assert.Equal(t, 2, item.QuantitySold)

	unchanged, err := store.GetSale(context.Background(), f.db, s.ID, f.seller)
	require.NoError(t, err)
	assert.Equal(t, 2, unchanged.QuantitySold)
	assertDecimal(t, "25", unchanged.NetProfit, "net_profit")
}

func TestUpdateSaleUsesAllRemainingStock(t *testing.T) {
	f := newFixture(t)
	s := f.record(t, 2)

	updated, err := f.engine.UpdateSale(context.Background(), f.seller, s.ID, fields(5))
	require.NoError(t, err)
	assert.Equal(t, 5, updated.QuantitySold)

	item := f.reloadItem(t)
	assert.Equal(t, 0, item.QuantityOnHand)
	assert.Equal(t, 5, item.QuantitySold)
}

func TestUpdateSaleReducingQuantity(t *testing.T) {
	f := newFixture(t)
	s := f.record(t, 2)

	updated, err := f.engine.UpdateSale(context.Background(), f.seller, s.ID, fields(1))
	require.NoError(t, err)

	assert.Equal(t, 1, updated.QuantitySold)
	assertDecimal(t, "15", updated.GrossProfit, "gross_profit")
	assertDecimal(t, "10", updated.NetProfit, "net_profit")
	assertDecimal(t, "40", updated.ProfitMargin, "profit_margin")

	item := f.reloadItem(t)
	assert.Equal(t, 4, item.QuantityOnHand)
	assert.Equal(t, 1, item.QuantitySold)

	require.NoError(t, f.engine.DeleteSale(context.Background(), f.seller, s.ID))

	item = f.reloadItem(t)
	assert.Equal(t, 5, item.QuantityOnHand)
	assert.Equal(t, 0, item.QuantitySold)
}

func TestUpdateSaleReplacesAllFields(t *testing.T) {
	f := newFixture(t)
	s := f.record(t, 2)

	// Fees left out of a replace become zero.
	replacement := SaleFields{
		Platform:     model.PlatformMercari,
		SalePrice:    decPtr("30"),
		SaleDate:     "2024-07-15",
		QuantitySold: intPtr(2),
		Notes:        "relisted",
	}
	updated, err := f.engine.UpdateSale(context.Background(), f.seller, s.ID, replacement)
	require.NoError(t, err)

	assert.Equal(t, model.PlatformMercari, updated.Platform)
	assert.Equal(t, "2024-07-15", updated.SaleDate)
	assert.Equal(t, "relisted", updated.Notes)
	assertDecimal(t, "0", updated.PlatformFees, "platform_fees")
	assertDecimal(t, "40", updated.GrossProfit, "gross_profit")
	assertDecimal(t, "40", updated.NetProfit, "net_profit")

	item := f.reloadItem(t)
	assert.Equal(t, 3, item.QuantityOnHand, "same quantity must not move stock")
}

func TestUpdateSaleNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.UpdateSale(context.Background(), f.seller, 999, fields(1))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRecordThenDeleteRestoresCounters(t *testing.T) {
	f := newFixture(t)
	before := f.reloadItem(t)

	s := f.record(t, 3)
	require.NoError(t, f.engine.DeleteSale(context.Background(), f.seller, s.ID))

	after := f.reloadItem(t)
	assert.Equal(t, before.QuantityOnHand, after.QuantityOnHand)
	assert.Equal(t, before.QuantitySold, after.QuantitySold)

	gone, err := store.GetSale(context.Background(), f.db, s.ID, f.seller)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestDeleteSaleNotFound(t *testing.T) {
	f := newFixture(t)

	err := f.engine.DeleteSale(context.Background(), f.seller, 12345)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReadingItemTwiceIsStable(t *testing.T) {
	f := newFixture(t)
	f.record(t, 1)

	first := f.reloadItem(t)
	second := f.reloadItem(t)
	assert.Equal(t, first.QuantityOnHand, second.QuantityOnHand)
	assert.Equal(t, first.QuantitySold, second.QuantitySold)
}

func TestConcurrentSalesNeverOversell(t *testing.T) {
	f := newFixtureOn(t, newFileDB(t))

	const workers = 40
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.RecordSale(context.Background(), f.seller, CreateSaleInput{ItemID: f.item.ID, SaleFields: fields(1)})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, short, other int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrInsufficientStock):
			short++
		default:
			t.Logf("unexpected error: %v", err)
			other++
		}
	}
	assert.Equal(t, 5, ok)
	assert.Equal(t, workers-5, short)
	assert.Zero(t, other)

	item := f.reloadItem(t)
	assert.Equal(t, 0, item.QuantityOnHand)
	assert.Equal(t, 5, item.QuantitySold)

	list, err := store.ListSales(context.Background(), f.db, store.SaleFilter{UserID: f.seller, ItemID: f.item.ID})
	require.NoError(t, err)
	assert.Len(t, list, 5)
}

func TestAdjustWithStaleItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Another writer takes all units after the item was read.
	stale := f.reloadItem(t)
	require.NoError(t, store.AdjustItemQuantities(ctx, f.db, stale.ID, f.seller, -5, 5))

	tests := []struct {
		name         string
		onHand, sold int
		wantMsg      string
		kind         error
	}{
		{"selling more than remains", -1, 1, "no longer has 1 unit", ErrInsufficientStock},
		{"returning more than was sold", 6, -6, "sold counter out of sync", ErrPersistence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := f.db.BeginTx(ctx, nil)
			require.NoError(t, err)
			defer tx.Rollback()

			err = adjust(ctx, tx, stale, tt.onHand, tt.sold)
			require.ErrorIs(t, err, tt.kind)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}

	item := f.reloadItem(t)
	assert.Equal(t, 0, item.QuantityOnHand)
	assert.Equal(t, 5, item.QuantitySold)
}

func TestMarkPurchased(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry, err := store.CreateShoppingEntry(ctx, f.db, &model.ShoppingEntry{UserID: f.seller, Name: "Film reel", Quantity: 1})
	require.NoError(t, err)

	id, err := f.engine.MarkPurchased(ctx, f.seller, PurchaseInput{
		ShoppingListID: entry.ID,
		ActualPrice:    decPtr("3.25"),
		ActualLocation: "Thrift store",
		Quantity:       intPtr(4),
		PurchaseDate:   "2024-08-02",
	})
	require.NoError(t, err)

	item, err := store.GetItem(ctx, f.db, id, f.seller)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "Film reel", item.Name)
	assert.Equal(t, 4, item.QuantityOnHand)

	_, err = f.engine.MarkPurchased(ctx, f.seller, PurchaseInput{
		ShoppingListID: entry.ID,
		ActualPrice:    decPtr("3.25"),
		ActualLocation: "Thrift store",
		Quantity:       intPtr(4),
		PurchaseDate:   "2024-08-02",
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMarkPurchasedInvalidInput(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		in   PurchaseInput
	}{
		{"zero price", PurchaseInput{ShoppingListID: 1, ActualPrice: decPtr("0"), ActualLocation: "x", Quantity: intPtr(1), PurchaseDate: "2024-01-01"}},
		{"missing location", PurchaseInput{ShoppingListID: 1, ActualPrice: decPtr("1"), Quantity: intPtr(1), PurchaseDate: "2024-01-01"}},
		{"zero quantity", PurchaseInput{ShoppingListID: 1, ActualPrice: decPtr("1"), ActualLocation: "x", Quantity: intPtr(0), PurchaseDate: "2024-01-01"}},
		{"missing date", PurchaseInput{ShoppingListID: 1, ActualPrice: decPtr("1"), ActualLocation: "x", Quantity: intPtr(1)}},
		{"tiny negative price", PurchaseInput{ShoppingListID: 1, ActualPrice: decPtr("-1e-400"), ActualLocation: "x", Quantity: intPtr(1), PurchaseDate: "2024-01-01"}},
		{"missing entry", PurchaseInput{ActualPrice: decPtr("1"), ActualLocation: "x", Quantity: intPtr(1), PurchaseDate: "2024-01-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.MarkPurchased(context.Background(), f.seller, tt.in)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
