package store

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/resell/internal/db"
	"github.com/erazemk/resell/internal/model"
)

func TestShoppingListCRUD(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seller := newSeller(t, database, "alice")

	target := decimal.RequireFromString("15")
	entry, err := CreateShoppingEntry(ctx, database, &model.ShoppingEntry{
		UserID:      seller,
		Name:        "Vintage Levi's",
		Category:    "clothing",
		TargetPrice: &target,
		Quantity:    2,
	})
	require.NoError(t, err)
	require.NotNil(t, entry.TargetPrice)
	assert.True(t, entry.TargetPrice.Equal(target))

	entries, err := ListShoppingEntries(ctx, database, seller)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, DeleteShoppingEntry(ctx, database, entry.ID, seller))
	entries, err = ListShoppingEntries(ctx, database, seller)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMarkPurchased(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seller := newSeller(t, database, "alice")

	entry, err := CreateShoppingEntry(ctx, database, &model.ShoppingEntry{
		UserID:   seller,
		Name:     "Pyrex bowl",
		Category: "kitchen",
		Quantity: 1,
	})
	require.NoError(t, err)

	itemID, err := MarkPurchased(ctx, database, PurchaseParams{
		UserID:         seller,
		EntryID:        entry.ID,
		ActualPrice:    decimal.RequireFromString("4.99"),
		ActualLocation: "Estate sale",
		Quantity:       3,
		PurchaseDate:   "2024-07-04",
	})
	require.NoError(t, err)

	item, err := GetItem(ctx, database, itemID, seller)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "Pyrex bowl", item.Name)
	assert.Equal(t, "kitchen", item.Category)
	assert.Equal(t, 3, item.QuantityPurchased)
	assert.Equal(t, 3, item.QuantityOnHand)
	assert.Zero(t, item.QuantitySold)
	assert.True(t, item.PurchasePrice.Equal(decimal.RequireFromString("4.99")))
	assert.Equal(t, "Estate sale", item.PurchaseLocation)

	gone, err := GetShoppingEntry(ctx, database, entry.ID, seller)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestMarkPurchasedMissingEntry(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	alice := newSeller(t, database, "alice")
	bob := newSeller(t, database, "bob")

	entry, err := CreateShoppingEntry(ctx, database, &model.ShoppingEntry{UserID: alice, Name: "Lamp", Quantity: 1})
	require.NoError(t, err)

	_, err = MarkPurchased(ctx, database, PurchaseParams{
		UserID:         bob,
		EntryID:        entry.ID,
		ActualPrice:    decimal.RequireFromString("1"),
		ActualLocation: "Flea market",
		Quantity:       1,
		PurchaseDate:   "2024-07-04",
	})
	require.ErrorIs(t, err, ErrEntryNotFound)

	items, err := ListItems(ctx, database, bob, false)
	require.NoError(t, err)
	assert.Empty(t, items)

	still, err := GetShoppingEntry(ctx, database, entry.ID, alice)
	require.NoError(t, err)
	assert.NotNil(t, still)
}
