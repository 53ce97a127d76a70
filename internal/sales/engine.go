// Package sales implements sale recording and reconciliation: every sale's
// profit fields are derived from its inputs and the item's cost, and the
// item's on-hand and sold counters move with every create, update and delete.
package sales

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/resell/internal/model"
	"github.com/erazemk/resell/internal/store"
)

// Engine records, updates and reverses sales against a SQL store. Each
// operation runs in a single transaction.
type Engine struct {
	DB *sql.DB
}

// NewEngine returns an engine over db.
func NewEngine(db *sql.DB) *Engine {
	return &Engine{DB: db}
}

// RecordSale validates in, computes the sale's profit from the item's current
// purchase price, stores it and moves quantity_sold units from on-hand to sold.
func (e *Engine) RecordSale(ctx context.Context, ownerID int64, in CreateSaleInput) (*model.Sale, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	var saleID int64
	err := store.WithTx(ctx, e.DB, func(tx *sql.Tx) error {
		item, err := store.GetItem(ctx, tx, in.ItemID, ownerID)
		if err != nil {
			return persistence(err)
		}
		if item == nil {
			return fmt.Errorf("%w: item %d", ErrNotFound, in.ItemID)
		}

		s := &model.Sale{UserID: ownerID, ItemID: item.ID}
		in.apply(s)

		if s.QuantitySold > item.QuantityOnHand {
			return fmt.Errorf("%w: only %d available", ErrInsufficientStock, item.QuantityOnHand)
		}
		applyProfit(s, item.PurchasePrice)

		if err := adjust(ctx, tx, item, -s.QuantitySold, s.QuantitySold); err != nil {
			return err
		}

		saleID, err = store.InsertSale(ctx, tx, s)
		if err != nil {
			return persistence(err)
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	return e.reload(ctx, saleID, ownerID)
}

// UpdateSale replaces the sale's mutable fields, recomputes its profit with
// the item's current purchase price and reconciles the quantity difference.
// Lowering the quantity always succeeds; raising it needs enough stock on hand.
func (e *Engine) UpdateSale(ctx context.Context, ownerID, saleID int64, in SaleFields) (*model.Sale, error) {
	if saleID <= 0 {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	if err := validate(in); err != nil {
		return nil, err
	}

	err := store.WithTx(ctx, e.DB, func(tx *sql.Tx) error {
		s, err := store.GetSale(ctx, tx, saleID, ownerID)
		if err != nil {
			return persistence(err)
		}
		if s == nil {
			return fmt.Errorf("%w: sale %d", ErrNotFound, saleID)
		}

		item, err := store.GetItem(ctx, tx, s.ItemID, ownerID)
		if err != nil {
			return persistence(err)
		}
		if item == nil {
			return fmt.Errorf("%w: item %d", ErrNotFound, s.ItemID)
		}

		oldQty := s.QuantitySold
		in.apply(s)
		diff := s.QuantitySold - oldQty

		if diff > 0 && item.QuantityOnHand < diff {
			return fmt.Errorf("%w: need %d more, only %d available", ErrInsufficientStock, diff, item.QuantityOnHand)
		}
		applyProfit(s, item.PurchasePrice)

		if err := store.UpdateSale(ctx, tx, s); err != nil {
			return persistence(err)
		}
		if diff != 0 {
			return adjust(ctx, tx, item, -diff, diff)
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	return e.reload(ctx, saleID, ownerID)
}

// DeleteSale reverses a sale: its units go back on hand and the row is
// removed. A missing sale is ErrNotFound. If the sale's item no longer
// exists the row is still removed.
func (e *Engine) DeleteSale(ctx context.Context, ownerID, saleID int64) error {
	if saleID <= 0 {
		return fmt.Errorf("%w: id is required", ErrInvalidInput)
	}

	err := store.WithTx(ctx, e.DB, func(tx *sql.Tx) error {
		s, err := store.GetSale(ctx, tx, saleID, ownerID)
		if err != nil {
			return persistence(err)
		}
		if s == nil {
			return fmt.Errorf("%w: sale %d", ErrNotFound, saleID)
		}

		item, err := store.GetItem(ctx, tx, s.ItemID, ownerID)
		if err != nil {
			return persistence(err)
		}
		if item != nil {
			if err := adjust(ctx, tx, item, s.QuantitySold, -s.QuantitySold); err != nil {
				return err
			}
		}

		if err := store.DeleteSale(ctx, tx, saleID, ownerID); err != nil {
			return persistence(err)
		}
		return nil
	})
	return classify(err)
}

// MarkPurchased validates a purchase confirmation and turns the shopping-list
// entry into a new inventory item, returning the item's ID.
func (e *Engine) MarkPurchased(ctx context.Context, ownerID int64, in PurchaseInput) (int64, error) {
	if err := validate(in); err != nil {
		return 0, err
	}

	itemID, err := store.MarkPurchased(ctx, e.DB, store.PurchaseParams{
		UserID:         ownerID,
		EntryID:        in.ShoppingListID,
		ActualPrice:    *in.ActualPrice,
		ActualLocation: in.ActualLocation,
		Quantity:       *in.Quantity,
		PurchaseDate:   in.PurchaseDate,
	})
	if errors.Is(err, store.ErrEntryNotFound) {
		return 0, fmt.Errorf("%w: shopping list entry %d", ErrNotFound, in.ShoppingListID)
	}
	if err != nil {
		return 0, persistence(err)
	}
	return itemID, nil
}

// adjust moves item counters by the given deltas. A conflict means another
// writer changed the counters since item was read.
func adjust(ctx context.Context, tx *sql.Tx, item *model.Item, onHandDelta, soldDelta int) error {
	err := store.AdjustItemQuantities(ctx, tx, item.ID, item.UserID, onHandDelta, soldDelta)
	if errors.Is(err, store.ErrStockConflict) {
		if onHandDelta < 0 {
			return fmt.Errorf("%w: item %d no longer has %d unit(s) on hand", ErrInsufficientStock, item.ID, -onHandDelta)
		}
		return persistence(fmt.Errorf("item %d: sold counter out of sync: %w", item.ID, err))
	}
	if err != nil {
		return persistence(err)
	}
	return nil
}

func (e *Engine) reload(ctx context.Context, saleID, ownerID int64) (*model.Sale, error) {
	s, err := store.GetSale(ctx, e.DB, saleID, ownerID)
	if err != nil {
		return nil, persistence(err)
	}
	if s == nil {
		return nil, fmt.Errorf("%w: sale %d", ErrNotFound, saleID)
	}
	return s, nil
}

func persistence(err error) error {
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}

// classify tags errors that escaped the transaction helper (begin, commit)
// as persistence failures and leaves engine errors alone.
func classify(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range []error{ErrInvalidInput, ErrNotFound, ErrInsufficientStock, ErrPersistence} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return persistence(err)
}
