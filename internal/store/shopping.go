package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/erazemk/resell/internal/model"
)

// ErrEntryNotFound is returned by MarkPurchased when the shopping-list entry
// does not exist or belongs to another user.
var ErrEntryNotFound = errors.New("shopping list entry not found")

// PurchaseParams describes a confirmed purchase of a shopping-list entry.
type PurchaseParams struct {
	UserID         int64
	EntryID        int64
	ActualPrice    decimal.Decimal
	ActualLocation string
	Quantity       int
	PurchaseDate   string
}

// CreateShoppingEntry adds an entry to a user's shopping list.
func CreateShoppingEntry(ctx context.Context, q Querier, e *model.ShoppingEntry) (*model.ShoppingEntry, error) {
	var target sql.NullString
	if e.TargetPrice != nil {
		target = sql.NullString{String: e.TargetPrice.String(), Valid: true}
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO shopping_list (user_id, name, category, target_price, preferred_location, quantity, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Name, nullString(e.Category), target, nullString(e.PreferredLocation), e.Quantity, nullString(e.Notes),
	)
	if err != nil {
		return nil, fmt.Errorf("creating shopping list entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting shopping list entry id: %w", err)
	}

	return GetShoppingEntry(ctx, q, id, e.UserID)
}

// GetShoppingEntry returns a shopping-list entry by ID if it belongs to userID.
func GetShoppingEntry(ctx context.Context, q Querier, id, userID int64) (*model.ShoppingEntry, error) {
	e, err := scanShoppingEntry(q.QueryRowContext(ctx,
		`SELECT id, user_id, name, category, target_price, preferred_location, quantity, notes, created_at
		 FROM shopping_list WHERE id = ? AND user_id = ?`, id, userID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting shopping list entry: %w", err)
	}
	return e, nil
}

// ListShoppingEntries returns a user's shopping list, oldest first.
func ListShoppingEntries(ctx context.Context, q Querier, userID int64) ([]model.ShoppingEntry, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, user_id, name, category, target_price, preferred_location, quantity, notes, created_at
		 FROM shopping_list WHERE user_id = ? ORDER BY created_at, id`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing shopping list: %w", err)
	}
	defer rows.Close()

	var entries []model.ShoppingEntry
	for rows.Next() {
		e, err := scanShoppingEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning shopping list entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// DeleteShoppingEntry removes an entry from a user's shopping list.
func DeleteShoppingEntry(ctx context.Context, q Querier, id, userID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM shopping_list WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting shopping list entry: %w", err)
	}
	return nil
}

// MarkPurchased converts a shopping-list entry into a new inventory item and
// removes the entry, in one transaction. It always creates a new item batch,
// named and categorised after the entry, and returns the new item's ID.
func MarkPurchased(ctx context.Context, db *sql.DB, p PurchaseParams) (int64, error) {
	var itemID int64
	err := WithTx(ctx, db, func(tx *sql.Tx) error {
		entry, err := GetShoppingEntry(ctx, tx, p.EntryID, p.UserID)
		if err != nil {
			return err
		}
		if entry == nil {
			return ErrEntryNotFound
		}

		itemID, err = insertItem(ctx, tx, ItemParams{
			UserID:           p.UserID,
			Name:             entry.Name,
			Category:         entry.Category,
			PurchasePrice:    p.ActualPrice,
			Quantity:         p.Quantity,
			PurchaseLocation: p.ActualLocation,
			PurchaseDate:     p.PurchaseDate,
			Notes:            entry.Notes,
		})
		if err != nil {
			return err
		}

		return DeleteShoppingEntry(ctx, tx, entry.ID, p.UserID)
	})
	if err != nil {
		return 0, err
	}
	return itemID, nil
}

func scanShoppingEntry(row rowScanner) (*model.ShoppingEntry, error) {
	e := &model.ShoppingEntry{}
	var category, target, location, notes sql.NullString
	err := row.Scan(&e.ID, &e.UserID, &e.Name, &category, &target, &location, &e.Quantity, &notes, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Category = category.String
	e.PreferredLocation = location.String
	e.Notes = notes.String
	if target.Valid {
		d, err := decimal.NewFromString(target.String)
		if err != nil {
			return nil, fmt.Errorf("parsing target price: %w", err)
		}
		e.TargetPrice = &d
	}
	return e, nil
}
