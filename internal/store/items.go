package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/erazemk/resell/internal/model"
)

// ItemParams holds the fields of a new inventory batch.
type ItemParams struct {
	UserID           int64
	Name             string
	Category         string
	PurchasePrice    decimal.Decimal
	Quantity         int
	PurchaseLocation string
	PurchaseDate     string
	Notes            string
}

const itemColumns = `id, user_id, name, category, purchase_price,
	quantity_purchased, quantity_on_hand, quantity_sold,
	purchase_location, purchase_date, notes, archived, created_at, updated_at`

// CreateItem records a new inventory batch with all units on hand.
func CreateItem(ctx context.Context, q Querier, p ItemParams) (*model.Item, error) {
	id, err := insertItem(ctx, q, p)
	if err != nil {
		return nil, err
	}
	return GetItem(ctx, q, id, p.UserID)
}

func insertItem(ctx context.Context, q Querier, p ItemParams) (int64, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO items (user_id, name, category, purchase_price,
		                    quantity_purchased, quantity_on_hand, quantity_sold,
		                    purchase_location, purchase_date, notes)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?, ?)`,
		p.UserID, p.Name, nullString(p.Category), p.PurchasePrice.String(),
		p.Quantity, p.Quantity,
		nullString(p.PurchaseLocation), nullString(p.PurchaseDate), nullString(p.Notes),
	)
	if err != nil {
		return 0, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting item id: %w", err)
	}
	return id, nil
}

// GetItem returns an item by ID if it belongs to userID.
func GetItem(ctx context.Context, q Querier, id, userID int64) (*model.Item, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ? AND user_id = ?`, id, userID,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns a user's items, either the active or the archived ones.
func ListItems(ctx context.Context, q Querier, userID int64, archived bool) ([]model.Item, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items
		 WHERE user_id = ? AND archived = ?
		 ORDER BY name, id`, userID, archived,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// ListLowStockItems returns active items with at most threshold units on hand.
func ListLowStockItems(ctx context.Context, q Querier, userID int64, threshold int) ([]model.Item, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items
		 WHERE user_id = ? AND archived = 0 AND quantity_on_hand <= ?
		 ORDER BY quantity_on_hand, name`, userID, threshold,
	)
	if err != nil {
		return nil, fmt.Errorf("listing low stock items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// UpdateItem updates an item's descriptive fields and archived flag.
// Quantities and cost are not editable here.
func UpdateItem(ctx context.Context, q Querier, id, userID int64, name, category, location, notes string, archived bool) error {
	_, err := q.ExecContext(ctx,
		`UPDATE items SET name = ?, category = ?, purchase_location = ?, notes = ?, archived = ?,
		                  updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		name, nullString(category), nullString(location), nullString(notes), archived, id, userID,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

// AdjustItemQuantities applies relative deltas to an item's on-hand and sold
// counters in a single conditional statement. It returns ErrStockConflict if
// either counter would become negative (or the item does not exist).
func AdjustItemQuantities(ctx context.Context, q Querier, id, userID int64, onHandDelta, soldDelta int) error {
	result, err := q.ExecContext(ctx,
		`UPDATE items
		 SET quantity_on_hand = quantity_on_hand + ?,
		     quantity_sold = quantity_sold + ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?
		   AND quantity_on_hand + ? >= 0
		   AND quantity_sold + ? >= 0`,
		onHandDelta, soldDelta, id, userID, onHandDelta, soldDelta,
	)
	if err != nil {
		return fmt.Errorf("adjusting item quantities: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking adjusted rows: %w", err)
	}
	if n == 0 {
		return ErrStockConflict
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var category, location, purchaseDate, notes sql.NullString
	err := row.Scan(&item.ID, &item.UserID, &item.Name, &category, &item.PurchasePrice,
		&item.QuantityPurchased, &item.QuantityOnHand, &item.QuantitySold,
		&location, &purchaseDate, &notes, &item.Archived, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.Category = category.String
	item.PurchaseLocation = location.String
	item.PurchaseDate = purchaseDate.String
	item.Notes = notes.String
	return item, nil
}

func scanItems(rows *sql.Rows) ([]model.Item, error) {
	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// nullString stores empty strings as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
