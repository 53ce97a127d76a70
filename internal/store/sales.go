package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/resell/internal/model"
)

// SaleFilter narrows ListSales. Zero values mean "any".
type SaleFilter struct {
	UserID   int64
	ItemID   int64
	Platform model.Platform
	From     string
	To       string
}

const saleSelect = `SELECT s.id, s.user_id, s.item_id, s.platform, s.sale_price, s.sale_date,
	       s.quantity_sold, s.platform_fees, s.shipping_cost, s.other_fees,
	       s.gross_profit, s.net_profit, s.profit_margin, s.notes,
	       s.created_at, s.updated_at, COALESCE(i.name, '') AS item_name
	FROM sales s
	LEFT JOIN items i ON i.id = s.item_id`

// InsertSale stores a sale with its derived fields and returns its ID.
func InsertSale(ctx context.Context, q Querier, s *model.Sale) (int64, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO sales (user_id, item_id, platform, sale_price, sale_date, quantity_sold,
		                    platform_fees, shipping_cost, other_fees,
		                    gross_profit, net_profit, profit_margin, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.UserID, s.ItemID, string(s.Platform), s.SalePrice.String(), s.SaleDate, s.QuantitySold,
		s.PlatformFees.String(), s.ShippingCost.String(), s.OtherFees.String(),
		s.GrossProfit.String(), s.NetProfit.String(), s.ProfitMargin.String(), nullString(s.Notes),
	)
	if err != nil {
		return 0, fmt.Errorf("recording sale: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting sale id: %w", err)
	}
	return id, nil
}

// GetSale returns a sale by ID if it belongs to userID.
func GetSale(ctx context.Context, q Querier, id, userID int64) (*model.Sale, error) {
	row := q.QueryRowContext(ctx, saleSelect+` WHERE s.id = ? AND s.user_id = ?`, id, userID)
	s, err := scanSale(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting sale: %w", err)
	}
	return s, nil
}

// UpdateSale replaces a sale's mutable and derived fields. The item
// reference and owner never change.
func UpdateSale(ctx context.Context, q Querier, s *model.Sale) error {
	_, err := q.ExecContext(ctx,
		`UPDATE sales
		 SET platform = ?, sale_price = ?, sale_date = ?, quantity_sold = ?,
		     platform_fees = ?, shipping_cost = ?, other_fees = ?,
		     gross_profit = ?, net_profit = ?, profit_margin = ?, notes = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		string(s.Platform), s.SalePrice.String(), s.SaleDate, s.QuantitySold,
		s.PlatformFees.String(), s.ShippingCost.String(), s.OtherFees.String(),
		s.GrossProfit.String(), s.NetProfit.String(), s.ProfitMargin.String(), nullString(s.Notes),
		s.ID, s.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating sale: %w", err)
	}
	return nil
}

// DeleteSale removes a sale row.
func DeleteSale(ctx context.Context, q Querier, id, userID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM sales WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting sale: %w", err)
	}
	return nil
}

// ListSales returns a user's sales, newest first, optionally filtered.
func ListSales(ctx context.Context, q Querier, f SaleFilter) ([]model.Sale, error) {
	query := saleSelect + ` WHERE s.user_id = ?`
	args := []any{f.UserID}

	if f.ItemID > 0 {
		query += ` AND s.item_id = ?`
		args = append(args, f.ItemID)
	}
	if f.Platform != "" {
		query += ` AND s.platform = ?`
		args = append(args, string(f.Platform))
	}
	if f.From != "" {
		query += ` AND s.sale_date >= ?`
		args = append(args, f.From)
	}
	if f.To != "" {
		query += ` AND s.sale_date <= ?`
		args = append(args, f.To)
	}

	query += ` ORDER BY s.sale_date DESC, s.id DESC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}
	defer rows.Close()

	var sales []model.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sale: %w", err)
		}
		sales = append(sales, *s)
	}
	return sales, rows.Err()
}

func scanSale(row rowScanner) (*model.Sale, error) {
	s := &model.Sale{}
	var platform string
	var notes sql.NullString
	err := row.Scan(&s.ID, &s.UserID, &s.ItemID, &platform, &s.SalePrice, &s.SaleDate,
		&s.QuantitySold, &s.PlatformFees, &s.ShippingCost, &s.OtherFees,
		&s.GrossProfit, &s.NetProfit, &s.ProfitMargin, &notes,
		&s.CreatedAt, &s.UpdatedAt, &s.ItemName)
	if err != nil {
		return nil, err
	}
	s.Platform = model.Platform(platform)
	s.Notes = notes.String
	return s, nil
}
