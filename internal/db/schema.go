package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. Money columns hold exact decimal text.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'seller' CHECK (role IN ('admin', 'seller')),
    session       INTEGER NOT NULL DEFAULT 0,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS items (
    id                 INTEGER PRIMARY KEY,
    user_id            INTEGER NOT NULL REFERENCES users(id),
    name               TEXT NOT NULL,
    category           TEXT,
    purchase_price     TEXT NOT NULL DEFAULT '0',
    quantity_purchased INTEGER NOT NULL CHECK (quantity_purchased >= 0),
    quantity_on_hand   INTEGER NOT NULL CHECK (quantity_on_hand >= 0),
    quantity_sold      INTEGER NOT NULL DEFAULT 0 CHECK (quantity_sold >= 0),
    purchase_location  TEXT,
    purchase_date      TEXT,
    notes              TEXT,
    archived           INTEGER NOT NULL DEFAULT 0,
    created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_items_user ON items(user_id);

CREATE TABLE IF NOT EXISTS sales (
    id            INTEGER PRIMARY KEY,
    user_id       INTEGER NOT NULL REFERENCES users(id),
    item_id       INTEGER NOT NULL REFERENCES items(id),
    platform      TEXT NOT NULL CHECK (platform IN ('amazon', 'ebay', 'facebook', 'mercari', 'poshmark', 'other')),
    sale_price    TEXT NOT NULL,
    sale_date     TEXT NOT NULL,
    quantity_sold INTEGER NOT NULL CHECK (quantity_sold > 0),
    platform_fees TEXT NOT NULL DEFAULT '0',
    shipping_cost TEXT NOT NULL DEFAULT '0',
    other_fees    TEXT NOT NULL DEFAULT '0',
    gross_profit  TEXT NOT NULL,
    net_profit    TEXT NOT NULL,
    profit_margin TEXT NOT NULL,
    notes         TEXT,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_sales_user_date ON sales(user_id, sale_date);
CREATE INDEX IF NOT EXISTS idx_sales_item ON sales(item_id);

CREATE TABLE IF NOT EXISTS shopping_list (
    id                 INTEGER PRIMARY KEY,
    user_id            INTEGER NOT NULL REFERENCES users(id),
    name               TEXT NOT NULL,
    category           TEXT,
    target_price       TEXT,
    preferred_location TEXT,
    quantity           INTEGER NOT NULL DEFAULT 1 CHECK (quantity > 0),
    notes              TEXT,
    created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{}

// EnsureSchema creates all tables and indexes if they don't already exist,
// then applies migrations.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}
	return nil
}
