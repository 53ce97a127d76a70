package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/resell/internal/model"
)

// ErrUserNotFound is returned by account changes aimed at a missing or
// deleted user.
var ErrUserNotFound = errors.New("user not found")

const userColumns = `id, username, password_hash, role, session, created_at, deleted_at`

// Offboarding reports what DeleteUser did to a seller's data.
type Offboarding struct {
	ArchivedItems  int64 `json:"archived_items"`
	RemovedEntries int64 `json:"removed_shopping_entries"`
}

// CreateUser creates a new user.
func CreateUser(ctx context.Context, q Querier, username, passwordHash, role string) (*model.User, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?)`,
		username, passwordHash, role,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, q, id)
}

// GetUser returns a user by ID, including soft-deleted users.
func GetUser(ctx context.Context, q Querier, id int64) (*model.User, error) {
	u, err := scanUser(q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByUsername returns the active user with the given name. Usernames of
// deleted accounts can be reused, so an older deleted row is only returned
// when no active one exists.
func GetUserByUsername(ctx context.Context, q Querier, username string) (*model.User, error) {
	u, err := scanUser(q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?
		 ORDER BY deleted_at IS NOT NULL, id DESC LIMIT 1`, username,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by username: %w", err)
	}
	return u, nil
}

// ListUsers returns all non-deleted users.
func ListUsers(ctx context.Context, q Querier) ([]model.User, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateUser updates a user's role.
func UpdateUser(ctx context.Context, q Querier, id int64, role string) error {
	result, err := q.ExecContext(ctx,
		`UPDATE users SET role = ? WHERE id = ? AND deleted_at IS NULL`,
		role, id,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return requireRow(result, "updating user")
}

// UpdateUserPassword replaces a user's password hash and ends every session
// issued before the change. It returns the new session number.
func UpdateUserPassword(ctx context.Context, q Querier, id int64, passwordHash string) (int, error) {
	var session int
	err := q.QueryRowContext(ctx,
		`UPDATE users SET password_hash = ?, session = session + 1
		 WHERE id = ? AND deleted_at IS NULL
		 RETURNING session`,
		passwordHash, id,
	).Scan(&session)
	if err == sql.ErrNoRows {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("updating user password: %w", err)
	}
	return session, nil
}

// DeleteUser soft-deletes a seller and retires their workspace in one
// transaction: items are archived so they stop showing up as stock or
// restock alerts, the shopping list is cleared, and sessions end. Sales stay
// as the historical record.
func DeleteUser(ctx context.Context, db *sql.DB, id int64) (*Offboarding, error) {
	var off Offboarding
	err := WithTx(ctx, db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE users SET deleted_at = CURRENT_TIMESTAMP, session = session + 1
			 WHERE id = ? AND deleted_at IS NULL`, id,
		)
		if err != nil {
			return fmt.Errorf("deleting user: %w", err)
		}
		if err := requireRow(result, "deleting user"); err != nil {
			return err
		}

		result, err = tx.ExecContext(ctx,
			`UPDATE items SET archived = 1, updated_at = CURRENT_TIMESTAMP
			 WHERE user_id = ? AND archived = 0`, id,
		)
		if err != nil {
			return fmt.Errorf("archiving items of deleted user: %w", err)
		}
		if off.ArchivedItems, err = result.RowsAffected(); err != nil {
			return fmt.Errorf("counting archived items: %w", err)
		}

		result, err = tx.ExecContext(ctx, `DELETE FROM shopping_list WHERE user_id = ?`, id)
		if err != nil {
			return fmt.Errorf("clearing shopping list of deleted user: %w", err)
		}
		if off.RemovedEntries, err = result.RowsAffected(); err != nil {
			return fmt.Errorf("counting removed shopping list entries: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &off, nil
}

func scanUser(row rowScanner) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.Session, &u.CreatedAt, &u.DeletedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// requireRow maps an update that matched nothing to ErrUserNotFound.
func requireRow(result sql.Result, action string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}
