package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository stores account links in Postgres.
type Repository struct {
	db *sqlx.DB
}

// NewRepository wraps an open database handle.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Find returns the linked account for a Telegram user.
// Returns ErrNotLinked when there is none.
func (r *Repository) Find(ctx context.Context, telegramID int64) (*Account, error) {
	op := "auth.Repository.Find"
	var acc Account
	err := r.db.GetContext(ctx, &acc,
		`SELECT telegram_id, api_token, display_name, linked_at
		   FROM accounts WHERE telegram_id = $1`, telegramID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotLinked
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &acc, nil
}

// Upsert creates or replaces the account link for a Telegram user.
func (r *Repository) Upsert(ctx context.Context, acc *Account) error {
	op := "auth.Repository.Upsert"
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (telegram_id, api_token, display_name, linked_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (telegram_id)
		 DO UPDATE SET api_token = EXCLUDED.api_token,
		               display_name = EXCLUDED.display_name,
		               linked_at = NOW()`,
		acc.TelegramID, acc.APIToken, acc.DisplayName)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Delete removes the account link, if any.
func (r *Repository) Delete(ctx context.Context, telegramID int64) error {
	op := "auth.Repository.Delete"
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM accounts WHERE telegram_id = $1`, telegramID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
