// Package auth links Telegram identities to backend API credentials. The
// conversation engine only reads the linked account to perform finalize
// calls; linking itself happens through the /login flow.
package auth

import (
	"errors"
	"time"
)

// ErrNotLinked is returned when a Telegram user has no linked account.
var ErrNotLinked = errors.New("auth: account not linked")

// Account binds a Telegram user to their backend API token.
type Account struct {
	TelegramID  int64     `db:"telegram_id"`
	APIToken    string    `db:"api_token"`
	DisplayName string    `db:"display_name"`
	LinkedAt    time.Time `db:"linked_at"`
}
