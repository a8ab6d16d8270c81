package model

import "time"

// WalletTransaction is one append-only ledger row. The sum of a user's
// deltas always equals their current wallet_balance.
type WalletTransaction struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Delta     int       `json:"delta"`
	Reason    string    `json:"reason"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}
