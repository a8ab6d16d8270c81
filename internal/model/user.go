package model

import "time"

type User struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	Avatar        string    `json:"avatar"`
	Role          string    `json:"role"`
	WalletBalance int       `json:"wallet_balance"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
