package store

import (
	"database/sql"
	"fmt"

	"github.com/mwilkes/arcadia/internal/model"
)

type WalletStore struct {
	db *sql.DB
}

func NewWalletStore(db *sql.DB) *WalletStore {
	return &WalletStore{db: db}
}

func (s *WalletStore) Balance(userID int64) (int, error) {
	var balance int
	err := s.db.QueryRow(`SELECT wallet_balance FROM users WHERE id = ?`, userID).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return balance, nil
}

// Deduct atomically subtracts amount from the user's balance and appends a
// ledger row with the negated delta. The balance check and the decrement are
// one conditional UPDATE, so concurrent deductions for the same user cannot
// drive the balance negative. Returns ErrInsufficientFunds when amount
// exceeds the current balance.
func (s *WalletStore) Deduct(userID int64, amount int, reason, category string) error {
	if amount < 0 {
		return fmt.Errorf("deduct: negative amount %d", amount)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin deduct: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE users SET wallet_balance = wallet_balance - ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND wallet_balance >= ?`,
		amount, userID, amount,
	)
	if err != nil {
		return fmt.Errorf("deduct balance: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deduct rows affected: %w", err)
	}
	if affected == 0 {
		return ErrInsufficientFunds
	}

	if _, err := tx.Exec(
		`INSERT INTO wallet_transactions (user_id, delta, reason, category) VALUES (?, ?, ?, ?)`,
		userID, -amount, reason, category,
	); err != nil {
		return fmt.Errorf("insert ledger row: %w", err)
	}

	return tx.Commit()
}

// Credit adds amount to the user's balance and appends a ledger row.
func (s *WalletStore) Credit(userID int64, amount int, reason, category string) error {
	if amount < 0 {
		return fmt.Errorf("credit: negative amount %d", amount)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin credit: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`UPDATE users SET wallet_balance = wallet_balance + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		amount, userID,
	); err != nil {
		return fmt.Errorf("credit balance: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO wallet_transactions (user_id, delta, reason, category) VALUES (?, ?, ?, ?)`,
		userID, amount, reason, category,
	); err != nil {
		return fmt.Errorf("insert ledger row: %w", err)
	}

	return tx.Commit()
}

func scanTransaction(scanner interface{ Scan(...any) error }) (*model.WalletTransaction, error) {
	var t model.WalletTransaction
	err := scanner.Scan(&t.ID, &t.UserID, &t.Delta, &t.Reason, &t.Category, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Transactions returns the user's ledger, newest first.
func (s *WalletStore) Transactions(userID int64, page, pageSize int) ([]model.WalletTransaction, int, error) {
	if page < 1 {
		page = 1
	}

	var total int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM wallet_transactions WHERE user_id = ?`, userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT id, user_id, delta, reason, category, created_at
		 FROM wallet_transactions WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		userID, pageSize, (page-1)*pageSize,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []model.WalletTransaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, *t)
	}
	return txs, total, rows.Err()
}
