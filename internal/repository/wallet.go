package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rongwang/railway-server/internal/models"
	"github.com/shopspring/decimal"
)

// Wallet repository methods
func (r *PostgresRepository) GetWalletBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.GetContext(ctx, &balance, `SELECT wallet_balance FROM users WHERE id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
		}
		return decimal.Zero, err
	}

	return balance, nil
}

// AddFunds credits the wallet and appends the matching "add" ledger entry
// in the same transaction
func (r *PostgresRepository) AddFunds(ctx context.Context, userID int64, amount decimal.Decimal) (*models.LedgerEntry, error) {
	entry := &models.LedgerEntry{
		UserID: userID,
		Amount: amount,
		Type:   models.EntryTypeAdd,
	}

	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE users SET wallet_balance = wallet_balance + $1 WHERE id = $2`,
			amount, userID)
		if err != nil {
			return classify(err, "credit wallet")
		}
		if err := requireAffected(res, fmt.Sprintf("user %d", userID)); err != nil {
			return err
		}

		err = tx.QueryRowxContext(ctx,
			`INSERT INTO transactions (user_id, amount, type) VALUES ($1, $2, $3) RETURNING id, timestamp`,
			userID, amount, models.EntryTypeAdd).Scan(&entry.ID, &entry.Timestamp)
		return classify(err, "record ledger entry")
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// ListLedgerEntries returns the user's ledger, newest first
func (r *PostgresRepository) ListLedgerEntries(ctx context.Context, userID int64) ([]models.LedgerEntry, error) {
	query := `
		SELECT id, user_id, amount, type, timestamp
		FROM transactions
		WHERE user_id = $1
		ORDER BY timestamp DESC, id DESC
	`

	entries := []models.LedgerEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, err
	}

	return entries, nil
}
