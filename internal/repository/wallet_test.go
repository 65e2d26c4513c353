package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rongwang/railway-server/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetWalletBalance(t *testing.T) {
	ctx := context.Background()
	query := q("SELECT wallet_balance FROM users WHERE id = $1")

	t.Run("balance", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		mock.ExpectQuery(query).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"wallet_balance"}).AddRow("70.00"))

		balance, err := repo.GetWalletBalance(ctx, 1)
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromInt(70)))
	})

	t.Run("unknown user", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		mock.ExpectQuery(query).
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"wallet_balance"}))

		_, err := repo.GetWalletBalance(ctx, 2)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestAddFunds(t *testing.T) {
	ctx := context.Background()
	amount := decimal.NewFromInt(100)
	credit := q("UPDATE users SET wallet_balance = wallet_balance + $1 WHERE id = $2")

	t.Run("credit and ledger entry commit together", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		now := time.Date(2024, 10, 18, 9, 30, 0, 0, time.UTC)

		mock.ExpectBegin()
		mock.ExpectExec(credit).
			WithArgs(amount, int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(q("INSERT INTO transactions (user_id, amount, type) VALUES ($1, $2, $3) RETURNING id, timestamp")).
			WithArgs(int64(1), amount, models.EntryTypeAdd).
			WillReturnRows(sqlmock.NewRows([]string{"id", "timestamp"}).AddRow(int64(21), now))
		mock.ExpectCommit()

		entry, err := repo.AddFunds(ctx, 1, amount)
		require.NoError(t, err)
		assert.Equal(t, int64(21), entry.ID)
		assert.Equal(t, models.EntryTypeAdd, entry.Type)
		assert.Equal(t, now, entry.Timestamp)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown user writes no ledger entry", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		mock.ExpectBegin()
		mock.ExpectExec(credit).
			WithArgs(amount, int64(9)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := repo.AddFunds(ctx, 9, amount)
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListLedgerEntries(t *testing.T) {
	repo, mock := newMockRepository(t)
	later := time.Date(2024, 10, 18, 10, 0, 0, 0, time.UTC)
	earlier := later.Add(-time.Hour)

	mock.ExpectQuery(q("FROM transactions WHERE user_id = $1 ORDER BY timestamp DESC, id DESC")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "amount", "type", "timestamp"}).
			AddRow(int64(2), int64(1), "30.00", "deduct", later).
			AddRow(int64(1), int64(1), "100.00", "add", earlier))

	entries, err := repo.ListLedgerEntries(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.EntryTypeDeduct, entries[0].Type)
	assert.True(t, entries[1].Amount.Equal(decimal.NewFromInt(100)))
}
