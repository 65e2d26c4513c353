package service

import (
	"context"
	"fmt"

	"github.com/rongwang/railway-server/internal/models"
	"github.com/shopspring/decimal"
)

// HistoryTimeLayout is the timestamp format of wallet history entries
const HistoryTimeLayout = "2006-01-02 15:04:05"

func (s *DefaultService) AddFunds(ctx context.Context, userID int64, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive: %w", models.ErrValidation)
	}
	if !models.IsWholeCents(amount) {
		return fmt.Errorf("amount %s has more than %d decimal places: %w", amount, models.MoneyPlaces, models.ErrValidation)
	}

	entry, err := s.repo.AddFunds(ctx, userID, amount)
	if err != nil {
		return fmt.Errorf("error adding funds: %w", err)
	}

	s.metrics.FundsAdded()
	s.logger.Info("funds added", "user_id", userID, "amount", amount.String(), "entry_id", entry.ID)
	return nil
}

func (s *DefaultService) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	balance, err := s.repo.GetWalletBalance(ctx, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error getting balance: %w", err)
	}
	return balance, nil
}

// History returns the user's ledger entries, newest first
func (s *DefaultService) History(ctx context.Context, userID int64) ([]models.HistoryEntry, error) {
	entries, err := s.repo.ListLedgerEntries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting wallet history: %w", err)
	}

	history := make([]models.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		history = append(history, models.HistoryEntry{
			Amount:    e.Amount,
			Type:      e.Type,
			Timestamp: e.Timestamp.Format(HistoryTimeLayout),
		})
	}
	return history, nil
}
