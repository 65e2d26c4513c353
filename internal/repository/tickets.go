package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rongwang/railway-server/internal/models"
	"github.com/shopspring/decimal"
)

// PurchaseTicket debits the buyer, inserts the ticket and records the
// "deduct" ledger entry as one unit. The buyer's row is locked for the
// duration so concurrent purchases cannot both spend the same balance.
func (r *PostgresRepository) PurchaseTicket(ctx context.Context, ticket *models.Ticket) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		var balance decimal.Decimal
		err := tx.GetContext(ctx, &balance,
			`SELECT wallet_balance FROM users WHERE id = $1 FOR UPDATE`, ticket.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("user %d: %w", ticket.UserID, models.ErrNotFound)
			}
			return fmt.Errorf("lock wallet: %w", err)
		}

		if balance.LessThan(ticket.Price) {
			return fmt.Errorf("balance %s below price %s: %w",
				balance.StringFixed(2), ticket.Price.StringFixed(2), models.ErrInsufficientFunds)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE users SET wallet_balance = wallet_balance - $1 WHERE id = $2`,
			ticket.Price, ticket.UserID)
		if err != nil {
			return classify(err, "debit wallet")
		}

		err = tx.QueryRowxContext(ctx,
			`INSERT INTO tickets (user_id, train_id, from_station, to_station, price, is_valid) VALUES ($1, $2, $3, $4, $5, TRUE) RETURNING id, timestamp, is_valid`,
			ticket.UserID, ticket.TrainID, ticket.FromStation, ticket.ToStation, ticket.Price).
			Scan(&ticket.ID, &ticket.Timestamp, &ticket.IsValid)
		if err != nil {
			return classify(err, "create ticket")
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO transactions (user_id, amount, type) VALUES ($1, $2, $3)`,
			ticket.UserID, ticket.Price, models.EntryTypeDeduct)
		return classify(err, "record ledger entry")
	})
}

func (r *PostgresRepository) ListTickets(ctx context.Context, userID int64) ([]models.Ticket, error) {
	query := `
		SELECT id, user_id, train_id, from_station, to_station, price, timestamp, is_valid
		FROM tickets
		WHERE user_id = $1
		ORDER BY timestamp DESC, id DESC
	`

	tickets := []models.Ticket{}
	if err := r.db.SelectContext(ctx, &tickets, query, userID); err != nil {
		return nil, err
	}

	return tickets, nil
}

// Both queries read the time of day and date from $1 in the session time
// zone, the same zone that stamps tickets.timestamp.
const expireAnyStopQuery = `
	UPDATE tickets SET is_valid = FALSE
	WHERE is_valid = TRUE AND EXISTS (
		SELECT 1 FROM train_stops ts
		WHERE ts.train_id = tickets.train_id
		AND ts.departure_time < ($1::timestamptz)::time
	)
`

const expireDepartureStopQuery = `
	UPDATE tickets SET is_valid = FALSE
	WHERE is_valid = TRUE AND EXISTS (
		SELECT 1 FROM train_stops ts
		WHERE ts.train_id = tickets.train_id
		AND ts.station_id = tickets.from_station
		AND (tickets.timestamp::date < ($1::timestamptz)::date
			OR (tickets.timestamp::date = ($1::timestamptz)::date AND ts.departure_time < ($1::timestamptz)::time))
	)
`

// ExpireTickets invalidates lapsed tickets and returns how many changed.
// Only valid tickets are touched, so repeating a run at the same instant
// changes nothing.
func (r *PostgresRepository) ExpireTickets(ctx context.Context, strategy models.ExpiryStrategy, now time.Time) (int64, error) {
	var query string
	switch strategy {
	case models.ExpireAnyStop, "":
		query = expireAnyStopQuery
	case models.ExpireDepartureStop:
		query = expireDepartureStopQuery
	default:
		return 0, fmt.Errorf("unknown expiry strategy %q: %w", strategy, models.ErrValidation)
	}

	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("expire tickets: %w", err)
	}

	return res.RowsAffected()
}
