package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rongwang/railway-server/internal/models"
	"github.com/shopspring/decimal"
)

// Repository interface defines the methods that any repository implementation must satisfy
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	// Catalog operations
	CreateStation(ctx context.Context, station *models.Station) error
	UpdateStation(ctx context.Context, id int64, patch models.StationPatch) error
	DeleteStation(ctx context.Context, id int64) error
	ListStations(ctx context.Context) ([]models.Station, error)
	CreateTrain(ctx context.Context, train *models.Train, stops []models.TrainStop) error
	UpdateTrainStop(ctx context.Context, trainID, stopID int64, patch models.StopPatch) error
	DeleteTrain(ctx context.Context, id int64) error
	ListTrainSchedules(ctx context.Context) ([]models.TrainSchedule, error)

	// Wallet operations
	GetWalletBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
	AddFunds(ctx context.Context, userID int64, amount decimal.Decimal) (*models.LedgerEntry, error)
	ListLedgerEntries(ctx context.Context, userID int64) ([]models.LedgerEntry, error)

	// Ticket operations
	PurchaseTicket(ctx context.Context, ticket *models.Ticket) error
	ListTickets(ctx context.Context, userID int64) ([]models.Ticket, error)
	ExpireTickets(ctx context.Context, strategy models.ExpiryStrategy, now time.Time) (int64, error)
}

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// GetDB returns the underlying database connection
func (r *PostgresRepository) GetDB() *sqlx.DB {
	return r.db
}

// withTx runs fn inside a transaction. The transaction commits only when fn
// returns nil; any error or panic rolls it back.
func (r *PostgresRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Postgres error codes the repository maps onto domain errors
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// classify maps constraint violations onto sentinel errors and leaves
// everything else untouched
func classify(err error, what string) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pgForeignKeyViolation:
			return fmt.Errorf("%s references a missing row (%s): %w", what, pqErr.Constraint, models.ErrNotFound)
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", what, models.ErrConflict)
		}
	}

	return fmt.Errorf("%s: %w", what, err)
}

// requireAffected turns a zero-row UPDATE/DELETE into ErrNotFound
func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	return nil
}

// User repository methods
func (r *PostgresRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id, wallet_balance`

	err := r.db.QueryRowxContext(ctx, query, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.WalletBalance)

	return classify(err, "create user")
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, email, password_hash, wallet_balance FROM users WHERE email = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	return &user, nil
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, email, password_hash, wallet_balance FROM users WHERE id = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	return &user, nil
}
