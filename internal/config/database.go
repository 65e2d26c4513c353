package config

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// SetupDatabase initializes the database connection
func SetupDatabase(cfg *Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	if err := CreateTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

// schema lists the DDL statements in dependency order
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email VARCHAR(100) UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		wallet_balance NUMERIC(12,2) NOT NULL DEFAULT 0 CHECK (wallet_balance >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS stations (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		location VARCHAR(100) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS trains (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) UNIQUE NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS train_stops (
		id BIGSERIAL PRIMARY KEY,
		train_id BIGINT NOT NULL REFERENCES trains(id) ON DELETE CASCADE,
		station_id BIGINT NOT NULL REFERENCES stations(id) ON DELETE CASCADE,
		arrival_time TIME NOT NULL,
		departure_time TIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		train_id BIGINT NOT NULL REFERENCES trains(id) ON DELETE CASCADE,
		from_station BIGINT NOT NULL REFERENCES stations(id) ON DELETE CASCADE,
		to_station BIGINT NOT NULL REFERENCES stations(id) ON DELETE CASCADE,
		price NUMERIC(12,2) NOT NULL,
		timestamp TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		is_valid BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		amount NUMERIC(12,2) NOT NULL,
		type VARCHAR(6) NOT NULL CHECK (type IN ('add', 'deduct')),
		timestamp TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	"CREATE INDEX IF NOT EXISTS idx_train_stops_train_id ON train_stops(train_id)",
	"CREATE INDEX IF NOT EXISTS idx_tickets_valid_train ON tickets(train_id) WHERE is_valid",
	"CREATE INDEX IF NOT EXISTS idx_transactions_user_ts ON transactions(user_id, timestamp DESC)",
}

// CreateTables creates the necessary tables in the database
func CreateTables(db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
