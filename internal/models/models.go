package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money goes over the wire as a JSON number, not a quoted string.
	decimal.MarshalJSONWithoutQuotes = true
}

// MoneyPlaces is the scale of every NUMERIC(12,2) money column
const MoneyPlaces = 2

// IsWholeCents reports whether d is stored without rounding
func IsWholeCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyPlaces))
}

// Ledger entry types
const (
	EntryTypeAdd    = "add"
	EntryTypeDeduct = "deduct"
)

// User represents a registered user and their wallet
type User struct {
	ID            int64           `db:"id" json:"id"`
	Email         string          `db:"email" json:"email"`
	PasswordHash  string          `db:"password_hash" json:"-"`
	WalletBalance decimal.Decimal `db:"wallet_balance" json:"walletBalance"`
}

// Station represents a railway station
type Station struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Location string `db:"location" json:"location"`
}

// Train represents a named train service
type Train struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
}

// TrainStop is a train's scheduled call at one station.
// Times are time-of-day values in HH:MM:SS form.
type TrainStop struct {
	ID            int64  `db:"id" json:"id"`
	TrainID       int64  `db:"train_id" json:"train_id"`
	StationID     int64  `db:"station_id" json:"station_id"`
	ArrivalTime   string `db:"arrival_time" json:"arrival_time"`
	DepartureTime string `db:"departure_time" json:"departure_time"`
}

// Ticket represents a purchased ticket
type Ticket struct {
	ID          int64           `db:"id" json:"id"`
	UserID      int64           `db:"user_id" json:"user_id"`
	TrainID     int64           `db:"train_id" json:"train_id"`
	FromStation int64           `db:"from_station" json:"from_station"`
	ToStation   int64           `db:"to_station" json:"to_station"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Timestamp   time.Time       `db:"timestamp" json:"timestamp"`
	IsValid     bool            `db:"is_valid" json:"is_valid"`
}

// LedgerEntry is one wallet mutation, stored in the transactions table
type LedgerEntry struct {
	ID        int64           `db:"id" json:"id"`
	UserID    int64           `db:"user_id" json:"user_id"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Type      string          `db:"type" json:"type"`
	Timestamp time.Time       `db:"timestamp" json:"timestamp"`
}

// ScheduleStop is a stop as listed in a train schedule
type ScheduleStop struct {
	ID            int64  `json:"id"`
	StationID     int64  `json:"station_id"`
	StationName   string `json:"station_name"`
	ArrivalTime   string `json:"arrival_time"`
	DepartureTime string `json:"departure_time"`
}

// TrainSchedule is a train together with its ordered stops
type TrainSchedule struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Stops       []ScheduleStop `json:"stops"`
}

// StationPatch carries the optional fields of a station update.
// A nil field is left unchanged.
type StationPatch struct {
	Name     *string `json:"name" binding:"omitempty,min=1"`
	Location *string `json:"location" binding:"omitempty,min=1"`
}

// IsEmpty reports whether the patch names no updatable field
func (p StationPatch) IsEmpty() bool {
	return p.Name == nil && p.Location == nil
}

// StopPatch carries the optional fields of a train stop update
type StopPatch struct {
	ArrivalTime   *string `json:"arrival_time" binding:"omitempty,clock"`
	DepartureTime *string `json:"departure_time" binding:"omitempty,clock"`
}

// IsEmpty reports whether the patch names no updatable field
func (p StopPatch) IsEmpty() bool {
	return p.ArrivalTime == nil && p.DepartureTime == nil
}

// ExpiryStrategy selects how the expiry job decides a ticket has lapsed
type ExpiryStrategy string

const (
	// ExpireAnyStop invalidates a ticket once any stop of its train has a
	// departure time-of-day earlier than now. The travel date is ignored.
	ExpireAnyStop ExpiryStrategy = "any_stop"
	// ExpireDepartureStop only looks at the stop at the ticket's from_station
	// and treats the purchase date as the travel date.
	ExpireDepartureStop ExpiryStrategy = "departure_stop"
)

// ParseExpiryStrategy validates a configured strategy name
func ParseExpiryStrategy(s string) (ExpiryStrategy, error) {
	switch ExpiryStrategy(s) {
	case ExpireAnyStop, ExpireDepartureStop:
		return ExpiryStrategy(s), nil
	case "":
		return ExpireAnyStop, nil
	}
	return "", fmt.Errorf("unknown expiry strategy %q: %w", s, ErrValidation)
}
