package models

import "github.com/shopspring/decimal"

// Request models
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AddStationRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location" binding:"required"`
}

type StopRequest struct {
	StationID     int64  `json:"station_id" binding:"required,gt=0"`
	ArrivalTime   string `json:"arrival_time" binding:"required,clock"`
	DepartureTime string `json:"departure_time" binding:"required,clock"`
}

type CreateTrainRequest struct {
	Name        string        `json:"name" binding:"required"`
	Description string        `json:"description"`
	Stops       []StopRequest `json:"stops" binding:"required,min=1,dive"`
}

type PurchaseTicketRequest struct {
	TrainID     int64           `json:"train_id" binding:"required,gt=0"`
	FromStation int64           `json:"from_station" binding:"required,gt=0"`
	ToStation   int64           `json:"to_station" binding:"required,gt=0"`
	Price       decimal.Decimal `json:"price" binding:"required,gt=0,money"`
}

type AddFundsRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required,gt=0,money"`
}

// Response models
type MessageResponse struct {
	Message string `json:"message"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

type PurchaseResponse struct {
	Message  string `json:"message"`
	TicketID int64  `json:"ticket_id"`
}

type BalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

type HistoryEntry struct {
	Amount    decimal.Decimal `json:"amount"`
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
