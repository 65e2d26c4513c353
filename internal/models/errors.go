package models

import "errors"

// Sentinel errors shared by the repository, service and API layers.
// Callers wrap them with context and match with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNoFieldsProvided   = errors.New("no valid fields provided for update")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
)
