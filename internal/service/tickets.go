package service

import (
	"context"
	"fmt"

	"github.com/rongwang/railway-server/internal/models"
)

// PurchaseTicket buys a ticket with the caller-supplied price. The debit,
// ticket row and ledger entry are committed together or not at all.
func (s *DefaultService) PurchaseTicket(ctx context.Context, userID int64, req models.PurchaseTicketRequest) (*models.Ticket, error) {
	if req.TrainID <= 0 || req.FromStation <= 0 || req.ToStation <= 0 {
		return nil, fmt.Errorf("train and station ids must be positive: %w", models.ErrValidation)
	}
	if !req.Price.IsPositive() {
		return nil, fmt.Errorf("price must be positive: %w", models.ErrValidation)
	}
	if !models.IsWholeCents(req.Price) {
		return nil, fmt.Errorf("price %s has more than %d decimal places: %w", req.Price, models.MoneyPlaces, models.ErrValidation)
	}

	ticket := &models.Ticket{
		UserID:      userID,
		TrainID:     req.TrainID,
		FromStation: req.FromStation,
		ToStation:   req.ToStation,
		Price:       req.Price,
	}

	if err := s.repo.PurchaseTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("error purchasing ticket: %w", err)
	}

	s.metrics.TicketPurchased()
	s.logger.Info("ticket purchased",
		"ticket_id", ticket.ID,
		"user_id", userID,
		"train_id", ticket.TrainID,
		"price", ticket.Price.String(),
	)
	return ticket, nil
}

func (s *DefaultService) ListTickets(ctx context.Context, userID int64) ([]models.Ticket, error) {
	tickets, err := s.repo.ListTickets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing tickets: %w", err)
	}
	return tickets, nil
}
