package service

import (
	"context"
	"fmt"

	"github.com/rongwang/railway-server/internal/auth"
	"github.com/rongwang/railway-server/internal/models"
)

// Authentication methods
func (s *DefaultService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("email and password are required: %w", models.ErrValidation)
	}

	// Check if user already exists
	existingUser, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking user existence: %w", err)
	}

	if existingUser != nil {
		return nil, fmt.Errorf("user with email %s: %w", req.Email, models.ErrConflict)
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hashedPassword,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (s *DefaultService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	// Unknown email and wrong password are indistinguishable to the caller
	if user == nil || !auth.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, models.ErrInvalidCredentials
	}

	token, _, err := s.tokens.IssueToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	return &models.LoginResponse{AccessToken: token}, nil
}

// Logout revokes the presented token until it would have expired
func (s *DefaultService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return models.ErrUnauthorized
	}
	if s.revoker == nil || claims.ExpiresAt == nil {
		return nil
	}

	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if err := s.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("error revoking token: %w", err)
	}
	return nil
}
