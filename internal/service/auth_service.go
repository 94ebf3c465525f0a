package service

import (
	"context"
	"fmt"

	"car-rental-service/internal/auth"
	"car-rental-service/internal/model"
	"car-rental-service/internal/repository"
)

// AuthService registers users, checks credentials and issues identity tokens.
type AuthService struct {
	users  repository.UserStore
	tokens *auth.Tokens
}

func NewAuthService(users repository.UserStore, tokens *auth.Tokens) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register stores a new user with a hashed password. Duplicate emails are accepted.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("AuthService.Register: hash: %w", err)
	}
	u := &model.User{Name: name, Email: email, Password: hash}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("AuthService.Register: %w", err)
	}
	return u, nil
}

// Login returns the user and a signed token. It fails with ErrNotFound for an unknown
// email and ErrWrongPassword for a hash mismatch.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("AuthService.Login: %w", err)
	}
	if !auth.CheckPassword(u.Password, password) {
		return nil, "", fmt.Errorf("AuthService.Login: %w", ErrWrongPassword)
	}
	token, err := s.tokens.Sign(u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("AuthService.Login: %w", err)
	}
	return u, token, nil
}

func (s *AuthService) Verify(token string) auth.Verification {
	return s.tokens.Verify(token)
}

// Profile re-reads the user behind a verified token.
func (s *AuthService) Profile(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("AuthService.Profile: %w", err)
	}
	return u, nil
}
