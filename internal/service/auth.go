package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mfarias/autolote/internal/auth"
	"github.com/mfarias/autolote/internal/domain"
	"github.com/mfarias/autolote/internal/repo"
)

// AuthService authenticates the operator account and mints bearer tokens.
type AuthService struct {
	users  repo.UserRepo
	tokens *auth.Manager
}

// NewAuthService constructs an AuthService backed by the provided user repo
// and token manager.
func NewAuthService(users repo.UserRepo, tokens *auth.Manager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Login verifies the credentials and returns a signed bearer token.
// Unknown username and wrong password both map to domain.ErrUnauthorized so
// the response does not leak which check failed.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("service.AuthService.Login: %w", domain.ErrUnauthorized)
		}
		return "", fmt.Errorf("service.AuthService.Login: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", fmt.Errorf("service.AuthService.Login: %w", domain.ErrUnauthorized)
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return "", fmt.Errorf("service.AuthService.Login: %w", err)
	}
	return token, nil
}
