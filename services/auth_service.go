//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=../mocks/mock_auth_service.go -package=mocks
package services

import (
	"fmt"
	"time"

	"dm-relay/auth"
	"dm-relay/errors"
	"dm-relay/repositories"
)

type IAuthService interface {
	Register(username, displayName, password string) (Token, error)
	Login(username, password string) (Token, error)
}

type Token string

// AuthService issues the identity tokens the relay's admission step
// consumes. It is the concrete Authenticator behind the Verifier.
type AuthService struct {
	userRepository repositories.IUserRepository
	tokenDuration  time.Duration
}

func NewAuthService(repo repositories.IUserRepository, tokenDuration time.Duration) IAuthService {
	return &AuthService{userRepository: repo, tokenDuration: tokenDuration}
}

func (s *AuthService) Register(username, displayName, password string) (Token, error) {
	valReq := auth.RegisterRequest{
		Username:    username,
		DisplayName: displayName,
		Password:    password,
	}

	// Business rules first (username format, password complexity),
	// before any expensive cryptographic operation. The validation
	// sentinels pass through untouched so the caller can tell a bad
	// username from a weak password.
	if err := auth.ValidateRegister(valReq); err != nil {
		return "", err
	}

	// Hashing happens in the service layer to keep the repository
	// unaware of plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	user, err := s.userRepository.CreateUser(username, displayName, hashedPassword)
	if err != nil {
		return "", err // Propagates ErrUserAlreadyExists when the name is taken
	}

	token, err := auth.GenerateToken(user.ID, user.DisplayName, s.tokenDuration)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}

	return Token(token), nil
}

func (s *AuthService) Login(username, password string) (Token, error) {
	user, err := s.userRepository.GetByUsername(username)
	if err != nil {
		// Generic error to prevent user enumeration attacks
		return "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.DisplayName, s.tokenDuration)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}

	return Token(token), nil
}
