package services_test

import (
	"testing"
	"time"

	"dm-relay/auth"
	"dm-relay/errors"
	"dm-relay/mocks"
	"dm-relay/repositories"
	"dm-relay/services"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := services.NewAuthService(mockRepo, 24*time.Hour)

	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)
		username := "alice"
		password := "ComplexPass123!"

		// Expect CreateUser to be called with a hashed password (not the plain one)
		mockRepo.EXPECT().
			CreateUser(username, "Alice", gomock.Not(gomock.Eq(password))).
			DoAndReturn(func(username, displayName, passwordHash string) (repositories.User, error) {
				match, err := auth.ComparePassword(password, passwordHash)
				require.NoError(t, err)
				require.True(t, match)
				return repositories.User{ID: 1, Username: username, DisplayName: displayName}, nil
			}).
			Times(1)

		token, err := svc.Register(username, "Alice", password)

		req.NoError(err)
		req.NotEmpty(token)
	})

	t.Run("should fail when password is too weak", func(t *testing.T) {
		req := require.New(t)

		// Repository must never be reached with an invalid password.
		_, err := svc.Register("bob", "Bob", "nodigitsorupper!")

		req.Error(err)
		req.ErrorIs(err, errors.ErrInvalidPassword)
	})

	t.Run("should report a malformed username as a registration error", func(t *testing.T) {
		req := require.New(t)

		_, err := svc.Register("a!", "Bob", "ComplexPass123!")

		req.ErrorIs(err, errors.ErrInvalidRegistration)
		req.NotErrorIs(err, errors.ErrInvalidPassword)
	})

	t.Run("should propagate username conflicts", func(t *testing.T) {
		req := require.New(t)
		password := "ComplexPass123!"

		mockRepo.EXPECT().
			CreateUser("alice", "Alice Two", gomock.Any()).
			Return(repositories.User{}, errors.ErrUserAlreadyExists).
			Times(1)

		_, err := svc.Register("alice", "Alice Two", password)

		req.ErrorIs(err, errors.ErrUserAlreadyExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := services.NewAuthService(mockRepo, 24*time.Hour)

	password := "ComplexPass123!"
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	stored := repositories.User{
		ID:           7,
		Username:     "alice",
		DisplayName:  "Alice",
		PasswordHash: hash,
	}

	t.Run("should return a token carrying the user identity", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().GetByUsername("alice").Return(stored, nil).Times(1)

		token, err := svc.Login("alice", password)

		req.NoError(err)
		claims, err := auth.ValidateToken(string(token))
		req.NoError(err)
		req.Equal(int64(7), claims.UserID)
		req.Equal("Alice", claims.DisplayName)
	})

	t.Run("should mask unknown usernames", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().GetByUsername("ghost").Return(repositories.User{}, errors.ErrUserNotFound).Times(1)

		_, err := svc.Login("ghost", password)

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should mask wrong passwords", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().GetByUsername("alice").Return(stored, nil).Times(1)

		_, err := svc.Login("alice", "WrongPass123!")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})
}
