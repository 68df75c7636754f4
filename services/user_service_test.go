package services_test

import (
	"context"
	"testing"

	"dm-relay/domain"
	"dm-relay/errors"
	"dm-relay/mocks"
	"dm-relay/services"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestUserService_Search(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := services.NewUserService(mockRepo)

	t.Run("should pass the caller exclusion and cap down to the repository", func(t *testing.T) {
		req := require.New(t)
		expected := []domain.Profile{{ID: 2, Username: "bob", DisplayName: "Bob"}}

		// 20 is the fixed directory result cap
		mockRepo.EXPECT().
			Search(ctx, "bo", domain.UserID(1), 20).
			Return(expected, nil)

		profiles, err := svc.Search(ctx, "bo", 1)

		req.NoError(err)
		req.Equal(expected, profiles)
	})

	t.Run("should wrap repository failures as store errors", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			Search(ctx, "bo", domain.UserID(1), 20).
			Return(nil, errors.ErrStore)

		_, err := svc.Search(ctx, "bo", 1)

		req.ErrorIs(err, errors.ErrStore)
	})
}
