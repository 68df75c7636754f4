//go:generate go run go.uber.org/mock/mockgen -source=user_service.go -destination=../mocks/mock_user_service.go -package=mocks
package services

import (
	"context"
	"fmt"

	"dm-relay/domain"
	"dm-relay/errors"
	"dm-relay/repositories"
)

const searchResultLimit = 20

type IUserService interface {
	Search(ctx context.Context, term string, excludeID domain.UserID) ([]domain.Profile, error)
}

// UserService serves directory lookups for the outer surface.
type UserService struct {
	userRepository repositories.IUserRepository
}

func NewUserService(repo repositories.IUserRepository) IUserService {
	return &UserService{userRepository: repo}
}

// Search finds users by username or display name, excluding the
// requesting user from the results.
func (s *UserService) Search(ctx context.Context, term string, excludeID domain.UserID) ([]domain.Profile, error) {
	profiles, err := s.userRepository.Search(ctx, term, excludeID, searchResultLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStore, err)
	}
	return profiles, nil
}
