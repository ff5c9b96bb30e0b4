package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/mentorportal/mentorportal-api/internal/models"
	appErrors "github.com/mentorportal/mentorportal-api/pkg/errors"
)

type userListRepository interface {
	List(ctx context.Context) ([]models.User, error)
}

// UserService exposes the user directory used for picking review subjects.
type UserService struct {
	repo   userListRepository
	logger *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(repo userListRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, logger: logger}
}

// List returns every user as public directory info. Credential hashes never
// leave the repository layer.
func (s *UserService) List(ctx context.Context) ([]models.UserInfo, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}

	infos := make([]models.UserInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, models.UserInfo{
			ID:       u.ID,
			Email:    u.Email,
			FullName: u.FullName,
			Role:     u.Role,
		})
	}
	return infos, nil
}
