package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/yungbote/lendtrack-backend/internal/data/aggregates"
	"github.com/yungbote/lendtrack-backend/internal/data/repos/user"
	types "github.com/yungbote/lendtrack-backend/internal/domain"
	"github.com/yungbote/lendtrack-backend/internal/platform/ctxutil"
	"github.com/yungbote/lendtrack-backend/internal/platform/logger"
)

type UserService interface {
	GetMe(ctx context.Context) (*types.User, error)
	List(ctx context.Context) ([]*types.User, error)
	Search(ctx context.Context, query string) ([]*types.User, error)
	Get(ctx context.Context, userID uuid.UUID) (*types.User, error)
	// Update renames a user. Only the user themselves may do it.
	Update(ctx context.Context, userID uuid.UUID, name string) (*types.User, error)
	// Delete removes a user account. Only the user themselves may do it.
	Delete(ctx context.Context, userID uuid.UUID) error
	// RegisterDeviceToken stores the push token for the authenticated user.
	// An empty token clears it.
	RegisterDeviceToken(ctx context.Context, token string) error
}

type userService struct {
	log      *logger.Logger
	userRepo user.UserRepo
}

func NewUserService(log *logger.Logger, userRepo user.UserRepo) UserService {
	return &userService{log: log.With("service", "UserService"), userRepo: userRepo}
}

func actorFrom(ctx context.Context) (*ctxutil.RequestData, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("no authenticated user in context")
	}
	return rd, nil
}

func (s *userService) GetMe(ctx context.Context) (*types.User, error) {
	rd, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, nil, rd.UserID)
}

func (s *userService) List(ctx context.Context) ([]*types.User, error) {
	if _, err := actorFrom(ctx); err != nil {
		return nil, err
	}
	return s.userRepo.List(ctx, nil)
}

func (s *userService) Search(ctx context.Context, query string) ([]*types.User, error) {
	if _, err := actorFrom(ctx); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return s.userRepo.List(ctx, nil)
	}
	return s.userRepo.Search(ctx, nil, query)
}

func (s *userService) Get(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	if _, err := actorFrom(ctx); err != nil {
		return nil, err
	}
	u, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, aggregates.MapError("user.get", err)
	}
	return u, nil
}

func (s *userService) Update(ctx context.Context, userID uuid.UUID, name string) (*types.User, error) {
	rd, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if rd.UserID != userID {
		return nil, aggregates.MapError("user.update", aggregates.ForbiddenError("you can only update your own profile"))
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, aggregates.MapError("user.update", aggregates.ValidationError("name is required"))
	}
	if err := s.userRepo.UpdateName(ctx, nil, userID, name); err != nil {
		return nil, aggregates.MapError("user.update", err)
	}
	u, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, aggregates.MapError("user.update", err)
	}
	return u, nil
}

func (s *userService) Delete(ctx context.Context, userID uuid.UUID) error {
	rd, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	if rd.UserID != userID {
		return aggregates.MapError("user.delete", aggregates.ForbiddenError("you can only delete your own account"))
	}
	if _, err := s.userRepo.GetByID(ctx, nil, userID); err != nil {
		return aggregates.MapError("user.delete", err)
	}
	if err := s.userRepo.Delete(ctx, nil, userID); err != nil {
		return aggregates.MapError("user.delete", err)
	}
	return nil
}

func (s *userService) RegisterDeviceToken(ctx context.Context, token string) error {
	rd, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePushToken(ctx, nil, rd.UserID, strings.TrimSpace(token))
}
