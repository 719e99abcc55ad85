package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cuongbtq/barangay-gigs/internal/api/domain"
)

type UserService struct {
	users     UserStore
	sanitizer TextSanitizer
	logger    *slog.Logger
}

func NewUserService(users UserStore, sanitizer TextSanitizer, logger *slog.Logger) *UserService {
	return &UserService{users: users, sanitizer: sanitizer, logger: logger}
}

func (s *UserService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, wrapStoreErr(s.logger, "get_user", err)
	}
	return user, nil
}

// UpdateProfile changes the caller's barangay and skills
func (s *UserService) UpdateProfile(ctx context.Context, actor domain.Actor, update domain.ProfileUpdate) (*domain.User, error) {
	if update.Barangay != nil {
		b := strings.TrimSpace(s.sanitizer.Text(*update.Barangay))
		if b == "" {
			return nil, domain.NewValidationError("Invalid barangay", "Barangay cannot be empty", "barangay")
		}
		update.Barangay = &b
	}
	if update.Skills != nil {
		update.Skills = domain.NormalizeSkills(s.sanitizer.Texts(update.Skills))
	}

	user, err := s.users.UpdateProfile(ctx, actor.UserID, update)
	if err != nil {
		return nil, wrapStoreErr(s.logger, "update_profile", err)
	}

	s.logger.Info("Profile updated", slog.String("user_id", actor.UserID))
	return user, nil
}

// ListWorkers pages through the verified worker directory
func (s *UserService) ListWorkers(ctx context.Context, filter domain.WorkerFilter) ([]domain.User, int, error) {
	filter.Barangay = strings.TrimSpace(s.sanitizer.Text(filter.Barangay))
	filter.Search = strings.TrimSpace(s.sanitizer.Text(filter.Search))
	filter.Skills = domain.NormalizeSkills(s.sanitizer.Texts(filter.Skills))
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		return nil, 0, domain.NewValidationError("Invalid limit", "limit must be a positive number", "limit")
	}

	users, total, err := s.users.ListWorkers(ctx, filter)
	if err != nil {
		return nil, 0, wrapStoreErr(s.logger, "list_workers", err)
	}
	return users, total, nil
}
