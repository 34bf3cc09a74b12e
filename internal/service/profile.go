package service

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/bug-createdme/2share/internal/apperror"
	"github.com/bug-createdme/2share/internal/model"
	"github.com/bug-createdme/2share/internal/repository"
)

// ProfileService reads and edits the account-level profile that seeds new portfolios.
type ProfileService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

func NewProfileService(users repository.UserRepository, logger *slog.Logger) *ProfileService {
	return &ProfileService{users: users, logger: logger}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*model.Profile, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/profile: getting user %s: %w", userID, err)
	}
	p := u.Profile()
	return &p, nil
}

func (s *ProfileService) Update(ctx context.Context, userID string, delta model.ProfileDelta) (*model.Profile, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/profile: getting user %s: %w", userID, err)
	}
	u.Apply(delta)

	if utf8.RuneCountInString(u.Bio) > model.MaxBioLength {
		return nil, apperror.ValidationFailed("bio",
			fmt.Sprintf("bio must be %d characters or less", model.MaxBioLength))
	}
	if u.AvatarURL != "" && !validURL(u.AvatarURL, true) {
		return nil, apperror.ValidationFailed("avatarUrl", "avatar must be an http(s) URL or an uploaded file")
	}
	if err := validateLinks(u.SocialLinks); err != nil {
		return nil, err
	}

	if err := s.users.UpdateProfile(ctx, u); err != nil {
		return nil, fmt.Errorf("service/profile: updating %s: %w", userID, err)
	}
	s.logger.Info("profile updated", slog.String("userID", userID))

	p := u.Profile()
	return &p, nil
}
