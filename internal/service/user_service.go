package service

import (
	"context"
	"strings"

	"proconnect/internal/cache"
	"proconnect/internal/models"
	"proconnect/internal/observability"
	"proconnect/internal/repository"
	"proconnect/internal/validation"
)

type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput carries a partial profile update. Nil fields are left
// unchanged.
type UpdateProfileInput struct {
	UserID string  `json:"-"`
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Bio    *string `json:"bio"`
}

type profileFields struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email,max=255"`
	Bio   string `json:"bio" validate:"max=500"`
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetSelf(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *UserService) UpdateSelf(ctx context.Context, in UpdateProfileInput) (user *models.User, err error) {
	ctx, end := observability.StartSpan(ctx, "UserService.UpdateSelf")
	defer func() { end(err) }()

	user, err = s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	next := profileFields{Name: user.Name, Email: user.Email, Bio: user.Bio}
	if in.Name != nil {
		next.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		next.Email = validation.NormalizeEmail(*in.Email)
	}
	if in.Bio != nil {
		next.Bio = strings.TrimSpace(*in.Bio)
	}
	if err := validation.Struct(next); err != nil {
		return nil, err
	}

	if next.Email != user.Email {
		other, err := s.userRepo.GetByEmail(ctx, next.Email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != user.ID {
			return nil, models.NewValidationError("Email already registered")
		}
	}

	user.Name, user.Email, user.Bio = next.Name, next.Email, next.Bio
	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	cache.InvalidateProfile(ctx, user.ID)
	return user, nil
}

// GetPublicProfile returns another user's profile. The email is included only
// when the viewer is authenticated.
func (s *UserService) GetPublicProfile(ctx context.Context, userID string, viewerAuthenticated bool) (*models.PublicProfile, error) {
	var profile models.PublicProfile
	err := cache.Aside(ctx, cache.ProfileKey(userID), &profile, cache.ProfileTTL, func() error {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		profile = user.Profile()
		profile.Email = user.Email
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !viewerAuthenticated {
		profile.Email = ""
	}
	return &profile, nil
}
