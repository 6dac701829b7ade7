package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"taskboard/internal/services/auth"
	"taskboard/internal/utils/sanitize"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	// ErrWrongPassword is returned when the current password does not match.
	ErrWrongPassword = errors.New("current password is incorrect")
	// ErrUpdateProfile is returned when the store fails during an update.
	ErrUpdateProfile = errors.New("failed to update profile")
	// ErrChangePassword is returned when the store or hasher fails while changing the password.
	ErrChangePassword = errors.New("failed to change password")
)

// Service manages the authenticated user's own profile.
type Service struct {
	repo   auth.UsersRepo
	hasher auth.PasswordHasher
	log    *slog.Logger
}

// NewService creates a new profile service
func NewService(repo auth.UsersRepo, hasher auth.PasswordHasher, log *slog.Logger) *Service {
	return &Service{repo: repo, hasher: hasher, log: log}
}

// UpdateRequest is a partial profile update. Absent fields are left unchanged.
type UpdateRequest struct {
	FullName  *string `json:"fullName" validate:"omitnil,min=1,max=100" example:"Alice Anderson"`
	Email     *string `json:"email" validate:"omitnil,email,max=254" example:"alice@example.com"`
	Bio       *string `json:"bio" validate:"omitnil,max=500" example:"Backend engineer"`
	Location  *string `json:"location" validate:"omitnil,max=100" example:"Lisbon"`
	JobTitle  *string `json:"jobTitle" validate:"omitnil,max=100" example:"Engineer"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,url,max=2048" example:"https://example.com/a.png"`
}

// ChangePasswordRequest carries the current and the new password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required" example:"hunter22"`
	NewPassword     string `json:"newPassword" validate:"required,password" example:"hunter23"`
}

// Get returns the user by id.
func (s *Service) Get(ctx context.Context, userID bson.ObjectID) (*auth.User, error) {
	return s.repo.FindByID(ctx, userID)
}

// Update applies the present fields of req. Free text is sanitized first;
// a name that sanitizes to nothing is rejected.
func (s *Service) Update(ctx context.Context, userID bson.ObjectID, req UpdateRequest) (*auth.User, error) {
	patch := auth.ProfilePatch{
		FullName:  mapPtr(req.FullName, sanitize.Line),
		Email:     mapPtr(req.Email, auth.NormalizeEmail),
		Bio:       mapPtr(req.Bio, sanitize.Clean),
		Location:  mapPtr(req.Location, sanitize.Line),
		JobTitle:  mapPtr(req.JobTitle, sanitize.Line),
		AvatarURL: mapPtr(req.AvatarURL, strings.TrimSpace),
	}
	if patch.FullName != nil && *patch.FullName == "" {
		return nil, auth.ErrInvalidName
	}
	if patch.Empty() {
		return s.repo.FindByID(ctx, userID)
	}

	user, err := s.repo.UpdateProfile(ctx, userID, patch)
	if err != nil {
		if errors.Is(err, auth.ErrDuplicate) || errors.Is(err, auth.ErrUserNotFound) {
			return nil, err
		}
		s.log.Error(ErrUpdateProfile.Error(), "user_id", userID.Hex(), "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUpdateProfile, err)
	}
	return user, nil
}

// ChangePassword replaces the password hash after checking the current
// password. Tokens issued earlier stay valid until they expire.
func (s *Service) ChangePassword(ctx context.Context, userID bson.ObjectID, req ChangePasswordRequest) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(ctx, req.CurrentPassword, user.PasswordHash)
	if err != nil {
		s.log.Error("failed to verify current password", "user_id", userID.Hex(), "error", err)
		return fmt.Errorf("%w: %w", ErrChangePassword, err)
	}
	if !ok {
		return ErrWrongPassword
	}

	hash, err := s.hasher.Hash(ctx, req.NewPassword)
	if err != nil {
		s.log.Error("failed to hash new password", "user_id", userID.Hex(), "error", err)
		return fmt.Errorf("%w: %w", ErrChangePassword, err)
	}

	if err := s.repo.UpdatePasswordHash(ctx, userID, hash); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return err
		}
		s.log.Error(ErrChangePassword.Error(), "user_id", userID.Hex(), "error", err)
		return fmt.Errorf("%w: %w", ErrChangePassword, err)
	}
	return nil
}

func mapPtr(p *string, f func(string) string) *string {
	if p == nil {
		return nil
	}
	v := f(*p)
	return &v
}
