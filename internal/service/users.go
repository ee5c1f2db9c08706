package service

import (
	"context"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/iliyamo/interview-scheduler/internal/model"
	"github.com/iliyamo/interview-scheduler/internal/repository"
)

// SyncInput is a user record pushed by the identity provider.
type SyncInput struct {
	ID          string `json:"id"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
	AvatarRef   string `json:"avatar_ref"`
}

// SyncUser creates the user on first sight and refreshes the display
// fields afterwards.  The role is decided once: a missing or unknown role
// becomes candidate, and later syncs never change it.  The bool reports
// whether the user was created.
func (s *Service) SyncUser(ctx context.Context, in SyncInput) (model.User, bool, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.AvatarRef = strings.TrimSpace(in.AvatarRef)
	if err := fromValidation(validation.ValidateStruct(&in,
		validation.Field(&in.ID, validation.Required, validation.Length(1, 191)),
	)); err != nil {
		return model.User{}, false, err
	}

	existing, err := s.users.GetByID(ctx, in.ID)
	switch {
	case err == nil:
		return s.refreshProfile(ctx, existing, in)
	case !errors.Is(err, repository.ErrUserNotFound):
		return model.User{}, false, err
	}

	role := model.Role(strings.ToLower(strings.TrimSpace(in.Role)))
	if !role.IsValid() {
		role = model.RoleCandidate
	}
	u := model.User{
		ID:          in.ID,
		Role:        role,
		DisplayName: in.DisplayName,
		AvatarRef:   in.AvatarRef,
		CreatedAt:   s.Now(),
	}
	if err := s.users.Create(ctx, &u); err != nil {
		if !errors.Is(err, repository.ErrConflict) {
			return model.User{}, false, err
		}
		// lost a race with a concurrent first sync
		existing, err := s.users.GetByID(ctx, in.ID)
		if err != nil {
			return model.User{}, false, err
		}
		return s.refreshProfile(ctx, existing, in)
	}
	return u, true, nil
}

func (s *Service) refreshProfile(ctx context.Context, u model.User, in SyncInput) (model.User, bool, error) {
	if u.DisplayName == in.DisplayName && u.AvatarRef == in.AvatarRef {
		return u, false, nil
	}
	if err := s.users.UpdateProfile(ctx, u.ID, in.DisplayName, in.AvatarRef); err != nil {
		return model.User{}, false, err
	}
	u.DisplayName = in.DisplayName
	u.AvatarRef = in.AvatarRef
	return u, false, nil
}

// ListUsers returns every known user.
func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// GetUser returns a single user.
func (s *Service) GetUser(ctx context.Context, id string) (model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return model.User{}, &NotFoundError{Entity: "user", ID: id}
	}
	return u, err
}

// StoredRole returns the role on record for id, or "" for a user the
// identity provider has not synced yet.
func (s *Service) StoredRole(ctx context.Context, id string) (model.Role, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return u.Role, nil
}
