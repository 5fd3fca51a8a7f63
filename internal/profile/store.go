package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carebridge/clinic-backend/internal/identity"
)

var (
	ErrUnknownRole = errors.New("no profile collection for role")
	ErrEmptyPatch  = errors.New("no fields to update")
)

// IdentityMirror is the single place the identity's duplicated display name
// gets written from this package. Implemented by the identity repository.
type IdentityMirror interface {
	UpdateDisplayName(ctx context.Context, uid uuid.UUID, displayName string) error
}

// Store is the profile store adapter. Every write that changes a display
// name touches both the role-specific collection and the identity record, so
// the two representations only drift through out-of-band writes (which the
// auditor exists to catch).
type Store struct {
	repo   Repository
	mirror IdentityMirror
	log    zerolog.Logger
}

func NewStore(repo Repository, mirror IdentityMirror, log zerolog.Logger) *Store {
	return &Store{repo: repo, mirror: mirror, log: log}
}

// Get returns the role-specific profile for a uid.
func (s *Store) Get(ctx context.Context, uid uuid.UUID, role identity.Role) (any, error) {
	switch role {
	case identity.RoleDoctor:
		return s.repo.GetDoctor(ctx, uid)
	case identity.RolePatient:
		return s.repo.GetPatient(ctx, uid)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
}

func (s *Store) UpdateDoctor(ctx context.Context, uid uuid.UUID, patch DoctorPatch) (*DoctorProfile, error) {
	if patch.Empty() {
		return nil, ErrEmptyPatch
	}

	updated, err := s.repo.UpdateDoctor(ctx, uid, patch)
	if err != nil {
		return nil, err
	}

	if patch.DisplayName != nil {
		if err := s.mirror.UpdateDisplayName(ctx, uid, *patch.DisplayName); err != nil {
			return nil, fmt.Errorf("mirror display name: %w", err)
		}
	}

	return updated, nil
}

func (s *Store) UpdatePatient(ctx context.Context, uid uuid.UUID, patch PatientPatch) (*PatientProfile, error) {
	if patch.Empty() {
		return nil, ErrEmptyPatch
	}

	updated, err := s.repo.UpdatePatient(ctx, uid, patch)
	if err != nil {
		return nil, err
	}

	if patch.DisplayName != nil {
		if err := s.mirror.UpdateDisplayName(ctx, uid, *patch.DisplayName); err != nil {
			return nil, fmt.Errorf("mirror display name: %w", err)
		}
	}

	return updated, nil
}

// EnsureProfile seeds the profile row for a role if it does not exist yet,
// mirroring the identity's display name and email into it. Admins have no
// profile collection; the call is a no-op for them.
func (s *Store) EnsureProfile(ctx context.Context, uid uuid.UUID, role identity.Role, displayName, email string) error {
	switch role {
	case identity.RoleDoctor:
		return s.repo.InsertDoctor(ctx, uid, displayName, email)
	case identity.RolePatient:
		return s.repo.InsertPatient(ctx, uid, displayName, email)
	case identity.RoleAdmin:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
}

// DeleteProfiles removes all role-specific rows for a uid. Profiles never
// outlive the identity they extend.
func (s *Store) DeleteProfiles(ctx context.Context, uid uuid.UUID) error {
	return s.repo.DeleteByUID(ctx, uid)
}
