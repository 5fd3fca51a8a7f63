package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrProfileNotFound = errors.New("profile not found")

// Repository contains the DB interactions for the role-specific profile
// collections.
type Repository interface {
	InsertDoctor(ctx context.Context, uid uuid.UUID, displayName, email string) error
	InsertPatient(ctx context.Context, uid uuid.UUID, displayName, email string) error
	GetDoctor(ctx context.Context, uid uuid.UUID) (*DoctorProfile, error)
	GetPatient(ctx context.Context, uid uuid.UUID) (*PatientProfile, error)
	UpdateDoctor(ctx context.Context, uid uuid.UUID, patch DoctorPatch) (*DoctorProfile, error)
	UpdatePatient(ctx context.Context, uid uuid.UUID, patch PatientPatch) (*PatientProfile, error)
	DeleteByUID(ctx context.Context, uid uuid.UUID) error
}
