package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("email is already registered")
	ErrUserHasAppointments = errors.New("user has appointment history and cannot be deleted")
)

// Repository contains all DB interactions needed by the identity service.
type Repository interface {
	CreateUser(ctx context.Context, u User) (*User, error)
	GetUserByID(ctx context.Context, uid uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateRole(ctx context.Context, uid uuid.UUID, role Role) error
	UpdateDisplayName(ctx context.Context, uid uuid.UUID, displayName string) error
	DeleteUser(ctx context.Context, uid uuid.UUID) error
	ListUsersByRole(ctx context.Context, role Role) ([]User, error)
	CountByRole(ctx context.Context, role Role) (int, error)
}
