package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/carebridge/clinic-backend/internal/auth"
)

const (
	// Privileged accounts (admin, doctor) are created by admins and carry a
	// stricter minimum; self-service patient registration keeps the looser one.
	MinPasswordPrivileged = 8
	MinPasswordGeneral    = 6
)

var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrPasswordMismatch   = errors.New("password and confirmation do not match")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ProfileSeeder creates the role-specific profile row that mirrors the
// identity's display name. Implemented by the profile store.
type ProfileSeeder interface {
	EnsureProfile(ctx context.Context, uid uuid.UUID, role Role, displayName, email string) error
	DeleteProfiles(ctx context.Context, uid uuid.UUID) error
}

type Service struct {
	repo     Repository
	profiles ProfileSeeder
	signer   *auth.TokenSigner
	log      zerolog.Logger
}

func NewService(repo Repository, profiles ProfileSeeder, signer *auth.TokenSigner, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		profiles: profiles,
		signer:   signer,
		log:      log,
	}
}

// minPasswordFor returns the enforced minimum length for the given role.
func minPasswordFor(role Role) int {
	if role == RoleAdmin || role == RoleDoctor {
		return MinPasswordPrivileged
	}
	return MinPasswordGeneral
}

func validateNewUser(email, password string, role Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	if len(password) < minPasswordFor(role) {
		return fmt.Errorf("%w: minimum %d characters", ErrPasswordTooShort, minPasswordFor(role))
	}
	return nil
}

// CreateUserWithRole creates an account with the given role and seeds the
// mirrored role-specific profile row in the same call, so the duplicated
// display name never starts out divergent.
func (s *Service) CreateUserWithRole(ctx context.Context, email, password, displayName string, role Role) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateNewUser(email, password, role); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := User{
		UID:          uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if displayName != "" {
		u.DisplayName = &displayName
	}

	created, err := s.repo.CreateUser(ctx, u)
	if err != nil {
		return nil, err
	}

	if err := s.profiles.EnsureProfile(ctx, created.UID, role, displayName, email); err != nil {
		// Mirror the provider behavior: a half-created account is worse than
		// no account, so roll the identity back.
		if delErr := s.repo.DeleteUser(ctx, created.UID); delErr != nil {
			s.log.Error().Err(delErr).Str("uid", created.UID.String()).Msg("rollback after profile seed failure")
		}
		return nil, fmt.Errorf("seed %s profile: %w", role, err)
	}

	s.log.Info().Str("uid", created.UID.String()).Str("role", string(role)).Msg("user created")
	return created, nil
}

// Register handles self-service patient registration. The password/confirm
// comparison happens before any store call.
func (s *Service) Register(ctx context.Context, email, password, confirm, displayName string) (*User, error) {
	if password != confirm {
		return nil, ErrPasswordMismatch
	}
	return s.CreateUserWithRole(ctx, email, password, displayName, RolePatient)
}

// Authenticate verifies credentials and issues a session token carrying the
// user's uid and role.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.signer.Sign(u.UID, string(u.Role), u.Email)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}

	return u, token, nil
}

func (s *Service) GetUser(ctx context.Context, uid uuid.UUID) (*User, error) {
	return s.repo.GetUserByID(ctx, uid)
}

// SetRole replaces a user's role. Role changes are replacements, never
// merges; the profile row for the new role is seeded if it does not exist.
func (s *Service) SetRole(ctx context.Context, uid uuid.UUID, role Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	u, err := s.repo.GetUserByID(ctx, uid)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateRole(ctx, uid, role); err != nil {
		return err
	}

	displayName := ""
	if u.DisplayName != nil {
		displayName = *u.DisplayName
	}
	if err := s.profiles.EnsureProfile(ctx, uid, role, displayName, u.Email); err != nil {
		return fmt.Errorf("seed %s profile: %w", role, err)
	}

	s.log.Info().Str("uid", uid.String()).Str("role", string(role)).Msg("role updated")
	return nil
}

// ResetRole clears a user's elevated role back to the patient default. The
// provider's claim-removal left accounts roleless; a roleless identity breaks
// the one-role invariant, so the default role is applied instead.
func (s *Service) ResetRole(ctx context.Context, uid uuid.UUID) error {
	return s.SetRole(ctx, uid, RolePatient)
}

func (s *Service) DeleteUser(ctx context.Context, uid uuid.UUID) error {
	if err := s.profiles.DeleteProfiles(ctx, uid); err != nil {
		return fmt.Errorf("delete profiles: %w", err)
	}
	if err := s.repo.DeleteUser(ctx, uid); err != nil {
		return err
	}
	s.log.Info().Str("uid", uid.String()).Msg("user deleted")
	return nil
}

func (s *Service) ListUsersByRole(ctx context.Context, role Role) ([]User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	return s.repo.ListUsersByRole(ctx, role)
}

// AdminCount reports how many admin accounts exist; the setup flow uses it to
// decide whether first-admin registration is still open.
func (s *Service) AdminCount(ctx context.Context) (int, error) {
	return s.repo.CountByRole(ctx, RoleAdmin)
}
