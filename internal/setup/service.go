package setup

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carebridge/clinic-backend/internal/identity"
)

var (
	ErrSetupComplete = errors.New("admin user already exists, registration is disabled")
	ErrBadSecret     = errors.New("invalid setup secret")
	ErrNotDevMode    = errors.New("this endpoint is only available in development mode")
)

const defaultAdminName = "System Administrator"

// AdminDirectory is the slice of the identity service the setup flow needs.
type AdminDirectory interface {
	AdminCount(ctx context.Context) (int, error)
	CreateUserWithRole(ctx context.Context, email, password, displayName string, role identity.Role) (*identity.User, error)
}

// TokenStore holds one-time registration tokens. Implemented by the Redis
// setup token store.
type TokenStore interface {
	Issue(ctx context.Context, token string) (time.Time, error)
	Validate(ctx context.Context, token string) error
	Consume(ctx context.Context, token string) error
	CountValid(ctx context.Context) (int, error)
	Clear(ctx context.Context) (int, error)
}

// Service runs the one-time first-admin bootstrap: generate a registration
// token behind a shared secret, hand it out of band, and let exactly one
// registration spend it.
type Service struct {
	admins  AdminDirectory
	tokens  TokenStore
	secret  string
	devMode bool
	log     zerolog.Logger
}

func NewService(admins AdminDirectory, tokens TokenStore, secret string, devMode bool, log zerolog.Logger) *Service {
	return &Service{
		admins:  admins,
		tokens:  tokens,
		secret:  secret,
		devMode: devMode,
		log:     log,
	}
}

type Status struct {
	SetupComplete   bool
	AdminCount      int
	ValidTokens     int
	DevelopmentMode bool
}

func (s *Service) Status(ctx context.Context) (*Status, error) {
	count, err := s.admins.AdminCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("count admins: %w", err)
	}

	st := &Status{
		SetupComplete:   count > 0,
		AdminCount:      count,
		DevelopmentMode: s.devMode,
	}

	if !st.SetupComplete {
		valid, err := s.tokens.CountValid(ctx)
		if err != nil {
			return nil, fmt.Errorf("count tokens: %w", err)
		}
		st.ValidTokens = valid
	}

	return st, nil
}

// GenerateToken issues a fresh registration token. Refused once an admin
// exists, except in development mode with allowMultiple set.
func (s *Service) GenerateToken(ctx context.Context, secret string, allowMultiple bool) (string, time.Time, error) {
	count, err := s.admins.AdminCount(ctx)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("count admins: %w", err)
	}
	if count > 0 && !(s.devMode && allowMultiple) {
		return "", time.Time{}, ErrSetupComplete
	}

	if subtle.ConstantTimeCompare([]byte(secret), []byte(s.secret)) != 1 {
		return "", time.Time{}, ErrBadSecret
	}

	token := uuid.NewString()
	expiresAt, err := s.tokens.Issue(ctx, token)
	if err != nil {
		return "", time.Time{}, err
	}

	s.log.Info().Time("expires_at", expiresAt).Msg("admin registration token generated")
	return token, expiresAt, nil
}

// ValidateToken checks a token without spending it.
func (s *Service) ValidateToken(ctx context.Context, token string) error {
	count, err := s.admins.AdminCount(ctx)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count > 0 && !s.devMode {
		return ErrSetupComplete
	}

	return s.tokens.Validate(ctx, token)
}

// ResetDev discards every outstanding registration token so admin creation
// can be exercised repeatedly. Development mode only; accounts are left
// untouched.
func (s *Service) ResetDev(ctx context.Context, secret string) (int, error) {
	if !s.devMode {
		return 0, ErrNotDevMode
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(s.secret)) != 1 {
		return 0, ErrBadSecret
	}

	removed, err := s.tokens.Clear(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear setup tokens: %w", err)
	}

	s.log.Info().Int("tokens_removed", removed).Msg("development admin setup reset")
	return removed, nil
}

// RegisterAdmin spends a token and creates the first admin account. The
// token is consumed before the account is created so two concurrent
// registrations cannot both use it; a creation failure after that point
// burns the token, which is the safer direction for a bootstrap secret.
func (s *Service) RegisterAdmin(ctx context.Context, token, email, password, displayName string) (*identity.User, error) {
	count, err := s.admins.AdminCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("count admins: %w", err)
	}
	if count > 0 && !s.devMode {
		return nil, ErrSetupComplete
	}

	if err := s.tokens.Consume(ctx, token); err != nil {
		return nil, err
	}

	if displayName == "" {
		displayName = defaultAdminName
	}

	admin, err := s.admins.CreateUserWithRole(ctx, email, password, displayName, identity.RoleAdmin)
	if err != nil {
		s.log.Error().Err(err).Msg("admin creation failed after token consumption")
		return nil, err
	}

	s.log.Info().Str("uid", admin.UID.String()).Msg("admin user registered")
	return admin, nil
}
