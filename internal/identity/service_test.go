package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebridge/clinic-backend/internal/auth"
)

type fakeRepo struct {
	byUID   map[uuid.UUID]User
	byEmail map[string]uuid.UUID
	calls   []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		byUID:   make(map[uuid.UUID]User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (r *fakeRepo) CreateUser(_ context.Context, u User) (*User, error) {
	r.calls = append(r.calls, "CreateUser")
	if _, taken := r.byEmail[u.Email]; taken {
		return nil, ErrEmailTaken
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.byUID[u.UID] = u
	r.byEmail[u.Email] = u.UID
	return &u, nil
}

func (r *fakeRepo) GetUserByID(_ context.Context, uid uuid.UUID) (*User, error) {
	u, ok := r.byUID[uid]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (r *fakeRepo) GetUserByEmail(_ context.Context, email string) (*User, error) {
	uid, ok := r.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := r.byUID[uid]
	return &u, nil
}

func (r *fakeRepo) UpdateRole(_ context.Context, uid uuid.UUID, role Role) error {
	u, ok := r.byUID[uid]
	if !ok {
		return ErrUserNotFound
	}
	u.Role = role
	r.byUID[uid] = u
	return nil
}

func (r *fakeRepo) UpdateDisplayName(_ context.Context, uid uuid.UUID, displayName string) error {
	u, ok := r.byUID[uid]
	if !ok {
		return ErrUserNotFound
	}
	u.DisplayName = &displayName
	r.byUID[uid] = u
	return nil
}

func (r *fakeRepo) DeleteUser(_ context.Context, uid uuid.UUID) error {
	r.calls = append(r.calls, "DeleteUser")
	u, ok := r.byUID[uid]
	if !ok {
		return ErrUserNotFound
	}
	delete(r.byEmail, u.Email)
	delete(r.byUID, uid)
	return nil
}

func (r *fakeRepo) ListUsersByRole(_ context.Context, role Role) ([]User, error) {
	var result []User
	for _, u := range r.byUID {
		if u.Role == role {
			result = append(result, u)
		}
	}
	return result, nil
}

func (r *fakeRepo) CountByRole(_ context.Context, role Role) (int, error) {
	n := 0
	for _, u := range r.byUID {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

type fakeSeeder struct {
	seeded  map[uuid.UUID]Role
	seedErr error
}

func newFakeSeeder() *fakeSeeder {
	return &fakeSeeder{seeded: make(map[uuid.UUID]Role)}
}

func (s *fakeSeeder) EnsureProfile(_ context.Context, uid uuid.UUID, role Role, _, _ string) error {
	if s.seedErr != nil {
		return s.seedErr
	}
	s.seeded[uid] = role
	return nil
}

func (s *fakeSeeder) DeleteProfiles(_ context.Context, uid uuid.UUID) error {
	delete(s.seeded, uid)
	return nil
}

func newTestService() (*Service, *fakeRepo, *fakeSeeder) {
	repo := newFakeRepo()
	seeder := newFakeSeeder()
	signer := auth.NewTokenSigner("test-secret", time.Hour)
	return NewService(repo, seeder, signer, zerolog.Nop()), repo, seeder
}

func TestCreateUserWithRole_Validation(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		role     Role
		wantErr  error
	}{
		{"bad email", "not-an-email", "longenough", RolePatient, ErrInvalidEmail},
		{"bad role", "a@b.com", "longenough", Role("owner"), ErrInvalidRole},
		{"patient password below six", "a@b.com", "12345", RolePatient, ErrPasswordTooShort},
		{"doctor password below eight", "a@b.com", "1234567", RoleDoctor, ErrPasswordTooShort},
		{"admin password below eight", "a@b.com", "1234567", RoleAdmin, ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateUserWithRole(ctx, tt.email, tt.password, "Someone", tt.role)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// nothing reached the store
	assert.Empty(t, repo.calls)

	// six characters is enough for a patient
	_, err := svc.CreateUserWithRole(ctx, "p@b.com", "123456", "Pat", RolePatient)
	assert.NoError(t, err)
}

func TestCreateUserWithRole_SeedsProfile(t *testing.T) {
	svc, _, seeder := newTestService()

	u, err := svc.CreateUserWithRole(context.Background(), "Doc@Example.COM", "password8", "Dr. Chen", RoleDoctor)
	require.NoError(t, err)

	assert.Equal(t, "doc@example.com", u.Email)
	assert.Equal(t, RoleDoctor, u.Role)
	require.NotNil(t, u.DisplayName)
	assert.Equal(t, "Dr. Chen", *u.DisplayName)
	assert.Equal(t, RoleDoctor, seeder.seeded[u.UID])
}

func TestCreateUserWithRole_RollsBackOnSeedFailure(t *testing.T) {
	svc, repo, seeder := newTestService()
	seeder.seedErr = errors.New("profile table unavailable")

	_, err := svc.CreateUserWithRole(context.Background(), "doc@example.com", "password8", "Dr. Chen", RoleDoctor)
	require.Error(t, err)

	// the half-created identity was removed again
	assert.Equal(t, []string{"CreateUser", "DeleteUser"}, repo.calls)
	assert.Empty(t, repo.byUID)
}

func TestCreateUserWithRole_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateUserWithRole(ctx, "dup@example.com", "password8", "First", RolePatient)
	require.NoError(t, err)

	_, err = svc.CreateUserWithRole(ctx, "dup@example.com", "password8", "Second", RolePatient)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_MismatchBeforeStore(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.Register(context.Background(), "p@example.com", "password1", "password2", "Pat")
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Empty(t, repo.calls)
}

func TestRegister_CreatesPatient(t *testing.T) {
	svc, _, seeder := newTestService()

	u, err := svc.Register(context.Background(), "p@example.com", "secret6", "secret6", "Pat")
	require.NoError(t, err)
	assert.Equal(t, RolePatient, u.Role)
	assert.Equal(t, RolePatient, seeder.seeded[u.UID])
}

func TestAuthenticate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateUserWithRole(ctx, "doc@example.com", "password8", "Dr. Chen", RoleDoctor)
	require.NoError(t, err)

	u, token, err := svc.Authenticate(ctx, "doc@example.com", "password8")
	require.NoError(t, err)
	assert.Equal(t, created.UID, u.UID)
	assert.NotEmpty(t, token)

	// the token carries uid, role and email
	signer := auth.NewTokenSigner("test-secret", time.Hour)
	uid, claims, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, created.UID, uid)
	assert.Equal(t, "doctor", claims.Role)
	assert.Equal(t, "doc@example.com", claims.Email)
}

func TestAuthenticate_BadCredentials(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateUserWithRole(ctx, "doc@example.com", "password8", "Dr. Chen", RoleDoctor)
	require.NoError(t, err)

	_, _, err = svc.Authenticate(ctx, "doc@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// an unknown email reports the same error as a wrong password
	_, _, err = svc.Authenticate(ctx, "nobody@example.com", "password8")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSetRole_ReplacesAndSeeds(t *testing.T) {
	svc, repo, seeder := newTestService()
	ctx := context.Background()

	u, err := svc.CreateUserWithRole(ctx, "p@example.com", "password8", "Pat", RolePatient)
	require.NoError(t, err)

	require.NoError(t, svc.SetRole(ctx, u.UID, RoleDoctor))

	got, err := repo.GetUserByID(ctx, u.UID)
	require.NoError(t, err)
	assert.Equal(t, RoleDoctor, got.Role)
	assert.Equal(t, RoleDoctor, seeder.seeded[u.UID])
}

func TestSetRole_InvalidInputs(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	assert.ErrorIs(t, svc.SetRole(ctx, uuid.New(), Role("owner")), ErrInvalidRole)
	assert.ErrorIs(t, svc.SetRole(ctx, uuid.New(), RoleDoctor), ErrUserNotFound)
}

func TestResetRole_FallsBackToPatient(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	u, err := svc.CreateUserWithRole(ctx, "doc@example.com", "password8", "Dr. Chen", RoleDoctor)
	require.NoError(t, err)

	require.NoError(t, svc.ResetRole(ctx, u.UID))

	got, err := repo.GetUserByID(ctx, u.UID)
	require.NoError(t, err)
	assert.Equal(t, RolePatient, got.Role)
}

func TestDeleteUser_RemovesProfilesFirst(t *testing.T) {
	svc, repo, seeder := newTestService()
	ctx := context.Background()

	u, err := svc.CreateUserWithRole(ctx, "p@example.com", "password8", "Pat", RolePatient)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, u.UID))

	_, err = repo.GetUserByID(ctx, u.UID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NotContains(t, seeder.seeded, u.UID)
}

func TestListUsersByRole_RejectsInvalidRole(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.ListUsersByRole(context.Background(), Role("owner"))
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestAdminCount(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	n, err := svc.AdminCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = svc.CreateUserWithRole(ctx, "admin@example.com", "password8", "Root", RoleAdmin)
	require.NoError(t, err)

	n, err = svc.AdminCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
