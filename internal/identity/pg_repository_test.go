package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*PgRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPgRepository(mock), mock
}

func TestPgGetUserByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	uid := uuid.New()
	now := time.Now()
	name := "Dr. Chen"

	rows := pgxmock.NewRows([]string{
		"uid", "email", "password_hash", "display_name", "role", "email_verified", "created_at", "updated_at",
	}).AddRow(uid, "chen@example.com", "$2a$10$hash", &name, Role("doctor"), true, now, now)

	mock.ExpectQuery(`SELECT .+ FROM users`).
		WithArgs(uid).
		WillReturnRows(rows)

	u, err := repo.GetUserByID(context.Background(), uid)
	require.NoError(t, err)
	assert.Equal(t, "chen@example.com", u.Email)
	assert.Equal(t, RoleDoctor, u.Role)
	require.NotNil(t, u.DisplayName)
	assert.Equal(t, "Dr. Chen", *u.DisplayName)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgGetUserByID_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	uid := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM users`).
		WithArgs(uid).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetUserByID(context.Background(), uid)
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgCreateUser_DuplicateEmail(t *testing.T) {
	repo, mock := newMockRepo(t)
	u := User{UID: uuid.New(), Email: "dup@example.com", PasswordHash: "hash", Role: RolePatient}

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(u.UID, u.Email, u.PasswordHash, u.DisplayName, u.Role).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.CreateUser(context.Background(), u)
	assert.ErrorIs(t, err, ErrEmailTaken)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgUpdateRole_NoSuchUser(t *testing.T) {
	repo, mock := newMockRepo(t)
	uid := uuid.New()

	mock.ExpectExec(`UPDATE users`).
		WithArgs(uid, RoleDoctor).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateRole(context.Background(), uid, RoleDoctor)
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgDeleteUser(t *testing.T) {
	repo, mock := newMockRepo(t)
	uid := uuid.New()

	mock.ExpectExec(`DELETE FROM users`).
		WithArgs(uid).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	assert.NoError(t, repo.DeleteUser(context.Background(), uid))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgDeleteUser_AppointmentHistoryBlocks(t *testing.T) {
	repo, mock := newMockRepo(t)
	uid := uuid.New()

	// deleting a doctor cascades into availability_slots, and appointment
	// history restricts that cascade
	mock.ExpectExec(`DELETE FROM users`).
		WithArgs(uid).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "appointments_slot_id_fkey"})

	err := repo.DeleteUser(context.Background(), uid)
	assert.ErrorIs(t, err, ErrUserHasAppointments)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgCountByRole(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT count`).
		WithArgs(RoleAdmin).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	n, err := repo.CountByRole(context.Background(), RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.NoError(t, mock.ExpectationsWereMet())
}
