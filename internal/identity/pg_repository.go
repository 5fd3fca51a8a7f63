package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carebridge/clinic-backend/internal/db"
)

type PgRepository struct {
	db db.DB
}

func NewPgRepository(pool db.DB) *PgRepository {
	return &PgRepository{db: pool}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var displayName *string

	err := row.Scan(
		&u.UID,
		&u.Email,
		&u.PasswordHash,
		&displayName,
		&u.Role,
		&u.EmailVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	u.DisplayName = displayName
	return &u, nil
}

const userColumns = `uid, email, password_hash, display_name, role, email_verified, created_at, updated_at`

func (r *PgRepository) CreateUser(ctx context.Context, u User) (*User, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (uid, email, password_hash, display_name, role, email_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, false, now(), now())
		RETURNING `+userColumns+`
	`, u.UID, u.Email, u.PasswordHash, u.DisplayName, u.Role)

	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return created, nil
}

func (r *PgRepository) GetUserByID(ctx context.Context, uid uuid.UUID) (*User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE uid = $1
	`, uid)
	return scanUser(row)
}

func (r *PgRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, email)
	return scanUser(row)
}

func (r *PgRepository) UpdateRole(ctx context.Context, uid uuid.UUID, role Role) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET role = $2,
		    updated_at = now()
		WHERE uid = $1
	`, uid, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PgRepository) UpdateDisplayName(ctx context.Context, uid uuid.UUID, displayName string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET display_name = $2,
		    updated_at = now()
		WHERE uid = $1
	`, uid, displayName)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteUser removes the account. For doctors the delete cascades into their
// availability slots; appointment history restricts that cascade, so an
// account with any booked appointment stays and the caller gets a conflict.
func (r *PgRepository) DeleteUser(ctx context.Context, uid uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM users
		WHERE uid = $1
	`, uid)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrUserHasAppointments
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PgRepository) ListUsersByRole(ctx context.Context, role Role) ([]User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE role = $1
		ORDER BY created_at
	`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) CountByRole(ctx context.Context, role Role) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT count(*) FROM users WHERE role = $1
	`, role).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}
