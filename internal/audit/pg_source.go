package audit

import (
	"context"

	"github.com/google/uuid"

	"github.com/carebridge/clinic-backend/internal/db"
)

// PgSource reads the raw collections without the domain repositories'
// non-null assumptions, so rows written by older clients (missing status,
// stray mirrors) surface as they are stored.
type PgSource struct {
	db db.DB
}

func NewPgSource(pool db.DB) *PgSource {
	return &PgSource{db: pool}
}

func (s *PgSource) ListSlotRecords(ctx context.Context) ([]SlotRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, doctor_id, slot_date::text, start_time, end_time, status, is_booked, booked_by
		FROM availability_slots
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SlotRecord
	for rows.Next() {
		var rec SlotRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.DoctorID,
			&rec.Date,
			&rec.StartTime,
			&rec.EndTime,
			&rec.Status,
			&rec.IsBooked,
			&rec.BookedBy,
		); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}

	return result, rows.Err()
}

func (s *PgSource) SetSlotStatus(ctx context.Context, id uuid.UUID, status string, isBooked bool) error {
	_, err := s.db.Exec(ctx, `
		UPDATE availability_slots
		SET status = $2,
		    is_booked = $3,
		    updated_at = now()
		WHERE id = $1
	`, id, status, isBooked)
	return err
}

func (s *PgSource) ListProfilePairs(ctx context.Context) ([]ProfilePair, error) {
	var result []ProfilePair

	collect := func(query, role string) error {
		rows, err := s.db.Query(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				p       ProfilePair
				userUID *uuid.UUID
			)
			if err := rows.Scan(
				&p.UID,
				&p.ProfileDisplayName,
				&p.ProfileEmail,
				&userUID,
				&p.UserDisplayName,
				&p.UserEmail,
			); err != nil {
				return err
			}
			p.Role = role
			p.UserExists = userUID != nil
			result = append(result, p)
		}
		return rows.Err()
	}

	if err := collect(`
		SELECT d.uid, d.display_name, d.email, u.uid, u.display_name, u.email
		FROM doctors d
		LEFT JOIN users u ON u.uid = d.uid
		ORDER BY d.created_at
	`, "doctor"); err != nil {
		return nil, err
	}

	if err := collect(`
		SELECT p.uid, p.display_name, p.email, u.uid, u.display_name, u.email
		FROM patients p
		LEFT JOIN users u ON u.uid = p.uid
		ORDER BY p.created_at
	`, "patient"); err != nil {
		return nil, err
	}

	return result, nil
}
