package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/carebridge/clinic-backend/internal/db"
)

type PgRepository struct {
	db db.DB
}

func NewPgRepository(pool db.DB) *PgRepository {
	return &PgRepository{db: pool}
}

func scanSlot(row pgx.Row) (*Slot, error) {
	var s Slot
	var status *string
	var bookedBy *uuid.UUID

	err := row.Scan(
		&s.ID,
		&s.DoctorID,
		&s.Date,
		&s.StartTime,
		&s.EndTime,
		&s.DurationMinutes,
		&status,
		&s.IsBooked,
		&bookedBy,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	if status != nil {
		s.Status = SlotStatus(*status)
	}
	s.BookedBy = bookedBy
	return &s, nil
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking

	err := row.Scan(
		&b.ID,
		&b.SlotID,
		&b.PatientID,
		&b.DoctorID,
		&b.Date,
		&b.StartTime,
		&b.VideoProvisioned,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	return &b, nil
}

const slotColumns = `id, doctor_id, slot_date, start_time, end_time, duration_minutes, status, is_booked, booked_by, created_at, updated_at`
const bookingColumns = `id, slot_id, patient_id, doctor_id, slot_date, start_time, video_provisioned, status, created_at, updated_at`

func (r *PgRepository) CreateSlot(ctx context.Context, s Slot) (*Slot, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO availability_slots (id, doctor_id, slot_date, start_time, end_time, duration_minutes, status, is_booked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false, now(), now())
		RETURNING `+slotColumns+`
	`, s.ID, s.DoctorID, s.Date, s.StartTime, s.EndTime, s.DurationMinutes, string(s.Status))
	return scanSlot(row)
}

func (r *PgRepository) GetSlotByID(ctx context.Context, id uuid.UUID) (*Slot, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+slotColumns+`
		FROM availability_slots
		WHERE id = $1
	`, id)
	return scanSlot(row)
}

func (r *PgRepository) ListSlotsByDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]Slot, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+slotColumns+`
		FROM availability_slots
		WHERE doctor_id = $1 AND slot_date = $2
		ORDER BY start_time
	`, doctorID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// ClaimSlot's predicate mirrors RepairStatus: a legacy row with no status and
// no booking markers reads as available, so it must be claimable too.
func (r *PgRepository) ClaimSlot(ctx context.Context, slotID, patientID uuid.UUID) (*Slot, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE availability_slots
		SET status = 'booked',
		    is_booked = true,
		    booked_by = $2,
		    updated_at = now()
		WHERE id = $1
		  AND (status = 'available'
		       OR (status IS NULL AND is_booked = false AND booked_by IS NULL))
		RETURNING `+slotColumns+`
	`, slotID, patientID)

	s, err := scanSlot(row)
	if errors.Is(err, ErrSlotNotFound) {
		return nil, ErrSlotNotClaimed
	}
	return s, err
}

func (r *PgRepository) ReleaseSlot(ctx context.Context, slotID uuid.UUID) (*Slot, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE availability_slots
		SET status = 'available',
		    is_booked = false,
		    booked_by = NULL,
		    updated_at = now()
		WHERE id = $1
		  AND status = 'booked'
		RETURNING `+slotColumns+`
	`, slotID)

	s, err := scanSlot(row)
	if errors.Is(err, ErrSlotNotFound) {
		return nil, ErrSlotNotReleased
	}
	return s, err
}

func (r *PgRepository) CreateBooking(ctx context.Context, b Booking) (*Booking, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO appointments (id, slot_id, patient_id, doctor_id, slot_date, start_time, video_provisioned, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'scheduled', now(), now())
		RETURNING `+bookingColumns+`
	`, b.ID, b.SlotID, b.PatientID, b.DoctorID, b.Date, b.StartTime, b.VideoProvisioned)
	return scanBooking(row)
}

func (r *PgRepository) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanBooking(row)
}

func (r *PgRepository) CancelBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE appointments
		SET status = 'cancelled',
		    updated_at = now()
		WHERE id = $1
		  AND status = 'scheduled'
		RETURNING `+bookingColumns+`
	`, id)
	return scanBooking(row)
}

func (r *PgRepository) ListBookingsByPatient(ctx context.Context, patientID uuid.UUID) ([]Booking, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM appointments
		WHERE patient_id = $1
		ORDER BY slot_date, start_time
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
