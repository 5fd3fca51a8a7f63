package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSlotNotFound    = errors.New("slot not found")
	ErrBookingNotFound = errors.New("booking not found")

	// ErrSlotNotClaimed means the conditional claim matched no row: the slot
	// was no longer available when the update ran.
	ErrSlotNotClaimed = errors.New("slot could not be claimed")

	// ErrSlotNotReleased means the conditional release matched no row.
	ErrSlotNotReleased = errors.New("slot could not be released")
)

// Repository contains all DB interactions needed by the scheduling service.
type Repository interface {
	CreateSlot(ctx context.Context, s Slot) (*Slot, error)
	GetSlotByID(ctx context.Context, id uuid.UUID) (*Slot, error)
	ListSlotsByDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]Slot, error)

	// ClaimSlot flips available -> booked for exactly one row; the status
	// predicate makes the claim conditional so a raced claim affects no rows.
	ClaimSlot(ctx context.Context, slotID, patientID uuid.UUID) (*Slot, error)
	ReleaseSlot(ctx context.Context, slotID uuid.UUID) (*Slot, error)

	CreateBooking(ctx context.Context, b Booking) (*Booking, error)
	GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	CancelBooking(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListBookingsByPatient(ctx context.Context, patientID uuid.UUID) ([]Booking, error)
}
