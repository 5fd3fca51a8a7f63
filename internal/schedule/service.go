package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carebridge/clinic-backend/internal/redisclient"
)

var (
	ErrInvalidTimeRange  = errors.New("invalid slot time range")
	ErrSlotOverlap       = errors.New("slot overlaps an existing slot for this doctor")
	ErrSlotAlreadyBooked = errors.New("slot is already booked")
	ErrSlotBlocked       = errors.New("slot is blocked")
	ErrSlotBusy          = errors.New("slot is currently being booked, please retry")
	ErrAlreadyCancelled  = errors.New("booking is already cancelled")
)

type Service struct {
	repo   Repository
	locker redisclient.Locker
	log    zerolog.Logger
}

func NewService(repo Repository, locker redisclient.Locker, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		locker: locker,
		log:    log,
	}
}

// CreateSlot adds an availability slot for a doctor. The new range must not
// intersect any existing non-blocked slot on the same day. The read-then-
// write here is not raced in practice because a doctor edits their own
// calendar; the booking path is the contended one and gets the lock.
func (s *Service) CreateSlot(ctx context.Context, doctorID uuid.UUID, date time.Time, startTime, endTime string, durationMinutes int) (*Slot, error) {
	start, err := ParseClock(startTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTimeRange, err)
	}
	end, err := ParseClock(endTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTimeRange, err)
	}
	if end <= start {
		return nil, fmt.Errorf("%w: end %s is not after start %s", ErrInvalidTimeRange, endTime, startTime)
	}
	if durationMinutes <= 0 {
		durationMinutes = end - start
	}

	candidate := Slot{
		ID:              uuid.New(),
		DoctorID:        doctorID,
		Date:            date,
		StartTime:       startTime,
		EndTime:         endTime,
		DurationMinutes: durationMinutes,
		Status:          SlotAvailable,
	}

	existing, err := s.repo.ListSlotsByDoctorDate(ctx, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	for _, other := range existing {
		other = RepairStatus(other)
		if other.Status == SlotBlocked {
			continue
		}
		if candidate.Overlaps(other) {
			return nil, fmt.Errorf("%w: %s-%s conflicts with %s-%s",
				ErrSlotOverlap, startTime, endTime, other.StartTime, other.EndTime)
		}
	}

	created, err := s.repo.CreateSlot(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("create slot: %w", err)
	}

	s.log.Info().
		Str("slot_id", created.ID.String()).
		Str("doctor_id", doctorID.String()).
		Str("range", startTime+"-"+endTime).
		Msg("slot created")
	return created, nil
}

// BookSlot claims an available slot for a patient and creates the linked
// appointment. The per-slot lock plus the conditional claim update mean no
// observer sees the slot available after the claim commits, and two
// concurrent attempts cannot both succeed.
func (s *Service) BookSlot(ctx context.Context, slotID, patientID uuid.UUID) (*Booking, error) {
	var created *Booking

	err := s.locker.WithSlotLock(ctx, slotID, func(lockCtx context.Context) error {
		slot, err := s.repo.GetSlotByID(lockCtx, slotID)
		if err != nil {
			return err
		}

		switch RepairStatus(*slot).Status {
		case SlotAvailable:
			// proceed to claim
		case SlotBlocked:
			return ErrSlotBlocked
		default:
			return ErrSlotAlreadyBooked
		}

		claimed, err := s.repo.ClaimSlot(lockCtx, slotID, patientID)
		if err != nil {
			if errors.Is(err, ErrSlotNotClaimed) {
				return ErrSlotAlreadyBooked
			}
			return fmt.Errorf("claim slot: %w", err)
		}

		booking, err := s.repo.CreateBooking(lockCtx, Booking{
			ID:        uuid.New(),
			SlotID:    claimed.ID,
			PatientID: patientID,
			DoctorID:  claimed.DoctorID,
			Date:      claimed.Date,
			StartTime: claimed.StartTime,
		})
		if err != nil {
			// The claim landed but the booking insert failed; put the slot
			// back so it is not stranded in booked with no appointment.
			if _, relErr := s.repo.ReleaseSlot(lockCtx, slotID); relErr != nil {
				s.log.Error().Err(relErr).Str("slot_id", slotID.String()).Msg("release after booking insert failure")
			}
			return fmt.Errorf("create booking: %w", err)
		}

		created = booking
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBusy
		}
		return nil, err
	}

	s.log.Info().
		Str("booking_id", created.ID.String()).
		Str("slot_id", slotID.String()).
		Str("patient_id", patientID.String()).
		Msg("slot booked")
	return created, nil
}

// CancelBooking reverts a scheduled booking: the appointment is marked
// cancelled and the slot goes back to available.
func (s *Service) CancelBooking(ctx context.Context, bookingID uuid.UUID) error {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.Status == BookingCancelled {
		return ErrAlreadyCancelled
	}

	if _, err := s.repo.CancelBooking(ctx, bookingID); err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return ErrAlreadyCancelled
		}
		return fmt.Errorf("cancel booking: %w", err)
	}

	if _, err := s.repo.ReleaseSlot(ctx, booking.SlotID); err != nil {
		if !errors.Is(err, ErrSlotNotReleased) {
			return fmt.Errorf("release slot: %w", err)
		}
		// Slot was not in booked state; the auditor will flag it if the
		// mirror drifted, nothing more to do here.
		s.log.Warn().Str("slot_id", booking.SlotID.String()).Msg("cancelled booking pointed at a slot that was not booked")
	}

	s.log.Info().
		Str("booking_id", bookingID.String()).
		Str("slot_id", booking.SlotID.String()).
		Msg("booking cancelled")
	return nil
}

func (s *Service) GetSlot(ctx context.Context, slotID uuid.UUID) (*Slot, error) {
	return s.repo.GetSlotByID(ctx, slotID)
}

func (s *Service) GetBooking(ctx context.Context, bookingID uuid.UUID) (*Booking, error) {
	return s.repo.GetBookingByID(ctx, bookingID)
}

// ListDoctorSlots returns a doctor's slots for one day with repaired status
// views, so legacy rows never surface with an empty status.
func (s *Service) ListDoctorSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]Slot, error) {
	slots, err := s.repo.ListSlotsByDoctorDate(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	for i := range slots {
		slots[i] = RepairStatus(slots[i])
	}
	return slots, nil
}

func (s *Service) ListPatientBookings(ctx context.Context, patientID uuid.UUID) ([]Booking, error) {
	return s.repo.ListBookingsByPatient(ctx, patientID)
}
