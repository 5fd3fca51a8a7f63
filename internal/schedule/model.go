package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotBooked    SlotStatus = "booked"
	SlotBlocked   SlotStatus = "blocked"
)

func (s SlotStatus) Valid() bool {
	switch s {
	case SlotAvailable, SlotBooked, SlotBlocked:
		return true
	}
	return false
}

type BookingStatus string

const (
	BookingScheduled BookingStatus = "scheduled"
	BookingCancelled BookingStatus = "cancelled"
)

// Slot is one bookable interval belonging to one doctor on one date. Status
// is the source of truth; IsBooked is a stored mirror kept in sync by every
// write path in this package. Status is empty when the stored field is
// missing (legacy rows the auditor repairs).
type Slot struct {
	ID              uuid.UUID
	DoctorID        uuid.UUID
	Date            time.Time // calendar day, midnight UTC
	StartTime       string    // "HH:MM"
	EndTime         string    // "HH:MM"
	DurationMinutes int
	Status          SlotStatus
	IsBooked        bool
	BookedBy        *uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Booking links a patient to the slot it claimed. At most one scheduled
// booking references a slot; the slot's own status enforces that.
type Booking struct {
	ID               uuid.UUID
	SlotID           uuid.UUID
	PatientID        uuid.UUID
	DoctorID         uuid.UUID
	Date             time.Time
	StartTime        string
	VideoProvisioned bool
	Status           BookingStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ParseClock converts "HH:MM" to minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return h*60 + m, nil
}

// Overlaps reports whether two slots on the same doctor's day intersect in
// time. Touching endpoints (09:00-09:30 vs 09:30-10:00) do not overlap.
func (s Slot) Overlaps(other Slot) bool {
	aStart, err := ParseClock(s.StartTime)
	if err != nil {
		return false
	}
	aEnd, err := ParseClock(s.EndTime)
	if err != nil {
		return false
	}
	bStart, err := ParseClock(other.StartTime)
	if err != nil {
		return false
	}
	bEnd, err := ParseClock(other.EndTime)
	if err != nil {
		return false
	}
	return aStart < bEnd && bStart < aEnd
}

// RepairStatus derives a missing status from the booking markers: booked when
// a patient claim or the is_booked mirror is set, available otherwise. Rows
// that already carry a status pass through unchanged, which makes the rule
// idempotent.
func RepairStatus(s Slot) Slot {
	if s.Status != "" {
		return s
	}
	if s.IsBooked || s.BookedBy != nil {
		s.Status = SlotBooked
		s.IsBooked = true
	} else {
		s.Status = SlotAvailable
	}
	return s
}
