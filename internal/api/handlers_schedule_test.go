package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebridge/clinic-backend/internal/identity"
	"github.com/carebridge/clinic-backend/internal/schedule"
)

type passthroughLocker struct{}

func (passthroughLocker) WithSlotLock(ctx context.Context, _ uuid.UUID, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type stubScheduleRepo struct {
	slots    map[uuid.UUID]schedule.Slot
	bookings map[uuid.UUID]schedule.Booking
}

func newStubScheduleRepo() *stubScheduleRepo {
	return &stubScheduleRepo{
		slots:    make(map[uuid.UUID]schedule.Slot),
		bookings: make(map[uuid.UUID]schedule.Booking),
	}
}

func (r *stubScheduleRepo) CreateSlot(_ context.Context, s schedule.Slot) (*schedule.Slot, error) {
	r.slots[s.ID] = s
	return &s, nil
}

func (r *stubScheduleRepo) GetSlotByID(_ context.Context, id uuid.UUID) (*schedule.Slot, error) {
	s, ok := r.slots[id]
	if !ok {
		return nil, schedule.ErrSlotNotFound
	}
	return &s, nil
}

func (r *stubScheduleRepo) ListSlotsByDoctorDate(_ context.Context, doctorID uuid.UUID, date time.Time) ([]schedule.Slot, error) {
	var result []schedule.Slot
	for _, s := range r.slots {
		if s.DoctorID == doctorID && s.Date.Equal(date) {
			result = append(result, s)
		}
	}
	return result, nil
}

func (r *stubScheduleRepo) ClaimSlot(_ context.Context, slotID, patientID uuid.UUID) (*schedule.Slot, error) {
	s, ok := r.slots[slotID]
	if !ok || schedule.RepairStatus(s).Status != schedule.SlotAvailable {
		return nil, schedule.ErrSlotNotClaimed
	}
	s.Status = schedule.SlotBooked
	s.IsBooked = true
	s.BookedBy = &patientID
	r.slots[slotID] = s
	return &s, nil
}

func (r *stubScheduleRepo) ReleaseSlot(_ context.Context, slotID uuid.UUID) (*schedule.Slot, error) {
	s, ok := r.slots[slotID]
	if !ok || s.Status != schedule.SlotBooked {
		return nil, schedule.ErrSlotNotReleased
	}
	s.Status = schedule.SlotAvailable
	s.IsBooked = false
	s.BookedBy = nil
	r.slots[slotID] = s
	return &s, nil
}

func (r *stubScheduleRepo) CreateBooking(_ context.Context, b schedule.Booking) (*schedule.Booking, error) {
	b.Status = schedule.BookingScheduled
	r.bookings[b.ID] = b
	return &b, nil
}

func (r *stubScheduleRepo) GetBookingByID(_ context.Context, id uuid.UUID) (*schedule.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, schedule.ErrBookingNotFound
	}
	return &b, nil
}

func (r *stubScheduleRepo) CancelBooking(_ context.Context, id uuid.UUID) (*schedule.Booking, error) {
	b, ok := r.bookings[id]
	if !ok || b.Status != schedule.BookingScheduled {
		return nil, schedule.ErrBookingNotFound
	}
	b.Status = schedule.BookingCancelled
	r.bookings[id] = b
	return &b, nil
}

func (r *stubScheduleRepo) ListBookingsByPatient(_ context.Context, patientID uuid.UUID) ([]schedule.Booking, error) {
	var result []schedule.Booking
	for _, b := range r.bookings {
		if b.PatientID == patientID {
			result = append(result, b)
		}
	}
	return result, nil
}

func newBookedFixture(t *testing.T) (*schedule.Service, *stubScheduleRepo, *schedule.Booking) {
	t.Helper()
	repo := newStubScheduleRepo()
	svc := schedule.NewService(repo, passthroughLocker{}, zerolog.Nop())

	slot, err := svc.CreateSlot(context.Background(), uuid.New(),
		time.Date(2024, 10, 25, 0, 0, 0, 0, time.UTC), "09:00", "09:30", 30)
	require.NoError(t, err)

	booking, err := svc.BookSlot(context.Background(), slot.ID, uuid.New())
	require.NoError(t, err)
	return svc, repo, booking
}

func cancelVia(t *testing.T, svc *schedule.Service, bookingID uuid.UUID, session Session) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	router.Post("/bookings/{id}/cancel", cancelBookingHandler(svc))

	req := requestWithSession(http.MethodPost, "/bookings/"+bookingID.String()+"/cancel", session)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCancelBookingHandler_OwnerCancels(t *testing.T) {
	svc, repo, booking := newBookedFixture(t)

	rec := cancelVia(t, svc, booking.ID, Session{UID: booking.PatientID, Role: identity.RolePatient})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, schedule.BookingCancelled, repo.bookings[booking.ID].Status)
}

func TestCancelBookingHandler_OtherPatientForbidden(t *testing.T) {
	svc, repo, booking := newBookedFixture(t)

	rec := cancelVia(t, svc, booking.ID, Session{UID: uuid.New(), Role: identity.RolePatient})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// the appointment is untouched
	assert.Equal(t, schedule.BookingScheduled, repo.bookings[booking.ID].Status)
	assert.Equal(t, schedule.SlotBooked, repo.slots[booking.SlotID].Status)
}

func TestCancelBookingHandler_AdminCancelsAny(t *testing.T) {
	svc, repo, booking := newBookedFixture(t)

	rec := cancelVia(t, svc, booking.ID, Session{UID: uuid.New(), Role: identity.RoleAdmin})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, schedule.BookingCancelled, repo.bookings[booking.ID].Status)
}

func TestCancelBookingHandler_UnknownBooking(t *testing.T) {
	svc, _, _ := newBookedFixture(t)

	rec := cancelVia(t, svc, uuid.New(), Session{UID: uuid.New(), Role: identity.RolePatient})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
