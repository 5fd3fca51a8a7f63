package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carebridge/clinic-backend/internal/identity"
	"github.com/carebridge/clinic-backend/internal/schedule"
)

const dateLayout = "2006-01-02"

func slotResponse(s schedule.Slot) SlotResponse {
	return SlotResponse{
		ID:              s.ID,
		DoctorID:        s.DoctorID,
		Date:            s.Date.Format(dateLayout),
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		DurationMinutes: s.DurationMinutes,
		Status:          string(s.Status),
		IsBooked:        s.IsBooked,
	}
}

func bookingResponse(b schedule.Booking) BookingResponse {
	return BookingResponse{
		ID:               b.ID,
		SlotID:           b.SlotID,
		PatientID:        b.PatientID,
		DoctorID:         b.DoctorID,
		Date:             b.Date.Format(dateLayout),
		StartTime:        b.StartTime,
		VideoProvisioned: b.VideoProvisioned,
		Status:           string(b.Status),
	}
}

func createSlotHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateSlotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "could not parse request body")
			return
		}

		session, ok := GetSession(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		// Doctors create slots on their own calendar; admins may create for
		// any doctor by passing doctor_id.
		doctorID := session.UID
		if req.DoctorID != "" {
			parsed, err := uuid.Parse(req.DoctorID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "doctor_id must be a valid UUID")
				return
			}
			if parsed != session.UID && session.Role != identity.RoleAdmin {
				writeError(w, http.StatusForbidden, "cannot create slots for another doctor")
				return
			}
			doctorID = parsed
		}

		date, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}

		slot, err := svc.CreateSlot(r.Context(), doctorID, date, req.StartTime, req.EndTime, req.DurationMinutes)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeData(w, http.StatusCreated, slotResponse(*slot))
	}
}

func listDoctorSlotsHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "doctor id must be a valid UUID")
			return
		}

		date, err := time.Parse(dateLayout, r.URL.Query().Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "date query parameter must be YYYY-MM-DD")
			return
		}

		slots, err := svc.ListDoctorSlots(r.Context(), doctorID, date)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := make([]SlotResponse, 0, len(slots))
		for _, s := range slots {
			resp = append(resp, slotResponse(s))
		}
		writeData(w, http.StatusOK, resp)
	}
}

func bookSlotHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slotID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "slot id must be a valid UUID")
			return
		}

		session, ok := GetSession(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		booking, err := svc.BookSlot(r.Context(), slotID, session.UID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeDataMessage(w, http.StatusCreated, bookingResponse(*booking), "appointment booked successfully")
	}
}

func cancelBookingHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "booking id must be a valid UUID")
			return
		}

		session, ok := GetSession(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		// Patients may only cancel their own appointments; admins may cancel
		// any.
		booking, err := svc.GetBooking(r.Context(), bookingID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if booking.PatientID != session.UID && session.Role != identity.RoleAdmin {
			writeError(w, http.StatusForbidden, "cannot cancel another patient's appointment")
			return
		}

		if err := svc.CancelBooking(r.Context(), bookingID); err != nil {
			writeDomainError(w, err)
			return
		}

		writeDataMessage(w, http.StatusOK, map[string]string{"id": bookingID.String()}, "appointment cancelled")
	}
}

func myBookingsHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := GetSession(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		bookings, err := svc.ListPatientBookings(r.Context(), session.UID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := make([]BookingResponse, 0, len(bookings))
		for _, b := range bookings {
			resp = append(resp, bookingResponse(b))
		}
		writeData(w, http.StatusOK, resp)
	}
}
