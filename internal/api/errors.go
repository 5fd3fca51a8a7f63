package api

import (
	"errors"
	"net/http"

	"github.com/carebridge/clinic-backend/internal/identity"
	"github.com/carebridge/clinic-backend/internal/profile"
	"github.com/carebridge/clinic-backend/internal/redisclient"
	"github.com/carebridge/clinic-backend/internal/schedule"
	"github.com/carebridge/clinic-backend/internal/setup"
)

// writeDomainError maps domain sentinels to HTTP statuses. Validation and
// conflict errors surface their own message; anything unrecognized is a
// transport or backend failure and gets the generic retry prompt.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, identity.ErrInvalidEmail),
		errors.Is(err, identity.ErrPasswordTooShort),
		errors.Is(err, identity.ErrPasswordMismatch),
		errors.Is(err, identity.ErrInvalidRole),
		errors.Is(err, profile.ErrUnknownRole),
		errors.Is(err, profile.ErrEmptyPatch),
		errors.Is(err, schedule.ErrInvalidTimeRange),
		errors.Is(err, redisclient.ErrTokenNotFound),
		errors.Is(err, redisclient.ErrTokenUsed):
		writeError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, identity.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, setup.ErrBadSecret):
		writeError(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, setup.ErrSetupComplete),
		errors.Is(err, setup.ErrNotDevMode):
		writeError(w, http.StatusForbidden, err.Error())

	case errors.Is(err, identity.ErrUserNotFound),
		errors.Is(err, profile.ErrProfileNotFound),
		errors.Is(err, schedule.ErrSlotNotFound),
		errors.Is(err, schedule.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, identity.ErrEmailTaken),
		errors.Is(err, identity.ErrUserHasAppointments),
		errors.Is(err, schedule.ErrSlotOverlap),
		errors.Is(err, schedule.ErrSlotAlreadyBooked),
		errors.Is(err, schedule.ErrSlotBlocked),
		errors.Is(err, schedule.ErrSlotBusy),
		errors.Is(err, schedule.ErrAlreadyCancelled),
		errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, err.Error())

	default:
		writeError(w, http.StatusInternalServerError, "something went wrong, please try again")
	}
}
