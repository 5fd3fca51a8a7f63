package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carebridge/clinic-backend/internal/identity"
	"github.com/carebridge/clinic-backend/internal/profile"
)

func ownProfileHandler(ids *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := GetSession(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		u, err := ids.GetUser(r.Context(), session.UID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeData(w, http.StatusOK, userResponse(u))
	}
}

// profileTarget resolves the {role}/{uid} pair and checks the caller may
// touch it: admins may touch anyone, everyone else only themselves.
func profileTarget(w http.ResponseWriter, r *http.Request) (uuid.UUID, identity.Role, bool) {
	role := identity.Role(chi.URLParam(r, "role"))
	if role != identity.RoleDoctor && role != identity.RolePatient {
		writeError(w, http.StatusBadRequest, "role must be doctor or patient")
		return uuid.Nil, "", false
	}

	uid, err := uuid.Parse(chi.URLParam(r, "uid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "uid must be a valid UUID")
		return uuid.Nil, "", false
	}

	session, ok := GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return uuid.Nil, "", false
	}
	if session.Role != identity.RoleAdmin && session.UID != uid {
		writeError(w, http.StatusForbidden, "access denied")
		return uuid.Nil, "", false
	}

	return uid, role, true
}

func getProfileHandler(store *profile.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, role, ok := profileTarget(w, r)
		if !ok {
			return
		}

		p, err := store.Get(r.Context(), uid, role)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeData(w, http.StatusOK, p)
	}
}

func updateProfileHandler(store *profile.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, role, ok := profileTarget(w, r)
		if !ok {
			return
		}

		switch role {
		case identity.RoleDoctor:
			var req DoctorPatchRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "could not parse request body")
				return
			}

			updated, err := store.UpdateDoctor(r.Context(), uid, profile.DoctorPatch{
				DisplayName:     req.DisplayName,
				LicenseNumber:   req.LicenseNumber,
				Specialization:  req.Specialization,
				Hospital:        req.Hospital,
				YearsExperience: req.YearsExperience,
				ConsultationFee: req.ConsultationFee,
				Bio:             req.Bio,
			})
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeDataMessage(w, http.StatusOK, updated, "profile updated successfully")

		case identity.RolePatient:
			var req PatientPatchRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "could not parse request body")
				return
			}

			patch := profile.PatientPatch{
				DisplayName:       req.DisplayName,
				EmergencyContact:  req.EmergencyContact,
				Address:           req.Address,
				InsuranceProvider: req.InsuranceProvider,
				InsuranceNumber:   req.InsuranceNumber,
				MedicalHistory:    req.MedicalHistory,
				Allergies:         req.Allergies,
			}
			if req.DateOfBirth != nil {
				dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
				if err != nil {
					writeError(w, http.StatusBadRequest, "date_of_birth must be YYYY-MM-DD")
					return
				}
				patch.DateOfBirth = &dob
			}

			updated, err := store.UpdatePatient(r.Context(), uid, patch)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeDataMessage(w, http.StatusOK, updated, "profile updated successfully")
		}
	}
}
