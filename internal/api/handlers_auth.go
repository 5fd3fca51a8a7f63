package api

import (
	"encoding/json"
	"net/http"

	"github.com/carebridge/clinic-backend/internal/identity"
)

func userResponse(u *identity.User) UserResponse {
	resp := UserResponse{
		UID:           u.UID,
		Email:         u.Email,
		Role:          string(u.Role),
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
	if u.DisplayName != nil {
		resp.DisplayName = *u.DisplayName
	}
	return resp
}

func registerHandler(ids *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "could not parse request body")
			return
		}

		// Validation happens before any store call; a mismatched confirmation
		// never reaches the backend.
		u, err := ids.Register(r.Context(), req.Email, req.Password, req.ConfirmPassword, req.DisplayName)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeDataMessage(w, http.StatusCreated, userResponse(u), "registration completed successfully")
	}
}

func loginHandler(ids *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "could not parse request body")
			return
		}

		u, token, err := ids.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeData(w, http.StatusOK, LoginResponse{
			Token: token,
			User:  userResponse(u),
		})
	}
}
