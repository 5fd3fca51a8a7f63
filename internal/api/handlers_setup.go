package api

import (
	"encoding/json"
	"net/http"

	"github.com/carebridge/clinic-backend/internal/setup"
)

func setupStatusHandler(svc *setup.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.Status(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeData(w, http.StatusOK, SetupStatusResponse{
			SetupComplete:   st.SetupComplete,
			AdminCount:      st.AdminCount,
			ValidTokens:     st.ValidTokens,
			DevelopmentMode: st.DevelopmentMode,
		})
	}
}

func generateSetupTokenHandler(svc *setup.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GenerateTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "could not parse request body")
			return
		}

		secret := req.SecretKey
		if secret == "" {
			secret = r.Header.Get("X-Admin-Secret")
		}

		token, expiresAt, err := svc.GenerateToken(r.Context(), secret, req.AllowMultiple)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeDataMessage(w, http.StatusOK, map[string]any{
			"token":            token,
			"expires_at":       expiresAt.Unix(),
			"registration_url": "/admin-setup/register?token=" + token,
		}, "admin registration token generated successfully")
	}
}

func validateSetupTokenHandler(svc *setup.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ValidateTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "could not parse request body")
			return
		}
		if req.Token == "" {
			writeError(w, http.StatusBadRequest, "token is required")
			return
		}

		if err := svc.ValidateToken(r.Context(), req.Token); err != nil {
			writeDomainError(w, err)
			return
		}

		writeDataMessage(w, http.StatusOK, map[string]bool{"valid": true}, "token is valid")
	}
}

func resetDevSetupHandler(svc *setup.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ResetDevRequest
		// body is optional, the secret may arrive via header
		_ = json.NewDecoder(r.Body).Decode(&req)

		secret := req.SecretKey
		if secret == "" {
			secret = r.Header.Get("X-Admin-Secret")
		}

		removed, err := svc.ResetDev(r.Context(), secret)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeDataMessage(w, http.StatusOK, map[string]any{
			"reset":          true,
			"tokens_removed": removed,
		}, "admin setup reset successfully")
	}
}

func registerAdminHandler(svc *setup.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterAdminRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "could not parse request body")
			return
		}
		if req.Token == "" || req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "token, email, and password are required")
			return
		}

		admin, err := svc.RegisterAdmin(r.Context(), req.Token, req.Email, req.Password, req.DisplayName)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeDataMessage(w, http.StatusCreated, userResponse(admin), "admin user created successfully")
	}
}
