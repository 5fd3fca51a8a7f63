package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carebridge/clinic-backend/internal/identity"
)

func setRoleHandler(ids *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SetRoleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "could not parse request body")
			return
		}
		if req.UID == "" || req.Role == "" {
			writeError(w, http.StatusBadRequest, "uid and role are required")
			return
		}

		uid, err := uuid.Parse(req.UID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "uid must be a valid UUID")
			return
		}

		if err := ids.SetRole(r.Context(), uid, identity.Role(req.Role)); err != nil {
			writeDomainError(w, err)
			return
		}

		writeDataMessage(w, http.StatusOK, map[string]string{
			"uid":  req.UID,
			"role": req.Role,
		}, "role "+req.Role+" set successfully for user")
	}
}

func getRoleHandler(ids *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := uuid.Parse(chi.URLParam(r, "uid"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "uid must be a valid UUID")
			return
		}

		u, err := ids.GetUser(r.Context(), uid)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeData(w, http.StatusOK, map[string]string{
			"uid":  u.UID.String(),
			"role": string(u.Role),
		})
	}
}

func removeRoleHandler(ids *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := uuid.Parse(chi.URLParam(r, "uid"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "uid must be a valid UUID")
			return
		}

		if err := ids.ResetRole(r.Context(), uid); err != nil {
			writeDomainError(w, err)
			return
		}

		writeDataMessage(w, http.StatusOK, map[string]string{"uid": uid.String()}, "user role removed successfully")
	}
}

func createUserHandler(ids *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "could not parse request body")
			return
		}
		if req.Email == "" || req.Password == "" || req.Role == "" {
			writeError(w, http.StatusBadRequest, "email, password, and role are required")
			return
		}

		u, err := ids.CreateUserWithRole(r.Context(), req.Email, req.Password, req.DisplayName, identity.Role(req.Role))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeDataMessage(w, http.StatusCreated, userResponse(u), "user created successfully with role")
	}
}

func listUsersByRoleHandler(ids *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := identity.Role(chi.URLParam(r, "role"))

		users, err := ids.ListUsersByRole(r.Context(), role)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := make([]UserResponse, 0, len(users))
		for i := range users {
			resp = append(resp, userResponse(&users[i]))
		}

		writeData(w, http.StatusOK, map[string]any{
			"role":  string(role),
			"users": resp,
			"count": len(resp),
		})
	}
}

func myRoleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := GetSession(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if session.Role == "" {
			writeError(w, http.StatusNotFound, "role not found, please contact administrator")
			return
		}

		writeData(w, http.StatusOK, MyRoleResponse{
			UID:           session.UID,
			Email:         session.Email,
			Role:          string(session.Role),
			DashboardPath: identity.DashboardPathFor(session.Role),
		})
	}
}

func validRolesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]any{"roles": identity.ValidRoles})
	}
}

func deleteUserHandler(ids *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := uuid.Parse(chi.URLParam(r, "uid"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "uid must be a valid UUID")
			return
		}

		if err := ids.DeleteUser(r.Context(), uid); err != nil {
			writeDomainError(w, err)
			return
		}

		writeDataMessage(w, http.StatusOK, map[string]string{"uid": uid.String()}, "user deleted successfully")
	}
}
