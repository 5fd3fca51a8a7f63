package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebridge/clinic-backend/internal/identity"
)

func requestWithSession(method, target string, s Session) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	ctx := context.WithValue(req.Context(), sessionKey, s)
	return req.WithContext(ctx)
}

func TestMyRoleHandler(t *testing.T) {
	uid := uuid.New()

	tests := []struct {
		role     identity.Role
		wantPath string
	}{
		{identity.RoleAdmin, "/admin"},
		{identity.RoleDoctor, "/doctor-portal"},
		{identity.RolePatient, "/patient-portal"},
	}

	for _, tt := range tests {
		req := requestWithSession(http.MethodGet, "/roles/my-role", Session{
			UID:   uid,
			Email: "user@example.com",
			Role:  tt.role,
		})
		rec := httptest.NewRecorder()
		myRoleHandler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Data MyRoleResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, uid, body.Data.UID)
		assert.Equal(t, string(tt.role), body.Data.Role)
		assert.Equal(t, tt.wantPath, body.Data.DashboardPath)
	}
}

func TestMyRoleHandler_NoSession(t *testing.T) {
	rec := httptest.NewRecorder()
	myRoleHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/roles/my-role", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMyRoleHandler_EmptyRole(t *testing.T) {
	req := requestWithSession(http.MethodGet, "/roles/my-role", Session{UID: uuid.New()})
	rec := httptest.NewRecorder()
	myRoleHandler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidRolesHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	validRolesHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/roles/valid-roles", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			Roles []string `json:"roles"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.ElementsMatch(t, []string{"admin", "doctor", "patient"}, body.Data.Roles)
}
