package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDashboardPathFor(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleAdmin, "/admin"},
		{RoleDoctor, "/doctor-portal"},
		{RolePatient, "/patient-portal"},
		{Role(""), "/dashboard"},
		{Role("superuser"), "/dashboard"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DashboardPathFor(tt.role), "role %q", tt.role)
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range ValidRoles {
		assert.True(t, r.Valid())
	}
	assert.False(t, Role("").Valid())
	assert.False(t, Role("root").Valid())
	assert.False(t, Role("Admin").Valid())
}
