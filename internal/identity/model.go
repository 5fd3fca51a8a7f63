package identity

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// ValidRoles is the closed set of roles an identity may hold.
var ValidRoles = []Role{RoleAdmin, RoleDoctor, RolePatient}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	}
	return false
}

// Dashboard destinations per role. Unknown or absent roles land on the
// generic dashboard.
const (
	PathAdmin   = "/admin"
	PathDoctor  = "/doctor-portal"
	PathPatient = "/patient-portal"
	PathDefault = "/dashboard"
)

// DashboardPathFor maps a role to its portal entry point. Total over any
// input; anything outside the closed role set gets the default path.
func DashboardPathFor(role Role) string {
	switch role {
	case RoleAdmin:
		return PathAdmin
	case RoleDoctor:
		return PathDoctor
	case RolePatient:
		return PathPatient
	default:
		return PathDefault
	}
}

// User is the authoritative account record. DisplayName is mirrored into the
// role-specific profile row; every write goes through one synchronized path.
type User struct {
	UID           uuid.UUID
	Email         string
	PasswordHash  string
	DisplayName   *string
	Role          Role
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
