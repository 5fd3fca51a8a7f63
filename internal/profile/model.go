package profile

import (
	"time"

	"github.com/google/uuid"
)

// DoctorProfile extends an identity with the doctor collection's fields. It
// is keyed by the same uid and never outlives the identity.
type DoctorProfile struct {
	UID             uuid.UUID
	DisplayName     string
	Email           string
	LicenseNumber   string
	Specialization  string
	Hospital        *string
	YearsExperience int
	ConsultationFee float64
	Bio             string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PatientProfile extends an identity with the patient collection's fields.
type PatientProfile struct {
	UID               uuid.UUID
	DisplayName       string
	Email             string
	DateOfBirth       *time.Time
	EmergencyContact  string
	Address           string
	InsuranceProvider *string
	InsuranceNumber   *string
	MedicalHistory    []string
	Allergies         []string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// DoctorPatch is a partial update; nil fields are left untouched.
type DoctorPatch struct {
	DisplayName     *string
	LicenseNumber   *string
	Specialization  *string
	Hospital        *string
	YearsExperience *int
	ConsultationFee *float64
	Bio             *string
}

func (p DoctorPatch) Empty() bool {
	return p.DisplayName == nil && p.LicenseNumber == nil && p.Specialization == nil &&
		p.Hospital == nil && p.YearsExperience == nil && p.ConsultationFee == nil && p.Bio == nil
}

// PatientPatch is a partial update; nil fields are left untouched.
type PatientPatch struct {
	DisplayName       *string
	DateOfBirth       *time.Time
	EmergencyContact  *string
	Address           *string
	InsuranceProvider *string
	InsuranceNumber   *string
	MedicalHistory    *[]string
	Allergies         *[]string
}

func (p PatientPatch) Empty() bool {
	return p.DisplayName == nil && p.DateOfBirth == nil && p.EmergencyContact == nil &&
		p.Address == nil && p.InsuranceProvider == nil && p.InsuranceNumber == nil &&
		p.MedicalHistory == nil && p.Allergies == nil
}
