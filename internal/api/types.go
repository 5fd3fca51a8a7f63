package api

import (
	"time"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	DisplayName     string `json:"display_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	UID           uuid.UUID `json:"uid"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"display_name,omitempty"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

type SetRoleRequest struct {
	UID  string `json:"uid"`
	Role string `json:"role"`
}

type CreateUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
}

type MyRoleResponse struct {
	UID           uuid.UUID `json:"uid"`
	Email         string    `json:"email,omitempty"`
	Role          string    `json:"role"`
	DashboardPath string    `json:"dashboard_path"`
}

type GenerateTokenRequest struct {
	SecretKey     string `json:"secret_key"`
	AllowMultiple bool   `json:"allow_multiple"`
}

type ValidateTokenRequest struct {
	Token string `json:"token"`
}

type ResetDevRequest struct {
	SecretKey string `json:"secret_key"`
}

type RegisterAdminRequest struct {
	Token       string `json:"token"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type SetupStatusResponse struct {
	SetupComplete   bool `json:"setup_complete"`
	AdminCount      int  `json:"admin_count"`
	ValidTokens     int  `json:"valid_tokens,omitempty"`
	DevelopmentMode bool `json:"development_mode"`
}

type DoctorPatchRequest struct {
	DisplayName     *string  `json:"display_name"`
	LicenseNumber   *string  `json:"license_number"`
	Specialization  *string  `json:"specialization"`
	Hospital        *string  `json:"hospital"`
	YearsExperience *int     `json:"years_experience"`
	ConsultationFee *float64 `json:"consultation_fee"`
	Bio             *string  `json:"bio"`
}

type PatientPatchRequest struct {
	DisplayName       *string   `json:"display_name"`
	DateOfBirth       *string   `json:"date_of_birth"`
	EmergencyContact  *string   `json:"emergency_contact"`
	Address           *string   `json:"address"`
	InsuranceProvider *string   `json:"insurance_provider"`
	InsuranceNumber   *string   `json:"insurance_number"`
	MedicalHistory    *[]string `json:"medical_history"`
	Allergies         *[]string `json:"allergies"`
}

type CreateSlotRequest struct {
	DoctorID        string `json:"doctor_id"`
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	DurationMinutes int    `json:"duration_minutes"`
}

type SlotResponse struct {
	ID              uuid.UUID `json:"id"`
	DoctorID        uuid.UUID `json:"doctor_id"`
	Date            string    `json:"date"`
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status"`
	IsBooked        bool      `json:"is_booked"`
}

type BookingResponse struct {
	ID               uuid.UUID `json:"id"`
	SlotID           uuid.UUID `json:"slot_id"`
	PatientID        uuid.UUID `json:"patient_id"`
	DoctorID         uuid.UUID `json:"doctor_id"`
	Date             string    `json:"date"`
	StartTime        string    `json:"start_time"`
	VideoProvisioned bool      `json:"video_provisioned"`
	Status           string    `json:"status"`
}
