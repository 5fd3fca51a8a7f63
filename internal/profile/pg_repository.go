package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/carebridge/clinic-backend/internal/db"
)

type PgRepository struct {
	db db.DB
}

func NewPgRepository(pool db.DB) *PgRepository {
	return &PgRepository{db: pool}
}

func scanDoctor(row pgx.Row) (*DoctorProfile, error) {
	var d DoctorProfile
	var hospital *string

	err := row.Scan(
		&d.UID,
		&d.DisplayName,
		&d.Email,
		&d.LicenseNumber,
		&d.Specialization,
		&hospital,
		&d.YearsExperience,
		&d.ConsultationFee,
		&d.Bio,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	d.Hospital = hospital
	return &d, nil
}

func scanPatient(row pgx.Row) (*PatientProfile, error) {
	var p PatientProfile

	err := row.Scan(
		&p.UID,
		&p.DisplayName,
		&p.Email,
		&p.DateOfBirth,
		&p.EmergencyContact,
		&p.Address,
		&p.InsuranceProvider,
		&p.InsuranceNumber,
		&p.MedicalHistory,
		&p.Allergies,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	return &p, nil
}

const doctorColumns = `uid, display_name, email, license_number, specialization, hospital, years_experience, consultation_fee, bio, created_at, updated_at`
const patientColumns = `uid, display_name, email, date_of_birth, emergency_contact, address, insurance_provider, insurance_number, medical_history, allergies, created_at, updated_at`

func (r *PgRepository) InsertDoctor(ctx context.Context, uid uuid.UUID, displayName, email string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO doctors (uid, display_name, email, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (uid) DO NOTHING
	`, uid, displayName, email)
	return err
}

func (r *PgRepository) InsertPatient(ctx context.Context, uid uuid.UUID, displayName, email string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO patients (uid, display_name, email, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (uid) DO NOTHING
	`, uid, displayName, email)
	return err
}

func (r *PgRepository) GetDoctor(ctx context.Context, uid uuid.UUID) (*DoctorProfile, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		WHERE uid = $1
	`, uid)
	return scanDoctor(row)
}

func (r *PgRepository) GetPatient(ctx context.Context, uid uuid.UUID) (*PatientProfile, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		WHERE uid = $1
	`, uid)
	return scanPatient(row)
}

func (r *PgRepository) UpdateDoctor(ctx context.Context, uid uuid.UUID, patch DoctorPatch) (*DoctorProfile, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE doctors
		SET display_name     = COALESCE($2, display_name),
		    license_number   = COALESCE($3, license_number),
		    specialization   = COALESCE($4, specialization),
		    hospital         = COALESCE($5, hospital),
		    years_experience = COALESCE($6, years_experience),
		    consultation_fee = COALESCE($7, consultation_fee),
		    bio              = COALESCE($8, bio),
		    updated_at       = now()
		WHERE uid = $1
		RETURNING `+doctorColumns+`
	`, uid, patch.DisplayName, patch.LicenseNumber, patch.Specialization,
		patch.Hospital, patch.YearsExperience, patch.ConsultationFee, patch.Bio)
	return scanDoctor(row)
}

func (r *PgRepository) UpdatePatient(ctx context.Context, uid uuid.UUID, patch PatientPatch) (*PatientProfile, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE patients
		SET display_name       = COALESCE($2, display_name),
		    date_of_birth      = COALESCE($3, date_of_birth),
		    emergency_contact  = COALESCE($4, emergency_contact),
		    address            = COALESCE($5, address),
		    insurance_provider = COALESCE($6, insurance_provider),
		    insurance_number   = COALESCE($7, insurance_number),
		    medical_history    = COALESCE($8, medical_history),
		    allergies          = COALESCE($9, allergies),
		    updated_at         = now()
		WHERE uid = $1
		RETURNING `+patientColumns+`
	`, uid, patch.DisplayName, patch.DateOfBirth, patch.EmergencyContact,
		patch.Address, patch.InsuranceProvider, patch.InsuranceNumber,
		patch.MedicalHistory, patch.Allergies)
	return scanPatient(row)
}

func (r *PgRepository) DeleteByUID(ctx context.Context, uid uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM doctors WHERE uid = $1`, uid); err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM patients WHERE uid = $1`, uid); err != nil {
		return err
	}
	return nil
}
