package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/carebridge/clinic-backend/internal/db"
)

const (
	doctorCount  = 25
	daysOfSlots  = 7
	slotsPerDay  = 8
	slotMinutes  = 30
	seedPassword = "changeme-seed"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	_ = godotenv.Load()
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	doctorIDs, err := seedDoctors(context.Background(), pool, doctorCount)
	if err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	if err := seedSlots(context.Background(), pool, doctorIDs); err != nil {
		log.Fatalf("seed slots: %v", err)
	}

	log.Println("seed complete")
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d doctors", count)

	specialties := []string{
		"Dermatology",
		"Cardiology",
		"General Practice",
		"Orthopedics",
		"Endocrinology",
		"Neurology",
		"Pediatrics",
		"Psychiatry",
		"Ophthalmology",
		"ENT",
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		uid := uuid.New()
		name := gofakeit.Name()
		email := gofakeit.Email()
		spec := specialties[gofakeit.Number(0, len(specialties)-1)]

		_, err := tx.Exec(ctx, `
			INSERT INTO users (uid, email, password_hash, display_name, role, email_verified, created_at, updated_at)
			VALUES ($1, $2, $3, $4, 'doctor', true, now(), now())
		`, uid, email, string(hash), name)
		if err != nil {
			return nil, err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO doctors (uid, display_name, email, license_number, specialization, years_experience, consultation_fee, bio, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		`, uid, name, email,
			fmt.Sprintf("LIC-%06d", gofakeit.Number(100000, 999999)),
			spec,
			gofakeit.Number(1, 35),
			float64(gofakeit.Number(40, 300)),
			gofakeit.Sentence(12),
		)
		if err != nil {
			return nil, err
		}

		ids = append(ids, uid)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("doctors seeded")
	return ids, nil
}

func seedSlots(ctx context.Context, pool *pgxpool.Pool, doctorIDs []uuid.UUID) error {
	log.Printf("seeding slots for %d doctors", len(doctorIDs))

	today := time.Now().Truncate(24 * time.Hour)

	for _, doctorID := range doctorIDs {
		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for day := 0; day < daysOfSlots; day++ {
			date := today.AddDate(0, 0, day)
			// mornings 09:00-13:00 in half-hour slots
			for n := 0; n < slotsPerDay; n++ {
				startMin := 9*60 + n*slotMinutes
				endMin := startMin + slotMinutes
				start := fmt.Sprintf("%02d:%02d", startMin/60, startMin%60)
				end := fmt.Sprintf("%02d:%02d", endMin/60, endMin%60)

				_, err := tx.Exec(ctx, `
					INSERT INTO availability_slots (id, doctor_id, slot_date, start_time, end_time, duration_minutes, status, is_booked, created_at, updated_at)
					VALUES ($1, $2, $3, $4, $5, $6, 'available', false, now(), now())
				`, uuid.New(), doctorID, date, start, end, slotMinutes)
				if err != nil {
					_ = tx.Rollback(ctx)
					return err
				}
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}
	}

	log.Println("slots seeded")
	return nil
}
