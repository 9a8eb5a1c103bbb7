package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healthunity/scheduling-service/internal/db"
)

var specialtyNames = []string{
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

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

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

	specialtyIDs, err := seedSpecialties(context.Background(), pool)
	if err != nil {
		log.Fatalf("seed specialties: %v", err)
	}
	doctorIDs, err := seedDoctors(context.Background(), pool, specialtyIDs, 100)
	if err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	patientIDs, err := seedPatients(context.Background(), pool, 2000)
	if err != nil {
		log.Fatalf("seed patients: %v", err)
	}
	if err := seedReviews(context.Background(), pool, doctorIDs, patientIDs, 5000); err != nil {
		log.Fatalf("seed reviews: %v", err)
	}

	log.Println("seed complete")
}

func seedSpecialties(ctx context.Context, pool *pgxpool.Pool) ([]uuid.UUID, error) {
	log.Printf("seeding %d specialties", len(specialtyNames))

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, len(specialtyNames))
	for _, name := range specialtyNames {
		id := uuid.New()
		_, err := tx.Exec(ctx, `
			INSERT INTO specialties (id, name)
			VALUES ($1, $2)
		`, id, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("specialties seeded")
	return ids, nil
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, specialtyIDs []uuid.UUID, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d doctors", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		profileID := uuid.New()
		_, err := tx.Exec(ctx, `
			INSERT INTO user_profiles (id, name, surname, email, phone, image_url, address, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		`, profileID, gofakeit.FirstName(), gofakeit.LastName(), gofakeit.Email(),
			gofakeit.Phone(), gofakeit.ImageURL(200, 200), gofakeit.Address().Address)
		if err != nil {
			return nil, err
		}

		doctorID := uuid.New()
		spec := specialtyIDs[gofakeit.Number(0, len(specialtyIDs)-1)]
		_, err = tx.Exec(ctx, `
			INSERT INTO doctors (id, profile_id, specialty_id, experience_years, bio, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now())
		`, doctorID, profileID, spec, gofakeit.Number(1, 35), gofakeit.Sentence(12))
		if err != nil {
			return nil, err
		}

		if err := seedWeeklyHours(ctx, tx, doctorID); err != nil {
			return nil, err
		}

		ids = append(ids, doctorID)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("doctors seeded")
	return ids, nil
}

// seedWeeklyHours gives a doctor a morning range Monday through Friday and,
// for some, an afternoon range too. Minutes always land on a half-hour
// boundary so every generated slot is bookable.
func seedWeeklyHours(ctx context.Context, tx pgx.Tx, doctorID uuid.UUID) error {
	for day := 1; day <= 5; day++ {
		morningStart := gofakeit.Number(16, 20) * 30 // 08:00 .. 10:00
		morningEnd := morningStart + gofakeit.Number(4, 8)*30

		if _, err := tx.Exec(ctx, `
			INSERT INTO doctor_hours (id, doctor_id, day_of_week, start_minute, end_minute)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New(), doctorID, day, morningStart, morningEnd); err != nil {
			return err
		}

		if gofakeit.Bool() {
			afternoonStart := gofakeit.Number(28, 32) * 30 // 14:00 .. 16:00
			afternoonEnd := afternoonStart + gofakeit.Number(4, 6)*30

			if _, err := tx.Exec(ctx, `
				INSERT INTO doctor_hours (id, doctor_id, day_of_week, start_minute, end_minute)
				VALUES ($1, $2, $3, $4, $5)
			`, uuid.New(), doctorID, day, afternoonStart, afternoonEnd); err != nil {
				return err
			}
		}
	}
	return nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d patients", count)

	const batchSize = 500

	ids := make([]uuid.UUID, 0, count)
	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return nil, err
		}

		for i := offset; i < end; i++ {
			profileID := uuid.New()
			_, err := tx.Exec(ctx, `
				INSERT INTO user_profiles (id, name, surname, email, phone, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, now(), now())
			`, profileID, gofakeit.FirstName(), gofakeit.LastName(), gofakeit.Email(), gofakeit.Phone())
			if err != nil {
				_ = tx.Rollback(ctx)
				return nil, err
			}

			patientID := uuid.New()
			_, err = tx.Exec(ctx, `
				INSERT INTO patients (id, profile_id, created_at, updated_at)
				VALUES ($1, $2, now(), now())
			`, patientID, profileID)
			if err != nil {
				_ = tx.Rollback(ctx)
				return nil, err
			}
			ids = append(ids, patientID)
		}

		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
	}

	log.Println("patients seeded")
	return ids, nil
}

func seedReviews(ctx context.Context, pool *pgxpool.Pool, doctorIDs, patientIDs []uuid.UUID, count int) error {
	log.Printf("seeding %d reviews", count)

	const batchSize = 500

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			_, err := tx.Exec(ctx, `
				INSERT INTO doctor_reviews (id, doctor_id, patient_id, stars, comment)
				VALUES ($1, $2, $3, $4, $5)
			`, uuid.New(),
				doctorIDs[gofakeit.Number(0, len(doctorIDs)-1)],
				patientIDs[gofakeit.Number(0, len(patientIDs)-1)],
				gofakeit.Number(1, 5),
				gofakeit.Sentence(8))
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}
	}

	log.Println("reviews seeded")
	return nil
}
