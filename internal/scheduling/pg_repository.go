package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Surname,
		&p.Email,
		&p.Phone,
		&p.Address,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	return &p, nil
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor

	err := row.Scan(
		&d.ID,
		&d.ExperienceYears,
		&d.Bio,
		&d.Name,
		&d.Surname,
		&d.ImageURL,
		&d.Address,
		&d.Specialty,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	return &d, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.DoctorID,
		&a.PatientID,
		&a.Date,
		&a.Start,
		&a.Reason,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

func scanAppointmentDetail(row pgx.Row) (*AppointmentDetail, error) {
	var d AppointmentDetail

	err := row.Scan(
		&d.ID,
		&d.DoctorID,
		&d.PatientID,
		&d.Date,
		&d.Start,
		&d.Reason,
		&d.Status,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.DoctorName,
		&d.DoctorSurname,
		&d.DoctorImageURL,
		&d.DoctorAddress,
		&d.Specialty,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &d, nil
}

const doctorColumns = `
	d.id, d.experience_years, d.bio,
	up.name, up.surname, up.image_url, up.address,
	s.name,
	d.created_at, d.updated_at`

const appointmentDetailColumns = `
	a.id, a.doctor_id, a.patient_id, a.date, a.start_minute,
	a.reason, a.status, a.created_at, a.updated_at,
	up.name, up.surname, up.image_url, up.address,
	s.name`

// Interface methods

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT p.id, up.name, up.surname, up.email, up.phone, up.address,
		       p.created_at, p.updated_at
		FROM patients p
		LEFT JOIN user_profiles up ON up.id = p.profile_id
		WHERE p.id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors d
		LEFT JOIN user_profiles up ON up.id = d.profile_id
		LEFT JOIN specialties s ON s.id = d.specialty_id
		WHERE d.id = $1
	`, id)
	return scanDoctor(row)
}

func (r *PgRepository) ListDoctors(ctx context.Context, specialty string) ([]Doctor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors d
		LEFT JOIN user_profiles up ON up.id = d.profile_id
		LEFT JOIN specialties s ON s.id = d.specialty_id
		WHERE $1 = '' OR s.name ILIKE '%' || $1 || '%'
		ORDER BY d.created_at
	`, specialty)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}

	return result, rows.Err()
}

func (r *PgRepository) ListWeeklyRanges(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) ([]WeeklyRange, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, doctor_id, day_of_week, start_minute, end_minute
		FROM doctor_hours
		WHERE doctor_id = $1 AND day_of_week = $2
		ORDER BY created_at
	`, doctorID, dayOfWeek)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []WeeklyRange
	for rows.Next() {
		var wr WeeklyRange
		if err := rows.Scan(&wr.ID, &wr.DoctorID, &wr.DayOfWeek, &wr.Start, &wr.End); err != nil {
			return nil, err
		}
		result = append(result, wr)
	}

	return result, rows.Err()
}

func (r *PgRepository) ListDayAppointments(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, doctor_id, patient_id, date, start_minute, reason, status, created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1 AND date = $2 AND status <> 'cancelled'
	`, doctorID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	return result, rows.Err()
}

func (r *PgRepository) HasActiveAppointment(ctx context.Context, doctorID uuid.UUID, date time.Time, start TimeOfDay) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $1 AND date = $2 AND start_minute = $3 AND status <> 'cancelled'
		)
	`, doctorID, date, start).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PgRepository) InsertAppointment(ctx context.Context, appt *Appointment) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, doctor_id, patient_id, date, start_minute, reason, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING id, doctor_id, patient_id, date, start_minute, reason, status, created_at, updated_at
	`, appt.ID, appt.DoctorID, appt.PatientID, appt.Date, appt.Start, appt.Reason, appt.Status)

	created, err := scanAppointment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrSlotTaken
		}
		return nil, err
	}
	return created, nil
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, doctor_id, patient_id, date, start_minute, reason, status, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) UpdateAppointmentSlot(ctx context.Context, id uuid.UUID, date time.Time, start TimeOfDay) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET date = $2,
		    start_minute = $3,
		    updated_at = now()
		WHERE id = $1
		RETURNING id, doctor_id, patient_id, date, start_minute, reason, status, created_at, updated_at
	`, id, date, start)

	updated, err := scanAppointment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrSlotTaken
		}
		return nil, err
	}
	return updated, nil
}

func (r *PgRepository) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, to AppointmentStatus) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		RETURNING id, doctor_id, patient_id, date, start_minute, reason, status, created_at, updated_at
	`, id, to)
	return scanAppointment(row)
}

func (r *PgRepository) ListPatientAppointments(ctx context.Context, patientID uuid.UUID, status AppointmentStatus) ([]AppointmentDetail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentDetailColumns+`
		FROM appointments a
		LEFT JOIN doctors d ON d.id = a.doctor_id
		LEFT JOIN user_profiles up ON up.id = d.profile_id
		LEFT JOIN specialties s ON s.id = d.specialty_id
		WHERE a.patient_id = $1 AND ($2 = '' OR a.status = $2)
		ORDER BY a.date DESC, a.start_minute DESC
	`, patientID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AppointmentDetail
	for rows.Next() {
		d, err := scanAppointmentDetail(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}

	return result, rows.Err()
}

func (r *PgRepository) NextPatientAppointment(ctx context.Context, patientID uuid.UUID, from time.Time) (*AppointmentDetail, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentDetailColumns+`
		FROM appointments a
		LEFT JOIN doctors d ON d.id = a.doctor_id
		LEFT JOIN user_profiles up ON up.id = d.profile_id
		LEFT JOIN specialties s ON s.id = d.specialty_id
		WHERE a.patient_id = $1 AND a.date >= $2 AND a.status <> 'cancelled'
		ORDER BY a.date ASC, a.start_minute ASC
		LIMIT 1
	`, patientID, from)
	return scanAppointmentDetail(row)
}

func (r *PgRepository) ListSpecialties(ctx context.Context) ([]Specialty, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, icon
		FROM specialties
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Specialty
	for rows.Next() {
		var s Specialty
		if err := rows.Scan(&s.ID, &s.Name, &s.Icon); err != nil {
			return nil, err
		}
		result = append(result, s)
	}

	return result, rows.Err()
}

func (r *PgRepository) ListTopDoctors(ctx context.Context, orderBy string, limit int) ([]TopDoctor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT d.id, up.name, up.surname, up.image_url, s.name, d.experience_years,
		       COALESCE(AVG(dr.stars), 0.0) AS rating,
		       COUNT(dr.id) AS reviews
		FROM doctors d
		LEFT JOIN user_profiles up ON up.id = d.profile_id
		LEFT JOIN specialties s ON s.id = d.specialty_id
		LEFT JOIN doctor_reviews dr ON dr.doctor_id = d.id
		GROUP BY d.id, up.name, up.surname, up.image_url, s.name, d.experience_years
		ORDER BY
			CASE WHEN $1 = 'rating' THEN COALESCE(AVG(dr.stars), 0.0) END DESC,
			CASE WHEN $1 = 'reviews' THEN COUNT(dr.id) END DESC,
			CASE WHEN $1 = 'experience' THEN d.experience_years END DESC,
			d.id
		LIMIT $2
	`, orderBy, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TopDoctor
	for rows.Next() {
		var t TopDoctor
		err := rows.Scan(&t.ID, &t.Name, &t.Surname, &t.ImageURL, &t.Specialty,
			&t.ExperienceYears, &t.Rating, &t.Reviews)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}

	return result, rows.Err()
}

func (r *PgRepository) FavoriteExists(ctx context.Context, patientID, doctorID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM favorite_doctors WHERE patient_id = $1 AND doctor_id = $2
		)
	`, patientID, doctorID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

const favoriteColumns = `
	f.id, f.doctor_id,
	up.name, up.surname, s.name,
	COALESCE(AVG(dr.stars), 0.0) AS rating,
	COUNT(dr.id) AS reviews`

const favoriteJoins = `
	FROM favorite_doctors f
	JOIN doctors d ON d.id = f.doctor_id
	LEFT JOIN user_profiles up ON up.id = d.profile_id
	LEFT JOIN specialties s ON s.id = d.specialty_id
	LEFT JOIN doctor_reviews dr ON dr.doctor_id = d.id`

func (r *PgRepository) InsertFavorite(ctx context.Context, patientID, doctorID uuid.UUID) (*FavoriteDoctor, error) {
	id := uuid.New()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO favorite_doctors (id, patient_id, doctor_id, created_at)
		VALUES ($1, $2, $3, now())
	`, id, patientID, doctorID)
	if err != nil {
		return nil, fmt.Errorf("insert favorite: %w", err)
	}

	return r.getFavoriteByID(ctx, id)
}

func (r *PgRepository) getFavoriteByID(ctx context.Context, id uuid.UUID) (*FavoriteDoctor, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+favoriteColumns+favoriteJoins+`
		WHERE f.id = $1
		GROUP BY f.id, f.doctor_id, up.name, up.surname, s.name
	`, id)

	var fav FavoriteDoctor
	err := row.Scan(&fav.ID, &fav.DoctorID, &fav.Name, &fav.Surname, &fav.Specialty, &fav.Rating, &fav.Reviews)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFavoriteNotFound
		}
		return nil, err
	}
	return &fav, nil
}

func (r *PgRepository) DeleteFavorite(ctx context.Context, favoriteID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM favorite_doctors WHERE id = $1
	`, favoriteID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

func (r *PgRepository) ListFavorites(ctx context.Context, patientID uuid.UUID) ([]FavoriteDoctor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+favoriteColumns+favoriteJoins+`
		WHERE f.patient_id = $1
		GROUP BY f.id, f.doctor_id, up.name, up.surname, s.name
		ORDER BY MIN(f.created_at)
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []FavoriteDoctor
	for rows.Next() {
		var fav FavoriteDoctor
		err := rows.Scan(&fav.ID, &fav.DoctorID, &fav.Name, &fav.Surname, &fav.Specialty, &fav.Rating, &fav.Reviews)
		if err != nil {
			return nil, err
		}
		result = append(result, fav)
	}

	return result, rows.Err()
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}

	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
