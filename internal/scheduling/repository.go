package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPatientNotFound     = errors.New("patient not found")
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrFavoriteNotFound    = errors.New("favorite not found")

	// ErrSlotTaken is returned both by the pre-write check and by the
	// repository when the partial unique index rejects a lost race.
	ErrSlotTaken = errors.New("slot already has a non-cancelled appointment")
)

// Repository contains all store interactions needed by the service. The
// schedule side (weekly ranges) is read-only; appointments are the only
// mutable shared resource.
type Repository interface {
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error)

	// ListDoctors returns all doctors, or those whose specialty name contains
	// the filter (case-insensitive) when it is non-empty.
	ListDoctors(ctx context.Context, specialty string) ([]Doctor, error)

	// Weekly template, read-only from the engine's perspective.
	ListWeeklyRanges(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) ([]WeeklyRange, error)

	// Conflict checks. Both consider non-cancelled appointments only.
	ListDayAppointments(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]Appointment, error)
	HasActiveAppointment(ctx context.Context, doctorID uuid.UUID, date time.Time, start TimeOfDay) (bool, error)

	// Creation and updates.
	InsertAppointment(ctx context.Context, appt *Appointment) (*Appointment, error)
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	UpdateAppointmentSlot(ctx context.Context, id uuid.UUID, date time.Time, start TimeOfDay) (*Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, to AppointmentStatus) (*Appointment, error)

	// Patient-facing reads.
	ListPatientAppointments(ctx context.Context, patientID uuid.UUID, status AppointmentStatus) ([]AppointmentDetail, error)
	NextPatientAppointment(ctx context.Context, patientID uuid.UUID, from time.Time) (*AppointmentDetail, error)

	// Catalog and rating read side.
	ListSpecialties(ctx context.Context) ([]Specialty, error)
	ListTopDoctors(ctx context.Context, orderBy string, limit int) ([]TopDoctor, error)

	// Favorites.
	FavoriteExists(ctx context.Context, patientID, doctorID uuid.UUID) (bool, error)
	InsertFavorite(ctx context.Context, patientID, doctorID uuid.UUID) (*FavoriteDoctor, error)
	DeleteFavorite(ctx context.Context, favoriteID uuid.UUID) error
	ListFavorites(ctx context.Context, patientID uuid.UUID) ([]FavoriteDoctor, error)

	// Event logging, best-effort.
	InsertEvent(ctx context.Context, ev EventLog) error
}
