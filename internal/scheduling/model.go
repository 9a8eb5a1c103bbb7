package scheduling

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Terminal reports whether no further date/time mutation is allowed.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

const DefaultReason = "general consultation"

type Specialty struct {
	ID   uuid.UUID
	Name string
	Icon *string
}

// Patient carries the profile fields the engine needs for validation and
// notification. Profile fields are nil when the linked profile record is
// absent.
type Patient struct {
	ID        uuid.UUID
	Name      *string
	Surname   *string
	Email     *string
	Phone     *string
	Address   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Doctor struct {
	ID              uuid.UUID
	ExperienceYears int
	Bio             *string
	Name            *string
	Surname         *string
	ImageURL        *string
	Address         *string
	Specialty       *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// WeeklyRange is one recurring working interval of a doctor's weekly template.
// DayOfWeek is ISO: 1=Monday .. 7=Sunday. Ranges may overlap.
type WeeklyRange struct {
	ID        uuid.UUID
	DoctorID  uuid.UUID
	DayOfWeek int
	Start     TimeOfDay
	End       TimeOfDay
}

type Appointment struct {
	ID        uuid.UUID
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Date      time.Time
	Start     TimeOfDay
	Reason    string
	Status    AppointmentStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppointmentDetail decorates an appointment with the doctor fields shown in
// listings. Decoration fields are nil when the doctor's linked records are
// absent.
type AppointmentDetail struct {
	Appointment
	DoctorName     *string
	DoctorSurname  *string
	DoctorImageURL *string
	DoctorAddress  *string
	Specialty      *string
}

// Slot is a derived bookable (date, time) pair. Slots are computed on demand
// and never persisted.
type Slot struct {
	Date  time.Time
	Start TimeOfDay
}

// DoctorSummary is a finder result. Available is always true for returned
// candidates; excluded doctors are simply not returned.
type DoctorSummary struct {
	ID        uuid.UUID
	Name      *string
	Surname   *string
	ImageURL  *string
	Specialty *string
	Rating    float64
	Available bool
}

// TopDoctor is the read-side rating aggregate; it has no coupling to
// scheduling state.
type TopDoctor struct {
	ID              uuid.UUID
	Name            *string
	Surname         *string
	ImageURL        *string
	Specialty       *string
	ExperienceYears int
	Rating          float64
	Reviews         int
}

type FavoriteDoctor struct {
	ID        uuid.UUID
	DoctorID  uuid.UUID
	Name      *string
	Surname   *string
	Specialty *string
	Rating    float64
	Reviews   int
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}
