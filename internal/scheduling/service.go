package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/healthunity/scheduling-service/internal/notification"
	redisclient "github.com/healthunity/scheduling-service/internal/redis"
)

const (
	EventAppointmentBooked      = "APPOINTMENT_BOOKED"
	EventAppointmentRescheduled = "APPOINTMENT_RESCHEDULED"
	EventAppointmentCancelled   = "APPOINTMENT_CANCELLED"
	EventAppointmentCompleted   = "APPOINTMENT_COMPLETED"
)

var (
	ErrOutsideWorkingHours  = errors.New("requested time is outside the doctor's working hours")
	ErrSlotBeingBooked      = errors.New("slot is currently being booked, please retry")
	ErrNotAppointmentOwner  = errors.New("appointment belongs to another patient")
	ErrAppointmentFinalized = errors.New("appointment is cancelled or completed")
	ErrAlreadyFavorite      = errors.New("doctor is already in favorites")
)

// Notifier delivers booking confirmations. Failures are logged and swallowed;
// they never roll back the booking.
type Notifier interface {
	BookingConfirmed(ctx context.Context, msg notification.BookingConfirmation) error
}

type Service struct {
	repo     Repository
	locker   redisclient.Locker
	notifier Notifier
	log      *zap.Logger
}

func NewService(repo Repository, locker redisclient.Locker, notifier Notifier, log *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		locker:   locker,
		notifier: notifier,
		log:      log,
	}
}

// FreeSlots derives the bookable slots for a doctor on a date from the weekly
// template and that day's non-cancelled appointments. An unknown doctor yields
// an empty result, same as a doctor with no ranges for that weekday.
func (s *Service) FreeSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]Slot, error) {
	ranges, err := s.repo.ListWeeklyRanges(ctx, doctorID, ISOWeekday(date))
	if err != nil {
		return nil, fmt.Errorf("load weekly ranges: %w", err)
	}
	if len(ranges) == 0 {
		return nil, nil
	}

	appts, err := s.repo.ListDayAppointments(ctx, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("load day appointments: %w", err)
	}

	return buildFreeSlots(ranges, occupiedTimes(appts), date), nil
}

// checkSlotBookable is the single gate used by creation, rescheduling and the
// doctor finder: the time must fall inside a working range (inclusive on both
// ends) and no non-cancelled appointment may hold the slot.
func (s *Service) checkSlotBookable(ctx context.Context, doctorID uuid.UUID, date time.Time, start TimeOfDay) error {
	ranges, err := s.repo.ListWeeklyRanges(ctx, doctorID, ISOWeekday(date))
	if err != nil {
		return fmt.Errorf("load weekly ranges: %w", err)
	}
	if !withinAnyRange(ranges, start) {
		return ErrOutsideWorkingHours
	}

	taken, err := s.repo.HasActiveAppointment(ctx, doctorID, date, start)
	if err != nil {
		return fmt.Errorf("check existing appointment: %w", err)
	}
	if taken {
		return ErrSlotTaken
	}

	return nil
}

func isConflict(err error) bool {
	return errors.Is(err, ErrOutsideWorkingHours) || errors.Is(err, ErrSlotTaken)
}

// FindAvailableDoctors returns the doctors who work the requested instant and
// have no conflicting appointment. The specialty filter is a case-insensitive
// substring match; empty means all doctors.
func (s *Service) FindAvailableDoctors(ctx context.Context, specialty string, date time.Time, start TimeOfDay) ([]DoctorSummary, error) {
	doctors, err := s.repo.ListDoctors(ctx, specialty)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}

	var result []DoctorSummary
	for _, doc := range doctors {
		err := s.checkSlotBookable(ctx, doc.ID, date, start)
		if isConflict(err) {
			continue
		}
		if err != nil {
			return nil, err
		}

		result = append(result, DoctorSummary{
			ID:        doc.ID,
			Name:      doc.Name,
			Surname:   doc.Surname,
			ImageURL:  doc.ImageURL,
			Specialty: doc.Specialty,
			// TODO: surface the real review aggregate here instead of the placeholder.
			Rating:    4.5,
			Available: true,
		})
	}

	return result, nil
}

type CreateAppointmentInput struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Date      time.Time
	Start     TimeOfDay
	Reason    string
}

// CreateAppointment books a pending appointment. The bookability check and the
// insert run under a per-slot Redis lock; the partial unique index in Postgres
// backstops the remaining race by surfacing ErrSlotTaken from the insert.
func (s *Service) CreateAppointment(ctx context.Context, in CreateAppointmentInput) (*Appointment, error) {
	patient, err := s.repo.GetPatientByID(ctx, in.PatientID)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	doctor, err := s.repo.GetDoctorByID(ctx, in.DoctorID)
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load doctor: %w", err)
	}

	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		reason = DefaultReason
	}

	var created *Appointment

	err = s.locker.WithSlotLock(ctx, slotLockKey(in.DoctorID, in.Date, in.Start), func(lockCtx context.Context) error {
		if err := s.checkSlotBookable(lockCtx, in.DoctorID, in.Date, in.Start); err != nil {
			return err
		}

		appt, err := s.repo.InsertAppointment(lockCtx, &Appointment{
			ID:        uuid.New(),
			DoctorID:  in.DoctorID,
			PatientID: in.PatientID,
			Date:      in.Date,
			Start:     in.Start,
			Reason:    reason,
			Status:    StatusPending,
		})
		if err != nil {
			return fmt.Errorf("insert appointment: %w", err)
		}

		created = appt

		s.logEvent(lockCtx, appt.ID, EventAppointmentBooked, map[string]any{
			"doctor_id":  in.DoctorID.String(),
			"patient_id": in.PatientID.String(),
			"date":       in.Date.Format("2006-01-02"),
			"time":       in.Start.String(),
		})

		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		return nil, err
	}

	s.sendConfirmation(patient, doctor, created)

	return created, nil
}

// RescheduleAppointment moves a pending appointment to a new slot after
// re-validating the same constraints as creation. Only the owning patient may
// reschedule, and only while the appointment is still pending.
func (s *Service) RescheduleAppointment(ctx context.Context, appointmentID, patientID uuid.UUID, newDate time.Time, newStart TimeOfDay) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	if appt.PatientID != patientID {
		return nil, ErrNotAppointmentOwner
	}
	if appt.Status.Terminal() {
		return nil, ErrAppointmentFinalized
	}

	var updated *Appointment

	err = s.locker.WithSlotLock(ctx, slotLockKey(appt.DoctorID, newDate, newStart), func(lockCtx context.Context) error {
		if err := s.checkSlotBookable(lockCtx, appt.DoctorID, newDate, newStart); err != nil {
			return err
		}

		moved, err := s.repo.UpdateAppointmentSlot(lockCtx, appt.ID, newDate, newStart)
		if err != nil {
			return fmt.Errorf("move appointment: %w", err)
		}

		updated = moved

		s.logEvent(lockCtx, appt.ID, EventAppointmentRescheduled, map[string]any{
			"from_date": appt.Date.Format("2006-01-02"),
			"from_time": appt.Start.String(),
			"to_date":   newDate.Format("2006-01-02"),
			"to_time":   newStart.String(),
		})

		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		return nil, err
	}

	return updated, nil
}

// CancelAppointment is a plain status mutation with no slot re-validation.
func (s *Service) CancelAppointment(ctx context.Context, appointmentID uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.UpdateAppointmentStatus(ctx, appointmentID, StatusCancelled)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}

	s.logEvent(ctx, appt.ID, EventAppointmentCancelled, map[string]any{})

	return appt, nil
}

// CompleteAppointment marks a pending appointment as completed. Cancelled and
// completed are terminal.
func (s *Service) CompleteAppointment(ctx context.Context, appointmentID uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	if appt.Status != StatusPending {
		return nil, ErrAppointmentFinalized
	}

	updated, err := s.repo.UpdateAppointmentStatus(ctx, appt.ID, StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("complete appointment: %w", err)
	}

	s.logEvent(ctx, appt.ID, EventAppointmentCompleted, map[string]any{})

	return updated, nil
}

// ListAppointments returns a patient's appointments, decorated with doctor
// fields. An empty status filter means all statuses.
func (s *Service) ListAppointments(ctx context.Context, patientID uuid.UUID, status AppointmentStatus) ([]AppointmentDetail, error) {
	if _, err := s.repo.GetPatientByID(ctx, patientID); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	appts, err := s.repo.ListPatientAppointments(ctx, patientID, status)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

// NextAppointment returns the patient's earliest non-cancelled appointment on
// or after today.
func (s *Service) NextAppointment(ctx context.Context, patientID uuid.UUID) (*AppointmentDetail, error) {
	if _, err := s.repo.GetPatientByID(ctx, patientID); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	// Dates are naive local wall-clock: "today" is the local calendar date,
	// normalized to UTC midnight to match how date columns scan.
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	next, err := s.repo.NextPatientAppointment(ctx, patientID, today)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("next appointment: %w", err)
	}
	return next, nil
}

func (s *Service) ListSpecialties(ctx context.Context) ([]Specialty, error) {
	specs, err := s.repo.ListSpecialties(ctx)
	if err != nil {
		return nil, fmt.Errorf("list specialties: %w", err)
	}
	return specs, nil
}

// TopDoctors is a pure read-side aggregate; it never touches scheduling state.
func (s *Service) TopDoctors(ctx context.Context, orderBy string, limit int) ([]TopDoctor, error) {
	switch orderBy {
	case "rating", "reviews", "experience":
	default:
		orderBy = "rating"
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	doctors, err := s.repo.ListTopDoctors(ctx, orderBy, limit)
	if err != nil {
		return nil, fmt.Errorf("list top doctors: %w", err)
	}
	return doctors, nil
}

func (s *Service) ListFavorites(ctx context.Context, patientID uuid.UUID) ([]FavoriteDoctor, error) {
	if _, err := s.repo.GetPatientByID(ctx, patientID); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	favs, err := s.repo.ListFavorites(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return favs, nil
}

func (s *Service) AddFavorite(ctx context.Context, patientID, doctorID uuid.UUID) (*FavoriteDoctor, error) {
	if _, err := s.repo.GetDoctorByID(ctx, doctorID); err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load doctor: %w", err)
	}
	if _, err := s.repo.GetPatientByID(ctx, patientID); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	exists, err := s.repo.FavoriteExists(ctx, patientID, doctorID)
	if err != nil {
		return nil, fmt.Errorf("check favorite: %w", err)
	}
	if exists {
		return nil, ErrAlreadyFavorite
	}

	fav, err := s.repo.InsertFavorite(ctx, patientID, doctorID)
	if err != nil {
		return nil, fmt.Errorf("add favorite: %w", err)
	}
	return fav, nil
}

func (s *Service) RemoveFavorite(ctx context.Context, favoriteID uuid.UUID) error {
	if err := s.repo.DeleteFavorite(ctx, favoriteID); err != nil {
		if errors.Is(err, ErrFavoriteNotFound) {
			return err
		}
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

// sendConfirmation publishes the confirmation without blocking the booking
// response. Delivery failures are logged and swallowed.
func (s *Service) sendConfirmation(patient *Patient, doctor *Doctor, appt *Appointment) {
	if patient.Email == nil || *patient.Email == "" {
		s.log.Debug("patient has no email, skipping booking confirmation",
			zap.String("appointment_id", appt.ID.String()))
		return
	}

	msg := notification.BookingConfirmation{
		PatientEmail:   *patient.Email,
		PatientName:    displayName(patient.Name, patient.Surname, "Patient"),
		DoctorName:     displayName(doctor.Name, doctor.Surname, "Doctor"),
		DoctorAddress:  deref(doctor.Address),
		DoctorImageURL: deref(doctor.ImageURL),
		Specialty:      specialtyOrDefault(doctor.Specialty),
		Date:           appt.Date.Format("2006-01-02"),
		Time:           appt.Start.String(),
		Reason:         appt.Reason,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.notifier.BookingConfirmed(ctx, msg); err != nil {
			s.log.Warn("booking confirmation not delivered",
				zap.String("appointment_id", appt.ID.String()),
				zap.Error(err))
		}
	}()
}

func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn("failed to marshal event payload",
			zap.String("event_type", eventType), zap.Error(err))
		data = nil
	}

	apptID := appointmentID

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     time.Now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.log.Warn("failed to insert event log",
			zap.String("event_type", eventType),
			zap.String("appointment_id", appointmentID.String()),
			zap.Error(err))
	}
}

func slotLockKey(doctorID uuid.UUID, date time.Time, start TimeOfDay) string {
	return fmt.Sprintf("lock:slot:%s:%s:%s", doctorID, date.Format("2006-01-02"), start)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func displayName(name, surname *string, fallback string) string {
	full := strings.TrimSpace(deref(name) + " " + deref(surname))
	if full == "" {
		return fallback
	}
	return full
}

func specialtyOrDefault(s *string) string {
	if s == nil || *s == "" {
		return "General Medicine"
	}
	return *s
}
