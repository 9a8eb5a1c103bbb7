package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/healthunity/scheduling-service/internal/scheduling"
)

// SchedulingService is the surface the handlers need from the engine.
type SchedulingService interface {
	FindAvailableDoctors(ctx context.Context, specialty string, date time.Time, start scheduling.TimeOfDay) ([]scheduling.DoctorSummary, error)
	FreeSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]scheduling.Slot, error)
	CreateAppointment(ctx context.Context, in scheduling.CreateAppointmentInput) (*scheduling.Appointment, error)
	RescheduleAppointment(ctx context.Context, appointmentID, patientID uuid.UUID, newDate time.Time, newStart scheduling.TimeOfDay) (*scheduling.Appointment, error)
	CancelAppointment(ctx context.Context, appointmentID uuid.UUID) (*scheduling.Appointment, error)
	CompleteAppointment(ctx context.Context, appointmentID uuid.UUID) (*scheduling.Appointment, error)
	ListAppointments(ctx context.Context, patientID uuid.UUID, status scheduling.AppointmentStatus) ([]scheduling.AppointmentDetail, error)
	NextAppointment(ctx context.Context, patientID uuid.UUID) (*scheduling.AppointmentDetail, error)
	ListSpecialties(ctx context.Context) ([]scheduling.Specialty, error)
	TopDoctors(ctx context.Context, orderBy string, limit int) ([]scheduling.TopDoctor, error)
	ListFavorites(ctx context.Context, patientID uuid.UUID) ([]scheduling.FavoriteDoctor, error)
	AddFavorite(ctx context.Context, patientID, doctorID uuid.UUID) (*scheduling.FavoriteDoctor, error)
	RemoveFavorite(ctx context.Context, favoriteID uuid.UUID) error
}

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func findAvailableDoctorsHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		date, err := parseDate(q.Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		start, err := scheduling.ParseTimeOfDay(q.Get("time"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_time", "time must be HH:MM (24h)")
			return
		}

		// The requesting patient is accepted for parity with the booking flow
		// but does not affect the result.
		if pid := q.Get("patient_id"); pid != "" {
			if _, err := uuid.Parse(pid); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
				return
			}
		}

		doctors, err := svc.FindAvailableDoctors(r.Context(), q.Get("specialty"), date, start)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		resp := make([]AvailableDoctorResponse, 0, len(doctors))
		for _, d := range doctors {
			resp = append(resp, AvailableDoctorResponse{
				ID:        d.ID,
				Name:      d.Name,
				Surname:   d.Surname,
				ImageURL:  d.ImageURL,
				Specialty: d.Specialty,
				Rating:    d.Rating,
				Available: d.Available,
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func getFreeSlotsHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
			return
		}

		date, err := parseDate(r.URL.Query().Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		slots, err := svc.FreeSlots(r.Context(), doctorID, date)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		times := make([]string, 0, len(slots))
		for _, s := range slots {
			times = append(times, s.Start.String())
		}

		writeJSON(w, http.StatusOK, FreeSlotsResponse{
			DoctorID: doctorID,
			Date:     date.Format("2006-01-02"),
			Slots:    times,
		})
	}
}

func createAppointmentHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		patientID, _ := uuid.Parse(req.PatientID)
		doctorID, _ := uuid.Parse(req.DoctorID)
		date, _ := parseDate(req.Date)
		start, _ := scheduling.ParseTimeOfDay(req.Time)

		appt, err := svc.CreateAppointment(r.Context(), scheduling.CreateAppointmentInput{
			PatientID: patientID,
			DoctorID:  doctorID,
			Date:      date,
			Start:     start,
			Reason:    req.Reason,
		})
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func rescheduleAppointmentHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appointmentID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req RescheduleAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		patientID, _ := uuid.Parse(req.PatientID)
		date, _ := parseDate(req.Date)
		start, _ := scheduling.ParseTimeOfDay(req.Time)

		appt, err := svc.RescheduleAppointment(r.Context(), appointmentID, patientID, date, start)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func cancelAppointmentHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appointmentID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := svc.CancelAppointment(r.Context(), appointmentID)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func completeAppointmentHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appointmentID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := svc.CompleteAppointment(r.Context(), appointmentID)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func listAppointmentsHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		patientID, err := uuid.Parse(q.Get("patient_id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
			return
		}

		status := scheduling.AppointmentStatus(q.Get("status"))
		if status != "" && !status.Valid() {
			writeError(w, http.StatusBadRequest, "invalid_status", "status must be pending, completed or cancelled")
			return
		}

		appts, err := svc.ListAppointments(r.Context(), patientID, status)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		resp := make([]AppointmentDetailResponse, 0, len(appts))
		for i := range appts {
			resp = append(resp, toAppointmentDetailResponse(&appts[i]))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func nextAppointmentHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "id must be a valid UUID")
			return
		}

		next, err := svc.NextAppointment(r.Context(), patientID)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentDetailResponse(next))
	}
}

func listSpecialtiesHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		specs, err := svc.ListSpecialties(r.Context())
		if err != nil {
			handleServiceError(w, err)
			return
		}

		resp := make([]SpecialtyResponse, 0, len(specs))
		for _, s := range specs {
			resp = append(resp, SpecialtyResponse{ID: s.ID, Name: s.Name, Icon: s.Icon})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func topDoctorsHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		limit := 0
		if raw := q.Get("limit"); raw != "" {
			n, err := parseLimit(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
				return
			}
			limit = n
		}

		doctors, err := svc.TopDoctors(r.Context(), q.Get("order_by"), limit)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		resp := make([]TopDoctorResponse, 0, len(doctors))
		for _, d := range doctors {
			resp = append(resp, TopDoctorResponse{
				ID:              d.ID,
				Name:            d.Name,
				Surname:         d.Surname,
				ImageURL:        d.ImageURL,
				Specialty:       d.Specialty,
				ExperienceYears: d.ExperienceYears,
				Rating:          d.Rating,
				Reviews:         d.Reviews,
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func listFavoritesHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "id must be a valid UUID")
			return
		}

		favs, err := svc.ListFavorites(r.Context(), patientID)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		resp := make([]FavoriteResponse, 0, len(favs))
		for _, f := range favs {
			resp = append(resp, toFavoriteResponse(&f))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func addFavoriteHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "id must be a valid UUID")
			return
		}

		var req AddFavoriteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		doctorID, _ := uuid.Parse(req.DoctorID)

		fav, err := svc.AddFavorite(r.Context(), patientID, doctorID)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toFavoriteResponse(fav))
	}
}

func removeFavoriteHandler(svc SchedulingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		favoriteID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_favorite_id", "id must be a valid UUID")
			return
		}

		if err := svc.RemoveFavorite(r.Context(), favoriteID); err != nil {
			handleServiceError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func toFavoriteResponse(f *scheduling.FavoriteDoctor) FavoriteResponse {
	return FavoriteResponse{
		ID:        f.ID,
		DoctorID:  f.DoctorID,
		Name:      f.Name,
		Surname:   f.Surname,
		Specialty: f.Specialty,
		Rating:    f.Rating,
		Reviews:   f.Reviews,
	}
}

func parseLimit(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n <= 0 || n > 1000 {
		return 0, errors.New("limit out of range")
	}
	return n, nil
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scheduling.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, scheduling.ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
	case errors.Is(err, scheduling.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, scheduling.ErrFavoriteNotFound):
		writeError(w, http.StatusNotFound, "favorite_not_found", err.Error())
	case errors.Is(err, scheduling.ErrNotAppointmentOwner):
		writeError(w, http.StatusForbidden, "not_appointment_owner", err.Error())
	case errors.Is(err, scheduling.ErrAppointmentFinalized):
		writeError(w, http.StatusConflict, "appointment_finalized", err.Error())
	case errors.Is(err, scheduling.ErrOutsideWorkingHours):
		writeError(w, http.StatusConflict, "outside_working_hours", err.Error())
	case errors.Is(err, scheduling.ErrSlotTaken):
		writeError(w, http.StatusConflict, "slot_taken", err.Error())
	case errors.Is(err, scheduling.ErrSlotBeingBooked):
		writeError(w, http.StatusConflict, "slot_being_booked", "slot is currently being booked, please retry shortly")
	case errors.Is(err, scheduling.ErrAlreadyFavorite):
		writeError(w, http.StatusConflict, "already_favorite", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
