package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/healthunity/scheduling-service/internal/scheduling"
)

// stubService returns canned values; individual tests override the fields
// they exercise.
type stubService struct {
	doctors     []scheduling.DoctorSummary
	slots       []scheduling.Slot
	appointment *scheduling.Appointment
	details     []scheduling.AppointmentDetail
	next        *scheduling.AppointmentDetail
	specialties []scheduling.Specialty
	topDoctors  []scheduling.TopDoctor
	favorites   []scheduling.FavoriteDoctor
	favorite    *scheduling.FavoriteDoctor
	err         error

	lastCreate scheduling.CreateAppointmentInput
}

func (s *stubService) FindAvailableDoctors(_ context.Context, _ string, _ time.Time, _ scheduling.TimeOfDay) ([]scheduling.DoctorSummary, error) {
	return s.doctors, s.err
}

func (s *stubService) FreeSlots(_ context.Context, _ uuid.UUID, _ time.Time) ([]scheduling.Slot, error) {
	return s.slots, s.err
}

func (s *stubService) CreateAppointment(_ context.Context, in scheduling.CreateAppointmentInput) (*scheduling.Appointment, error) {
	s.lastCreate = in
	return s.appointment, s.err
}

func (s *stubService) RescheduleAppointment(_ context.Context, _, _ uuid.UUID, _ time.Time, _ scheduling.TimeOfDay) (*scheduling.Appointment, error) {
	return s.appointment, s.err
}

func (s *stubService) CancelAppointment(_ context.Context, _ uuid.UUID) (*scheduling.Appointment, error) {
	return s.appointment, s.err
}

func (s *stubService) CompleteAppointment(_ context.Context, _ uuid.UUID) (*scheduling.Appointment, error) {
	return s.appointment, s.err
}

func (s *stubService) ListAppointments(_ context.Context, _ uuid.UUID, _ scheduling.AppointmentStatus) ([]scheduling.AppointmentDetail, error) {
	return s.details, s.err
}

func (s *stubService) NextAppointment(_ context.Context, _ uuid.UUID) (*scheduling.AppointmentDetail, error) {
	return s.next, s.err
}

func (s *stubService) ListSpecialties(_ context.Context) ([]scheduling.Specialty, error) {
	return s.specialties, s.err
}

func (s *stubService) TopDoctors(_ context.Context, _ string, _ int) ([]scheduling.TopDoctor, error) {
	return s.topDoctors, s.err
}

func (s *stubService) ListFavorites(_ context.Context, _ uuid.UUID) ([]scheduling.FavoriteDoctor, error) {
	return s.favorites, s.err
}

func (s *stubService) AddFavorite(_ context.Context, _, _ uuid.UUID) (*scheduling.FavoriteDoctor, error) {
	return s.favorite, s.err
}

func (s *stubService) RemoveFavorite(_ context.Context, _ uuid.UUID) error {
	return s.err
}

func testRouter(svc SchedulingService) http.Handler {
	return NewRouter(RouterConfig{
		Service:   svc,
		Logger:    zap.NewNop(),
		Env:       "test",
		Version:   "test",
		RateLimit: 10000,
	})
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func sampleAppointment() *scheduling.Appointment {
	start, _ := scheduling.ParseTimeOfDay("09:30")
	return &scheduling.Appointment{
		ID:        uuid.New(),
		DoctorID:  uuid.New(),
		PatientID: uuid.New(),
		Date:      time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		Start:     start,
		Reason:    "general consultation",
		Status:    scheduling.StatusPending,
	}
}

func TestCreateAppointmentHandler(t *testing.T) {
	svc := &stubService{appointment: sampleAppointment()}
	router := testRouter(svc)

	body := `{"patient_id":"` + uuid.NewString() + `","doctor_id":"` + uuid.NewString() + `","date":"2026-09-07","time":"09:30","reason":"checkup"}`
	rec := doRequest(t, router, http.MethodPost, "/appointments", body)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp AppointmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2026-09-07", resp.Date)
	assert.Equal(t, "09:30", resp.Time)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "checkup", svc.lastCreate.Reason)
}

func TestCreateAppointmentHandler_Validation(t *testing.T) {
	router := testRouter(&stubService{})

	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: `{}`},
		{name: "bad uuid", body: `{"patient_id":"nope","doctor_id":"nope","date":"2026-09-07","time":"09:30"}`},
		{name: "bad date", body: `{"patient_id":"` + uuid.NewString() + `","doctor_id":"` + uuid.NewString() + `","date":"07/09/2026","time":"09:30"}`},
		{name: "bad time", body: `{"patient_id":"` + uuid.NewString() + `","doctor_id":"` + uuid.NewString() + `","date":"2026-09-07","time":"9am"}`},
		{name: "not json", body: `{{{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/appointments", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{scheduling.ErrPatientNotFound, http.StatusNotFound, "patient_not_found"},
		{scheduling.ErrDoctorNotFound, http.StatusNotFound, "doctor_not_found"},
		{scheduling.ErrAppointmentNotFound, http.StatusNotFound, "appointment_not_found"},
		{scheduling.ErrNotAppointmentOwner, http.StatusForbidden, "not_appointment_owner"},
		{scheduling.ErrAppointmentFinalized, http.StatusConflict, "appointment_finalized"},
		{scheduling.ErrOutsideWorkingHours, http.StatusConflict, "outside_working_hours"},
		{scheduling.ErrSlotTaken, http.StatusConflict, "slot_taken"},
		{scheduling.ErrSlotBeingBooked, http.StatusConflict, "slot_being_booked"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			router := testRouter(&stubService{err: tt.err})

			body := `{"patient_id":"` + uuid.NewString() + `","doctor_id":"` + uuid.NewString() + `","date":"2026-09-07","time":"09:30"}`
			rec := doRequest(t, router, http.MethodPost, "/appointments", body)

			require.Equal(t, tt.status, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error)
		})
	}
}

func TestGetFreeSlotsHandler(t *testing.T) {
	nine, _ := scheduling.ParseTimeOfDay("09:00")
	half, _ := scheduling.ParseTimeOfDay("09:30")
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	svc := &stubService{slots: []scheduling.Slot{
		{Date: date, Start: nine},
		{Date: date, Start: half},
	}}
	router := testRouter(svc)

	doctorID := uuid.NewString()
	rec := doRequest(t, router, http.MethodGet, "/doctors/"+doctorID+"/slots?date=2026-09-07", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp FreeSlotsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"09:00", "09:30"}, resp.Slots)
	assert.Equal(t, "2026-09-07", resp.Date)
}

func TestGetFreeSlotsHandler_BadInput(t *testing.T) {
	router := testRouter(&stubService{})

	rec := doRequest(t, router, http.MethodGet, "/doctors/not-a-uuid/slots?date=2026-09-07", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/doctors/"+uuid.NewString()+"/slots?date=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFindAvailableDoctorsHandler(t *testing.T) {
	name := "Ada"
	svc := &stubService{doctors: []scheduling.DoctorSummary{
		{ID: uuid.New(), Name: &name, Rating: 4.5, Available: true},
	}}
	router := testRouter(svc)

	rec := doRequest(t, router, http.MethodGet, "/doctors/available?specialty=cardio&date=2026-09-07&time=09:00", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []AvailableDoctorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.True(t, resp[0].Available)
	assert.Equal(t, 4.5, resp[0].Rating)
}

func TestFindAvailableDoctorsHandler_BadInput(t *testing.T) {
	router := testRouter(&stubService{})

	rec := doRequest(t, router, http.MethodGet, "/doctors/available?date=2026-09-07", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/doctors/available?date=2026-09-07&time=09:00&patient_id=nope", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAppointmentsHandler_StatusValidation(t *testing.T) {
	router := testRouter(&stubService{})

	rec := doRequest(t, router, http.MethodGet, "/appointments?patient_id="+uuid.NewString()+"&status=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/appointments?patient_id="+uuid.NewString()+"&status=pending", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/appointments", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelAndCompleteHandlers(t *testing.T) {
	svc := &stubService{appointment: sampleAppointment()}
	router := testRouter(svc)

	rec := doRequest(t, router, http.MethodPost, "/appointments/"+uuid.NewString()+"/cancel", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/appointments/"+uuid.NewString()+"/complete", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/appointments/not-a-uuid/cancel", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFavoriteHandlers(t *testing.T) {
	fav := &scheduling.FavoriteDoctor{ID: uuid.New(), DoctorID: uuid.New()}
	svc := &stubService{favorite: fav, favorites: []scheduling.FavoriteDoctor{*fav}}
	router := testRouter(svc)

	patientID := uuid.NewString()

	rec := doRequest(t, router, http.MethodPost, "/patients/"+patientID+"/favorites",
		`{"doctor_id":"`+fav.DoctorID.String()+`"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/patients/"+patientID+"/favorites", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/favorites/"+fav.ID.String(), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	router = testRouter(&stubService{err: scheduling.ErrAlreadyFavorite})
	rec = doRequest(t, router, http.MethodPost, "/patients/"+patientID+"/favorites",
		`{"doctor_id":"`+uuid.NewString()+`"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTopDoctorsHandler_LimitValidation(t *testing.T) {
	router := testRouter(&stubService{})

	for _, bad := range []string{"abc", "0", "-5", "2000", "1.5"} {
		rec := doRequest(t, router, http.MethodGet, "/doctors/top?limit="+bad, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", bad)
	}

	rec := doRequest(t, router, http.MethodGet, "/doctors/top?order_by=reviews&limit=5", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	router := testRouter(&stubService{})

	rec := doRequest(t, router, http.MethodGet, "/specialties", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/specialties", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get("X-Request-ID"))
}
