package api

import (
	"github.com/google/uuid"

	"github.com/healthunity/scheduling-service/internal/scheduling"
)

type CreateAppointmentRequest struct {
	PatientID string `json:"patient_id" validate:"required,uuid"`
	DoctorID  string `json:"doctor_id" validate:"required,uuid"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string `json:"time" validate:"required,datetime=15:04"`
	Reason    string `json:"reason"`
}

type RescheduleAppointmentRequest struct {
	PatientID string `json:"patient_id" validate:"required,uuid"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string `json:"time" validate:"required,datetime=15:04"`
}

type AddFavoriteRequest struct {
	DoctorID string `json:"doctor_id" validate:"required,uuid"`
}

type AppointmentResponse struct {
	ID        uuid.UUID `json:"id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	PatientID uuid.UUID `json:"patient_id"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
}

type AppointmentDetailResponse struct {
	AppointmentResponse
	DoctorName     *string `json:"doctor_name,omitempty"`
	DoctorSurname  *string `json:"doctor_surname,omitempty"`
	DoctorImageURL *string `json:"doctor_image_url,omitempty"`
	DoctorAddress  *string `json:"doctor_address,omitempty"`
	Specialty      *string `json:"specialty,omitempty"`
}

type AvailableDoctorResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      *string   `json:"name,omitempty"`
	Surname   *string   `json:"surname,omitempty"`
	ImageURL  *string   `json:"image_url,omitempty"`
	Specialty *string   `json:"specialty,omitempty"`
	Rating    float64   `json:"rating"`
	Available bool      `json:"available"`
}

type TopDoctorResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            *string   `json:"name,omitempty"`
	Surname         *string   `json:"surname,omitempty"`
	ImageURL        *string   `json:"image_url,omitempty"`
	Specialty       *string   `json:"specialty,omitempty"`
	ExperienceYears int       `json:"experience_years"`
	Rating          float64   `json:"rating"`
	Reviews         int       `json:"reviews"`
}

type SpecialtyResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Icon *string   `json:"icon,omitempty"`
}

type FavoriteResponse struct {
	ID        uuid.UUID `json:"id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	Name      *string   `json:"name,omitempty"`
	Surname   *string   `json:"surname,omitempty"`
	Specialty *string   `json:"specialty,omitempty"`
	Rating    float64   `json:"rating"`
	Reviews   int       `json:"reviews"`
}

type FreeSlotsResponse struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	Date     string    `json:"date"`
	Slots    []string  `json:"slots"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toAppointmentResponse(a *scheduling.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        a.ID,
		DoctorID:  a.DoctorID,
		PatientID: a.PatientID,
		Date:      a.Date.Format("2006-01-02"),
		Time:      a.Start.String(),
		Reason:    a.Reason,
		Status:    string(a.Status),
	}
}

func toAppointmentDetailResponse(d *scheduling.AppointmentDetail) AppointmentDetailResponse {
	return AppointmentDetailResponse{
		AppointmentResponse: toAppointmentResponse(&d.Appointment),
		DoctorName:          d.DoctorName,
		DoctorSurname:       d.DoctorSurname,
		DoctorImageURL:      d.DoctorImageURL,
		DoctorAddress:       d.DoctorAddress,
		Specialty:           d.Specialty,
	}
}
