package notification

// BookingConfirmation is the message published after a successful booking.
// Dates and times are already formatted (YYYY-MM-DD, HH:MM); the consumer only
// renders and sends.
type BookingConfirmation struct {
	PatientEmail   string `json:"patient_email"`
	PatientName    string `json:"patient_name"`
	DoctorName     string `json:"doctor_name"`
	DoctorAddress  string `json:"doctor_address"`
	DoctorImageURL string `json:"doctor_image_url,omitempty"`
	Specialty      string `json:"specialty"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Reason         string `json:"reason"`
}
