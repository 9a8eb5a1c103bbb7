package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderConfirmationEmail(t *testing.T) {
	msg := BookingConfirmation{
		PatientEmail:  "pat@example.com",
		PatientName:   "Pat Doe",
		DoctorName:    "Ada Lovelace",
		DoctorAddress: "12 Clinic St",
		Specialty:     "Cardiology",
		Date:          "2026-09-07",
		Time:          "09:30",
		Reason:        "general consultation",
	}

	subject, body := RenderConfirmationEmail(msg)

	assert.Contains(t, subject, "2026-09-07")
	assert.Contains(t, subject, "09:30")

	assert.Contains(t, body, "Pat Doe")
	assert.Contains(t, body, "Ada Lovelace")
	assert.Contains(t, body, "Cardiology")
	assert.Contains(t, body, "12 Clinic St")
	assert.Contains(t, body, "general consultation")
}

func TestRenderConfirmationEmail_EscapesUserInput(t *testing.T) {
	msg := BookingConfirmation{
		PatientName: "<script>alert(1)</script>",
		DoctorName:  "Ada & Co",
		Date:        "2026-09-07",
		Time:        "09:30",
		Reason:      "<img src=x onerror=alert(1)>",
	}

	_, body := RenderConfirmationEmail(msg)

	assert.NotContains(t, body, "<script>")
	assert.NotContains(t, body, "<img")
	assert.Contains(t, body, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.Contains(t, body, "Ada &amp; Co")
}

func TestRenderConfirmationEmail_NoAddress(t *testing.T) {
	msg := BookingConfirmation{
		PatientName: "Pat",
		DoctorName:  "Dr. X",
		Date:        "2026-09-07",
		Time:        "10:00",
	}

	_, body := RenderConfirmationEmail(msg)

	assert.NotContains(t, body, "Address:")
}
