package notification

import (
	"fmt"
	"html"
	"net/smtp"
	"strings"
)

// RenderConfirmationEmail builds the subject and HTML body for a booking
// confirmation. Names and the reason come from user input, so every
// interpolated value is escaped.
func RenderConfirmationEmail(msg BookingConfirmation) (subject, body string) {
	subject = fmt.Sprintf("Appointment confirmed for %s at %s", msg.Date, msg.Time)

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<body style=\"font-family: sans-serif; background-color: #f5f7fa; padding: 20px;\">\n")
	b.WriteString("<div style=\"max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 16px; padding: 30px;\">\n")
	b.WriteString("<h1 style=\"color: #357ABD;\">Your appointment is confirmed</h1>\n")
	fmt.Fprintf(&b, "<p>Hi <strong>%s</strong>,</p>\n", html.EscapeString(msg.PatientName))
	b.WriteString("<p>We are pleased to confirm your medical appointment. Here are the details:</p>\n")
	b.WriteString("<ul>\n")
	fmt.Fprintf(&b, "<li><strong>Doctor:</strong> %s</li>\n", html.EscapeString(msg.DoctorName))
	fmt.Fprintf(&b, "<li><strong>Specialty:</strong> %s</li>\n", html.EscapeString(msg.Specialty))
	fmt.Fprintf(&b, "<li><strong>Date:</strong> %s</li>\n", html.EscapeString(msg.Date))
	fmt.Fprintf(&b, "<li><strong>Time:</strong> %s</li>\n", html.EscapeString(msg.Time))
	fmt.Fprintf(&b, "<li><strong>Reason:</strong> %s</li>\n", html.EscapeString(msg.Reason))
	if msg.DoctorAddress != "" {
		fmt.Fprintf(&b, "<li><strong>Address:</strong> %s</li>\n", html.EscapeString(msg.DoctorAddress))
	}
	b.WriteString("</ul>\n")
	b.WriteString("<p>Please arrive 10 minutes early and bring a valid ID.</p>\n")
	b.WriteString("<p style=\"color: #666; font-size: 13px;\">We will send you a reminder 24 hours before your appointment.</p>\n")
	b.WriteString("</div>\n</body>\n</html>\n")

	return subject, b.String()
}

// SMTPSender delivers rendered confirmation emails.
type SMTPSender struct {
	Host string
	Port int
	From string
	Auth smtp.Auth
}

func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPSender{
		Host: host,
		Port: port,
		From: from,
		Auth: auth,
	}
}

func (s *SMTPSender) Send(to, subject, htmlBody string) error {
	msg := fmt.Sprintf(
		"To: %s\r\nFrom: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		to, s.From, subject, htmlBody,
	)

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	if err := smtp.SendMail(addr, s.Auth, s.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
