package email

import (
	"fmt"
	"net/smtp"
)

// SMTPServerConfig holds all the necessary configuration for connecting to an SMTP server.
type SMTPServerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string // The "From" email address
}

// EmailService provides methods for sending notification emails. All sends
// are best-effort: callers log failures and never fail the originating
// request because an email could not go out.
type EmailService struct {
	config SMTPServerConfig
	auth   smtp.Auth
}

// NewEmailService creates a new service for sending emails.
func NewEmailService(config SMTPServerConfig) *EmailService {
	auth := smtp.PlainAuth("", config.Username, config.Password, config.Host)
	return &EmailService{
		config: config,
		auth:   auth,
	}
}

func (s *EmailService) send(recipient, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	message := []byte(
		"To: " + recipient + "\r\n" +
			"From: " + s.config.Sender + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"\r\n" +
			body + "\r\n")

	if err := smtp.SendMail(addr, s.auth, s.config.Sender, []string{recipient}, message); err != nil {
		return fmt.Errorf("smtp error: %w", err)
	}
	return nil
}

// SendContactAlert notifies the admin inbox about a new contact message.
func (s *EmailService) SendContactAlert(adminEmail, senderName, senderEmail, message string) error {
	subject := fmt.Sprintf("New contact message from %s", senderName)
	body := fmt.Sprintf(
		"A new message arrived through the website contact form.\n\nFrom: %s <%s>\n\n%s\n",
		senderName, senderEmail, message,
	)
	return s.send(adminEmail, subject, body)
}

// SendRegistrationDecision tells a registrant whether their meeting
// registration was approved or rejected.
func (s *EmailService) SendRegistrationDecision(recipient, name, meetingTitle, status string) error {
	var subject, body string
	if status == "approved" {
		subject = fmt.Sprintf("Your spot for '%s' is confirmed", meetingTitle)
		body = fmt.Sprintf(
			"Hi %s,\n\nYour registration for '%s' has been approved. We look forward to seeing you.\n\nThe VitraForge Atelier Team",
			name, meetingTitle,
		)
	} else {
		subject = fmt.Sprintf("Update on your registration for '%s'", meetingTitle)
		body = fmt.Sprintf(
			"Hi %s,\n\nUnfortunately we could not confirm your registration for '%s'. Please get in touch if you would like to join another session.\n\nThe VitraForge Atelier Team",
			name, meetingTitle,
		)
	}
	return s.send(recipient, subject, body)
}
