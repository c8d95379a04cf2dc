package notifications

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"strconv"
	"time"
)

// EmailService renders and sends notification emails.
type EmailService interface {
	SendNotification(ctx context.Context, notification *EmailNotification) (content string, err error)
}

// SMTPConfig holds SMTP configuration
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	UseTLS    bool
}

type smtpEmailService struct {
	config    *SMTPConfig
	templates map[NotificationType]*template.Template
}

// NewSMTPEmailService creates an SMTP-backed email service.
func NewSMTPEmailService(config *SMTPConfig) (EmailService, error) {
	if config == nil || config.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if config.FromEmail == "" {
		return nil, fmt.Errorf("from email is required")
	}
	if config.Port <= 0 || config.Port > 65535 {
		return nil, fmt.Errorf("SMTP port must be between 1 and 65535")
	}

	service := &smtpEmailService{
		config:    config,
		templates: make(map[NotificationType]*template.Template),
	}
	service.loadTemplates()
	return service, nil
}

func (s *smtpEmailService) SendNotification(ctx context.Context, notification *EmailNotification) (string, error) {
	htmlBody, err := s.render(notification)
	if err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}

	if err := s.send(notification.RecipientEmail, notification.Subject, htmlBody); err != nil {
		return htmlBody, err
	}

	log.Printf("Email sent to %s (%s)", notification.RecipientEmail, notification.Type)
	return htmlBody, nil
}

func (s *smtpEmailService) render(notification *EmailNotification) (string, error) {
	tmpl, exists := s.templates[notification.Type]
	if !exists {
		return "", fmt.Errorf("no template for notification type %s", notification.Type)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, notification.TemplateData); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *smtpEmailService) send(to, subject, htmlBody string) error {
	message := s.buildMessage(to, subject, htmlBody)
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	if s.config.UseTLS {
		return s.sendWithSTARTTLS(addr, auth, to, message)
	}
	return smtp.SendMail(addr, auth, s.config.FromEmail, []string{to}, message)
}

// sendWithSTARTTLS upgrades the connection before authenticating
func (s *smtpEmailService) sendWithSTARTTLS(addr string, auth smtp.Auth, to string, message []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Quit()

	tlsconfig := &tls.Config{ServerName: s.config.Host}
	if err = client.StartTLS(tlsconfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return w.Close()
}

func (s *smtpEmailService) buildMessage(to, subject, htmlBody string) []byte {
	boundary := "boundary_" + strconv.FormatInt(time.Now().UnixNano(), 10)

	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(&b, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", boundary)
	fmt.Fprintf(&b, "--%s\r\n", boundary)
	fmt.Fprintf(&b, "Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(htmlBody)
	fmt.Fprintf(&b, "\r\n--%s--\r\n", boundary)
	return b.Bytes()
}

func (s *smtpEmailService) loadTemplates() {
	s.templates[TypeReservationConfirmation] = template.Must(template.New("reservation_confirmation").Parse(`
<html><body>
<h2>Reservation Confirmed</h2>
<p>Dear {{.RecipientName}},</p>
<p>Your reservation <strong>{{.ReferenceCode}}</strong> for <strong>{{.EventTitle}}</strong> has been received.</p>
<p>Tickets: {{.Quantity}}<br>
Total: {{.Currency}} {{printf "%.2f" .TotalAmount}}<br>
Outstanding: {{.Currency}} {{printf "%.2f" .OutstandingBalance}}</p>
<p>Please complete payment before your hold expires and upload your proof of payment using your reference code.</p>
</body></html>`))

	s.templates[TypePaymentReceived] = template.Must(template.New("payment_received").Parse(`
<html><body>
<h2>Payment Received</h2>
<p>Dear {{.RecipientName}},</p>
<p>We have received a payment for reservation <strong>{{.ReferenceCode}}</strong>.</p>
<p>Paid so far: {{.Currency}} {{printf "%.2f" .AmountPaid}} of {{.Currency}} {{printf "%.2f" .TotalAmount}}<br>
Status: {{.Status}}</p>
</body></html>`))

	s.templates[TypePaymentReminder] = template.Must(template.New("payment_reminder").Parse(`
<html><body>
<h2>Payment Reminder</h2>
<p>Dear {{.RecipientName}},</p>
<p>Reservation <strong>{{.ReferenceCode}}</strong> still has an outstanding balance of {{.Currency}} {{printf "%.2f" .OutstandingBalance}}.</p>
<p>Please complete payment to secure your spot.</p>
</body></html>`))
}
