package email

import (
	"fmt"
	"net/smtp"
	"os"
	"time"
)

type EmailService struct {
	host     string
	port     string
	user     string
	password string
	from     string
}

func NewEmailService() *EmailService {
	return &EmailService{
		host:     os.Getenv("SMTP_HOST"),
		port:     os.Getenv("SMTP_PORT"),
		user:     os.Getenv("SMTP_USER"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     os.Getenv("SMTP_FROM"),
	}
}

// Enabled reports whether SMTP is configured. Without a host the service
// stays silent instead of failing every invoice.
func (e *EmailService) Enabled() bool {
	return e.host != ""
}

func (e *EmailService) SendInvoiceEmail(to, number string, amountCents int, dueAt time.Time) error {
	if !e.Enabled() {
		return nil
	}

	subject := fmt.Sprintf("Invoice %s from your SEO team", number)
	body := fmt.Sprintf(`Hello,

A new invoice has been issued on your account.

Invoice number: %s
Amount due: $%.2f
Due date: %s

You can review it any time from your client portal.

---
SEODesk
`, number, float64(amountCents)/100, dueAt.Format("January 2, 2006"))

	message := fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", e.from, to, subject, body)

	auth := smtp.PlainAuth("", e.user, e.password, e.host)
	addr := fmt.Sprintf("%s:%s", e.host, e.port)

	if err := smtp.SendMail(addr, auth, e.from, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}

	return nil
}
