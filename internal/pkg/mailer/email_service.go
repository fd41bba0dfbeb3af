package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendDownsellApplied(toEmail string, offeredPrice int64) error
	// SendCancellationConfirmed accepts an empty periodEnd; the email then
	// falls back to generic billing-period wording instead of a date.
	SendCancellationConfirmed(toEmail string, periodEnd string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

func (s *emailService) SendDownsellApplied(toEmail string, offeredPrice int64) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your discount has been applied")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Glad you're staying with us!</h2>
			<p>Your new price of <strong>$%.2f/month</strong> applies from your next billing date.</p>
			<p>It stays in place until you land your next role.</p>
		</div>
	`, float64(offeredPrice)/100)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send downsell email to %s: %v\n", toEmail, err)
		return err
	}

	return nil
}

func (s *emailService) SendCancellationConfirmed(toEmail string, periodEnd string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your subscription cancellation is confirmed")

	accessLine := "<p>Your cancellation has been received. You keep full access until the end of your current billing period.</p>"
	if periodEnd != "" {
		accessLine = fmt.Sprintf("<p>Your cancellation has been received. You keep full access until <strong>%s</strong>.</p>", periodEnd)
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Sorry to see you go</h2>
			%s
			<p>Changed your mind? You can resubscribe any time before then.</p>
		</div>
	`, accessLine)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send confirmation email to %s: %v\n", toEmail, err)
		return err
	}

	return nil
}
