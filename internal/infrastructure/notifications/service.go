package notifications

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/ranjith-devop/smart-medication/domain"
)

// Service implements domain.NotificationService using Twilio for SMS and
// MailerSend for email. Either channel falls back to printing the message
// when its credentials are not configured, which is how OTP codes surface
// during local development.
type Service struct {
	sms        *twilio.RestClient
	fromNumber string

	mail      *mailersend.Mailersend
	fromName  string
	fromEmail string
}

// NewService creates a notification service. Empty Twilio or MailerSend
// credentials leave that channel in mock mode.
func NewService(twilioSID, twilioToken, fromNumber, mailerKey, fromName, fromEmail string) domain.NotificationService {
	s := &Service{
		fromNumber: fromNumber,
		fromName:   fromName,
		fromEmail:  fromEmail,
	}
	if twilioSID != "" && twilioToken != "" {
		s.sms = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: twilioSID,
			Password: twilioToken,
		})
	}
	if mailerKey != "" && fromEmail != "" {
		s.mail = mailersend.NewMailersend(mailerKey)
	}
	return s
}

// SendSMS implements domain.NotificationService
func (s *Service) SendSMS(to, message string) error {
	if s.sms == nil || s.fromNumber == "" {
		fmt.Printf("\n================================\n")
		fmt.Printf("[MOCK SMS] To: %s\n", to)
		fmt.Printf("[MOCK SMS] Message: %s\n", message)
		fmt.Printf("================================\n\n")
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.fromNumber)
	params.SetBody(message)

	_, err := s.sms.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}

	return nil
}

// SendEmail implements domain.NotificationService
func (s *Service) SendEmail(to, subject, body string) error {
	if s.mail == nil {
		fmt.Printf("\n================================\n")
		fmt.Printf("[MOCK EMAIL] To: %s\n", to)
		fmt.Printf("[MOCK EMAIL] Subject: %s\n", subject)
		fmt.Printf("[MOCK EMAIL] Body: %s\n", body)
		fmt.Printf("================================\n\n")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := s.mail.Email.NewMessage()
	msg.SetFrom(mailersend.From{Name: s.fromName, Email: s.fromEmail})
	msg.SetRecipients([]mailersend.Recipient{{Email: to}})
	msg.SetSubject(subject)
	msg.SetText(body)

	res, err := s.mail.Email.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		raw, _ := io.ReadAll(res.Body)
		return fmt.Errorf("mailersend error: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(raw)))
	}

	return nil
}
