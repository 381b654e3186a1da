package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/ranjith-devop/smart-medication/domain"
)

// OTPServiceImpl implements domain.OTPService
type OTPServiceImpl struct {
	notificationSvc domain.NotificationService
	ttl             time.Duration
	logger          *zap.Logger
}

// NewOTPService creates a new OTP service
func NewOTPService(notificationSvc domain.NotificationService, ttl time.Duration, logger *zap.Logger) domain.OTPService {
	return &OTPServiceImpl{
		notificationSvc: notificationSvc,
		ttl:             ttl,
		logger:          logger,
	}
}

// Issue implements domain.OTPService. Delivery happens before the challenge
// is handed back, so a failed send never leaves a persisted code behind.
func (s *OTPServiceImpl) Issue(ctx context.Context, ch domain.Channel, address string) (*domain.OTPChallenge, error) {
	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP code: %w", err)
	}

	switch ch {
	case domain.ChannelMobile:
		message := fmt.Sprintf("Your verification code is: %s. Valid for %d minutes.", code, int(s.ttl.Minutes()))
		if err := s.notificationSvc.SendSMS(address, message); err != nil {
			return nil, fmt.Errorf("failed to send OTP SMS: %w", err)
		}
	case domain.ChannelEmail:
		body := fmt.Sprintf("Your verification code is: %s. Valid for %d minutes.", code, int(s.ttl.Minutes()))
		if err := s.notificationSvc.SendEmail(address, "Your SmartMeds Verification Code", body); err != nil {
			return nil, fmt.Errorf("failed to send OTP email: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown OTP channel %q", ch)
	}

	challenge := &domain.OTPChallenge{
		Code:      code,
		ExpiresAt: time.Now().Add(s.ttl),
	}

	s.logger.Info("otp issued",
		zap.String("channel", string(ch)),
		zap.String("address", address),
		zap.Time("expires_at", challenge.ExpiresAt),
	)

	return challenge, nil
}

// generateCode produces a uniformly random 6-digit code in [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", 100000+n.Int64()), nil
}
