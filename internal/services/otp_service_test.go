package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ranjith-devop/smart-medication/domain"
	"github.com/ranjith-devop/smart-medication/internal/mocks"
)

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code, err := generateCode()
		if err != nil {
			t.Fatalf("generateCode: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("non-numeric code %q", code)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("code %d out of range", n)
		}
	}
}

func TestOTPServiceImpl_Issue(t *testing.T) {
	tests := []struct {
		name          string
		channel       domain.Channel
		address       string
		setupMocks    func(*mocks.MockNotificationService)
		expectError   bool
		validateSends func(t *testing.T, notifier *mocks.MockNotificationService, challenge *domain.OTPChallenge)
	}{
		{
			name:       "mobile channel delivers SMS with the code",
			channel:    domain.ChannelMobile,
			address:    "+15551234567",
			setupMocks: func(notifier *mocks.MockNotificationService) {},
			validateSends: func(t *testing.T, notifier *mocks.MockNotificationService, challenge *domain.OTPChallenge) {
				if len(notifier.SentSMS) != 1 {
					t.Fatalf("expected one SMS, got %d", len(notifier.SentSMS))
				}
				if notifier.SentSMS[0].To != "+15551234567" {
					t.Errorf("unexpected recipient %q", notifier.SentSMS[0].To)
				}
				if !strings.Contains(notifier.SentSMS[0].Body, challenge.Code) {
					t.Error("SMS body does not contain the code")
				}
			},
		},
		{
			name:       "email channel delivers mail with the code",
			channel:    domain.ChannelEmail,
			address:    "alice@example.com",
			setupMocks: func(notifier *mocks.MockNotificationService) {},
			validateSends: func(t *testing.T, notifier *mocks.MockNotificationService, challenge *domain.OTPChallenge) {
				if len(notifier.SentEmails) != 1 {
					t.Fatalf("expected one email, got %d", len(notifier.SentEmails))
				}
				if notifier.SentEmails[0].Subject != "Your SmartMeds Verification Code" {
					t.Errorf("unexpected subject %q", notifier.SentEmails[0].Subject)
				}
				if !strings.Contains(notifier.SentEmails[0].Body, challenge.Code) {
					t.Error("email body does not contain the code")
				}
			},
		},
		{
			name:    "delivery failure yields no challenge",
			channel: domain.ChannelMobile,
			address: "+15551234567",
			setupMocks: func(notifier *mocks.MockNotificationService) {
				notifier.SendSMSFunc = func(to, message string) error {
					return errors.New("gateway unavailable")
				}
			},
			expectError: true,
		},
		{
			name:        "unknown channel",
			channel:     domain.Channel("carrier-pigeon"),
			address:     "somewhere",
			setupMocks:  func(notifier *mocks.MockNotificationService) {},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := mocks.NewMockNotificationService()
			tt.setupMocks(notifier)

			svc := NewOTPService(notifier, 10*time.Minute, zap.NewNop())
			before := time.Now()
			challenge, err := svc.Issue(context.Background(), tt.channel, tt.address)

			if tt.expectError {
				if err == nil {
					t.Fatal("expected an error")
				}
				if challenge != nil {
					t.Error("expected no challenge on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(challenge.Code) != 6 {
				t.Errorf("expected 6-digit code, got %q", challenge.Code)
			}
			expiry := challenge.ExpiresAt.Sub(before)
			if expiry < 9*time.Minute || expiry > 11*time.Minute {
				t.Errorf("expected ~10m expiry, got %s", expiry)
			}
			tt.validateSends(t, notifier, challenge)
		})
	}
}
