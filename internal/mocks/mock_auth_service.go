package mocks

import (
	"context"

	"github.com/ranjith-devop/smart-medication/domain"
)

// MockAuthService implements domain.AuthService for handler tests
type MockAuthService struct {
	SendOTPFunc            func(ctx context.Context, ch domain.Channel, identifier string) error
	VerifyOTPFunc          func(ctx context.Context, ch domain.Channel, identifier, code string) (*domain.VerifyResult, error)
	FinishRegistrationFunc func(ctx context.Context, userID, name, password, role string) (*domain.AuthResult, error)
	GoogleAuthFunc         func(ctx context.Context, email, name, googleID string) (*domain.AuthResult, error)
	LoginFunc              func(ctx context.Context, identifier, password string) (*domain.AuthResult, error)
	ForgotPasswordFunc     func(ctx context.Context, ch domain.Channel, identifier string) (string, error)
	ResetPasswordFunc      func(ctx context.Context, ch domain.Channel, identifier, code, newPassword string) error
	GetUserProfileFunc     func(ctx context.Context, userID string) (*domain.User, error)
}

func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

func (m *MockAuthService) SendOTP(ctx context.Context, ch domain.Channel, identifier string) error {
	if m.SendOTPFunc != nil {
		return m.SendOTPFunc(ctx, ch, identifier)
	}
	return nil
}

func (m *MockAuthService) VerifyOTP(ctx context.Context, ch domain.Channel, identifier, code string) (*domain.VerifyResult, error) {
	if m.VerifyOTPFunc != nil {
		return m.VerifyOTPFunc(ctx, ch, identifier, code)
	}
	return &domain.VerifyResult{NewUser: true, UserID: "000000000000000000000001"}, nil
}

func (m *MockAuthService) FinishRegistration(ctx context.Context, userID, name, password, role string) (*domain.AuthResult, error) {
	if m.FinishRegistrationFunc != nil {
		return m.FinishRegistrationFunc(ctx, userID, name, password, role)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockAuthService) GoogleAuth(ctx context.Context, email, name, googleID string) (*domain.AuthResult, error) {
	if m.GoogleAuthFunc != nil {
		return m.GoogleAuthFunc(ctx, email, name, googleID)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockAuthService) Login(ctx context.Context, identifier, password string) (*domain.AuthResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, identifier, password)
	}
	return nil, domain.ErrInvalidCredentials
}

func (m *MockAuthService) ForgotPassword(ctx context.Context, ch domain.Channel, identifier string) (string, error) {
	if m.ForgotPasswordFunc != nil {
		return m.ForgotPasswordFunc(ctx, ch, identifier)
	}
	return "", domain.ErrUserNotFound
}

func (m *MockAuthService) ResetPassword(ctx context.Context, ch domain.Channel, identifier, code, newPassword string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, ch, identifier, code, newPassword)
	}
	return domain.ErrOTPInvalid
}

func (m *MockAuthService) GetUserProfile(ctx context.Context, userID string) (*domain.User, error) {
	if m.GetUserProfileFunc != nil {
		return m.GetUserProfileFunc(ctx, userID)
	}
	return nil, domain.ErrUserNotFound
}
