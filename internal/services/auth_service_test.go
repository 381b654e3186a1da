package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ranjith-devop/smart-medication/domain"
	"github.com/ranjith-devop/smart-medication/internal/mocks"
)

func newTestAuthService(
	userRepo *mocks.MockUserRepository,
	passwordSvc *mocks.MockPasswordService,
	tokenSvc *mocks.MockTokenService,
	otpSvc *mocks.MockOTPService,
) domain.AuthService {
	return NewAuthService(userRepo, passwordSvc, tokenSvc, otpSvc, zap.NewNop())
}

func registeredUser() *domain.User {
	return &domain.User{
		ID:           "000000000000000000000001",
		Name:         "Alice",
		Email:        "alice@example.com",
		PhoneNumber:  "+15551234567",
		PasswordHash: "hashed_secret123",
		Role:         domain.RolePatient,
	}
}

func TestAuthServiceImpl_VerifyOTP(t *testing.T) {
	validOTP := &domain.OTPChallenge{Code: "123456", ExpiresAt: time.Now().Add(5 * time.Minute)}
	expiredOTP := &domain.OTPChallenge{Code: "123456", ExpiresAt: time.Now().Add(-time.Second)}

	tests := []struct {
		name           string
		channel        domain.Channel
		identifier     string
		code           string
		setupMocks     func(*mocks.MockUserRepository, *mocks.MockTokenService)
		expectedError  error
		validateResult func(t *testing.T, result *domain.VerifyResult)
	}{
		{
			name:       "registered user gets a session",
			channel:    domain.ChannelMobile,
			identifier: "+15551234567",
			code:       "123456",
			setupMocks: func(userRepo *mocks.MockUserRepository, tokenSvc *mocks.MockTokenService) {
				userRepo.FindByPhoneFunc = func(ctx context.Context, phone string) (*domain.User, error) {
					u := registeredUser()
					u.OTP = validOTP
					return u, nil
				}
			},
			validateResult: func(t *testing.T, result *domain.VerifyResult) {
				if result.NewUser {
					t.Error("expected existing user, got isNewUser")
				}
				if result.Auth == nil || result.Auth.Token != "token_000000000000000000000001" {
					t.Errorf("unexpected auth result: %+v", result.Auth)
				}
			},
		},
		{
			name:       "unregistered record routes to register-finish",
			channel:    domain.ChannelMobile,
			identifier: "+15551234567",
			code:       "123456",
			setupMocks: func(userRepo *mocks.MockUserRepository, tokenSvc *mocks.MockTokenService) {
				userRepo.FindByPhoneFunc = func(ctx context.Context, phone string) (*domain.User, error) {
					return &domain.User{
						ID:          "000000000000000000000002",
						PhoneNumber: phone,
						Role:        domain.RolePatient,
						OTP:         validOTP,
					}, nil
				}
			},
			validateResult: func(t *testing.T, result *domain.VerifyResult) {
				if !result.NewUser {
					t.Error("expected isNewUser for record without name/password")
				}
				if result.UserID != "000000000000000000000002" {
					t.Errorf("unexpected user id %q", result.UserID)
				}
				if result.Auth != nil {
					t.Error("expected no auth result for new user")
				}
			},
		},
		{
			name:       "wrong code",
			channel:    domain.ChannelMobile,
			identifier: "+15551234567",
			code:       "999999",
			setupMocks: func(userRepo *mocks.MockUserRepository, tokenSvc *mocks.MockTokenService) {
				userRepo.FindByPhoneFunc = func(ctx context.Context, phone string) (*domain.User, error) {
					u := registeredUser()
					u.OTP = validOTP
					return u, nil
				}
			},
			expectedError: domain.ErrOTPInvalid,
		},
		{
			name:       "matching but expired code",
			channel:    domain.ChannelMobile,
			identifier: "+15551234567",
			code:       "123456",
			setupMocks: func(userRepo *mocks.MockUserRepository, tokenSvc *mocks.MockTokenService) {
				userRepo.FindByPhoneFunc = func(ctx context.Context, phone string) (*domain.User, error) {
					u := registeredUser()
					u.OTP = expiredOTP
					return u, nil
				}
			},
			expectedError: domain.ErrOTPExpired,
		},
		{
			name:       "no outstanding challenge",
			channel:    domain.ChannelEmail,
			identifier: "alice@example.com",
			code:       "123456",
			setupMocks: func(userRepo *mocks.MockUserRepository, tokenSvc *mocks.MockTokenService) {
				userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
					return registeredUser(), nil
				}
			},
			expectedError: domain.ErrOTPInvalid,
		},
		{
			name:          "unknown identifier looks like a wrong code",
			channel:       domain.ChannelMobile,
			identifier:    "+15550000000",
			code:          "123456",
			setupMocks:    func(userRepo *mocks.MockUserRepository, tokenSvc *mocks.MockTokenService) {},
			expectedError: domain.ErrOTPInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := mocks.NewMockUserRepository()
			tokenSvc := mocks.NewMockTokenService()
			tt.setupMocks(userRepo, tokenSvc)

			svc := newTestAuthService(userRepo, mocks.NewMockPasswordService(), tokenSvc, mocks.NewMockOTPService())
			result, err := svc.VerifyOTP(context.Background(), tt.channel, tt.identifier, tt.code)

			if tt.expectedError != nil {
				if !errors.Is(err, tt.expectedError) {
					t.Fatalf("expected error %v, got %v", tt.expectedError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.validateResult(t, result)
		})
	}
}

func TestAuthServiceImpl_VerifyOTP_MarksChannelVerified(t *testing.T) {
	userRepo := mocks.NewMockUserRepository()
	userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
		u := registeredUser()
		u.OTP = &domain.OTPChallenge{Code: "123456", ExpiresAt: time.Now().Add(time.Minute)}
		return u, nil
	}

	var markedID string
	var markedChannel domain.Channel
	userRepo.MarkVerifiedFunc = func(ctx context.Context, id string, ch domain.Channel) error {
		markedID = id
		markedChannel = ch
		return nil
	}

	svc := newTestAuthService(userRepo, mocks.NewMockPasswordService(), mocks.NewMockTokenService(), mocks.NewMockOTPService())
	if _, err := svc.VerifyOTP(context.Background(), domain.ChannelEmail, "alice@example.com", "123456"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if markedID != "000000000000000000000001" || markedChannel != domain.ChannelEmail {
		t.Errorf("expected email channel marked verified, got id=%q ch=%q", markedID, markedChannel)
	}
}

func TestAuthServiceImpl_Login(t *testing.T) {
	tests := []struct {
		name          string
		identifier    string
		password      string
		setupMocks    func(*mocks.MockUserRepository)
		expectedError error
	}{
		{
			name:       "successful login by email",
			identifier: "alice@example.com",
			password:   "secret123",
			setupMocks: func(userRepo *mocks.MockUserRepository) {
				userRepo.FindByIdentifierFunc = func(ctx context.Context, identifier string) (*domain.User, error) {
					return registeredUser(), nil
				}
			},
		},
		{
			name:          "unknown identifier",
			identifier:    "nobody@example.com",
			password:      "secret123",
			setupMocks:    func(userRepo *mocks.MockUserRepository) {},
			expectedError: domain.ErrInvalidCredentials,
		},
		{
			name:       "wrong password",
			identifier: "alice@example.com",
			password:   "wrong",
			setupMocks: func(userRepo *mocks.MockUserRepository) {
				userRepo.FindByIdentifierFunc = func(ctx context.Context, identifier string) (*domain.User, error) {
					return registeredUser(), nil
				}
			},
			expectedError: domain.ErrInvalidCredentials,
		},
		{
			name:       "verified but never finished registration",
			identifier: "+15551234567",
			password:   "secret123",
			setupMocks: func(userRepo *mocks.MockUserRepository) {
				userRepo.FindByIdentifierFunc = func(ctx context.Context, identifier string) (*domain.User, error) {
					return &domain.User{
						ID:              "000000000000000000000003",
						PhoneNumber:     identifier,
						IsPhoneVerified: true,
						Role:            domain.RolePatient,
					}, nil
				}
			},
			expectedError: domain.ErrRegistrationIncomplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := mocks.NewMockUserRepository()
			tt.setupMocks(userRepo)

			svc := newTestAuthService(userRepo, mocks.NewMockPasswordService(), mocks.NewMockTokenService(), mocks.NewMockOTPService())
			result, err := svc.Login(context.Background(), tt.identifier, tt.password)

			if tt.expectedError != nil {
				if !errors.Is(err, tt.expectedError) {
					t.Fatalf("expected error %v, got %v", tt.expectedError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Token == "" {
				t.Error("expected a token")
			}
		})
	}
}

func TestAuthServiceImpl_FinishRegistration(t *testing.T) {
	tests := []struct {
		name          string
		userID        string
		userName      string
		password      string
		role          string
		setupMocks    func(*mocks.MockUserRepository)
		expectedError error
		validateUser  func(t *testing.T, updated *domain.User)
	}{
		{
			name:     "sets name, password hash and role",
			userID:   "000000000000000000000002",
			userName: "Alice",
			password: "secret123",
			role:     domain.RoleCaregiver,
			setupMocks: func(userRepo *mocks.MockUserRepository) {
				userRepo.FindByIDFunc = func(ctx context.Context, id string) (*domain.User, error) {
					return &domain.User{ID: id, PhoneNumber: "+15551234567", Role: domain.RolePatient, IsPhoneVerified: true}, nil
				}
			},
			validateUser: func(t *testing.T, updated *domain.User) {
				if updated.Name != "Alice" {
					t.Errorf("expected name Alice, got %q", updated.Name)
				}
				if updated.PasswordHash != "hashed_secret123" {
					t.Errorf("expected hashed password, got %q", updated.PasswordHash)
				}
				if updated.Role != domain.RoleCaregiver {
					t.Errorf("expected caregiver role, got %q", updated.Role)
				}
			},
		},
		{
			name:     "empty role keeps the default",
			userID:   "000000000000000000000002",
			userName: "Alice",
			password: "secret123",
			setupMocks: func(userRepo *mocks.MockUserRepository) {
				userRepo.FindByIDFunc = func(ctx context.Context, id string) (*domain.User, error) {
					return &domain.User{ID: id, PhoneNumber: "+15551234567", Role: domain.RolePatient}, nil
				}
			},
			validateUser: func(t *testing.T, updated *domain.User) {
				if updated.Role != domain.RolePatient {
					t.Errorf("expected patient role, got %q", updated.Role)
				}
			},
		},
		{
			name:     "role is not overwritten for a registered record",
			userID:   "000000000000000000000001",
			userName: "Alice Updated",
			password: "newsecret",
			role:     domain.RoleAdmin,
			setupMocks: func(userRepo *mocks.MockUserRepository) {
				userRepo.FindByIDFunc = func(ctx context.Context, id string) (*domain.User, error) {
					return registeredUser(), nil
				}
			},
			validateUser: func(t *testing.T, updated *domain.User) {
				if updated.Role != domain.RolePatient {
					t.Errorf("expected role to stay patient, got %q", updated.Role)
				}
				if updated.Name != "Alice Updated" {
					t.Errorf("expected name replaced, got %q", updated.Name)
				}
			},
		},
		{
			name:          "unknown user",
			userID:        "ffffffffffffffffffffffff",
			userName:      "Alice",
			password:      "secret123",
			setupMocks:    func(userRepo *mocks.MockUserRepository) {},
			expectedError: domain.ErrUserNotFound,
		},
		{
			name:     "invalid role",
			userID:   "000000000000000000000002",
			userName: "Alice",
			password: "secret123",
			role:     "wizard",
			setupMocks: func(userRepo *mocks.MockUserRepository) {
				userRepo.FindByIDFunc = func(ctx context.Context, id string) (*domain.User, error) {
					return &domain.User{ID: id, PhoneNumber: "+15551234567", Role: domain.RolePatient}, nil
				}
			},
			expectedError: domain.ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := mocks.NewMockUserRepository()
			tt.setupMocks(userRepo)

			var updated *domain.User
			userRepo.UpdateFunc = func(ctx context.Context, user *domain.User) error {
				updated = user
				return nil
			}

			svc := newTestAuthService(userRepo, mocks.NewMockPasswordService(), mocks.NewMockTokenService(), mocks.NewMockOTPService())
			result, err := svc.FinishRegistration(context.Background(), tt.userID, tt.userName, tt.password, tt.role)

			if tt.expectedError != nil {
				if !errors.Is(err, tt.expectedError) {
					t.Fatalf("expected error %v, got %v", tt.expectedError, err)
				}
				if updated != nil {
					t.Error("expected no update on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Token == "" {
				t.Error("expected a token")
			}
			tt.validateUser(t, updated)
		})
	}
}

func TestAuthServiceImpl_GoogleAuth(t *testing.T) {
	tests := []struct {
		name          string
		setupMocks    func(*mocks.MockUserRepository)
		validateCalls func(t *testing.T, created, updated *domain.User)
	}{
		{
			name: "existing google account",
			setupMocks: func(userRepo *mocks.MockUserRepository) {
				userRepo.FindByGoogleIDFunc = func(ctx context.Context, googleID string) (*domain.User, error) {
					u := registeredUser()
					u.GoogleID = googleID
					return u, nil
				}
			},
			validateCalls: func(t *testing.T, created, updated *domain.User) {
				if created != nil || updated != nil {
					t.Error("expected neither create nor update for a googleId match")
				}
			},
		},
		{
			name: "links google id onto the email record",
			setupMocks: func(userRepo *mocks.MockUserRepository) {
				userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
					return registeredUser(), nil
				}
			},
			validateCalls: func(t *testing.T, created, updated *domain.User) {
				if created != nil {
					t.Error("expected no create when linking")
				}
				if updated == nil || updated.GoogleID != "g1" {
					t.Errorf("expected googleId linked, got %+v", updated)
				}
			},
		},
		{
			name:       "creates a fresh email-verified record",
			setupMocks: func(userRepo *mocks.MockUserRepository) {},
			validateCalls: func(t *testing.T, created, updated *domain.User) {
				if updated != nil {
					t.Error("expected no update on create path")
				}
				if created == nil {
					t.Fatal("expected a created record")
				}
				if !created.IsEmailVerified {
					t.Error("expected google-created record to have a verified email")
				}
				if created.Role != domain.RolePatient {
					t.Errorf("expected default patient role, got %q", created.Role)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := mocks.NewMockUserRepository()
			tt.setupMocks(userRepo)

			var created, updated *domain.User
			userRepo.CreateFunc = func(ctx context.Context, user *domain.User) error {
				user.ID = "000000000000000000000009"
				created = user
				return nil
			}
			userRepo.UpdateFunc = func(ctx context.Context, user *domain.User) error {
				updated = user
				return nil
			}

			svc := newTestAuthService(userRepo, mocks.NewMockPasswordService(), mocks.NewMockTokenService(), mocks.NewMockOTPService())
			result, err := svc.GoogleAuth(context.Background(), "alice@example.com", "Alice", "g1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Token == "" {
				t.Error("expected a token")
			}
			tt.validateCalls(t, created, updated)
		})
	}
}

func TestAuthServiceImpl_SendOTP_DeliveryFailureAborts(t *testing.T) {
	userRepo := mocks.NewMockUserRepository()

	otpStored := false
	userRepo.SetOTPFunc = func(ctx context.Context, id string, otp *domain.OTPChallenge) error {
		otpStored = true
		return nil
	}

	otpSvc := mocks.NewMockOTPService()
	otpSvc.IssueFunc = func(ctx context.Context, ch domain.Channel, address string) (*domain.OTPChallenge, error) {
		return nil, errors.New("sms gateway down")
	}

	svc := newTestAuthService(userRepo, mocks.NewMockPasswordService(), mocks.NewMockTokenService(), otpSvc)
	err := svc.SendOTP(context.Background(), domain.ChannelMobile, "+15551234567")
	if err == nil {
		t.Fatal("expected delivery failure to surface")
	}
	if otpStored {
		t.Error("expected no challenge persisted after delivery failure")
	}
}

func TestAuthServiceImpl_ForgotPassword_UnknownIdentifier(t *testing.T) {
	userRepo := mocks.NewMockUserRepository()

	otpSvc := mocks.NewMockOTPService()
	issued := false
	otpSvc.IssueFunc = func(ctx context.Context, ch domain.Channel, address string) (*domain.OTPChallenge, error) {
		issued = true
		return &domain.OTPChallenge{Code: "123456", ExpiresAt: time.Now().Add(time.Minute)}, nil
	}

	svc := newTestAuthService(userRepo, mocks.NewMockPasswordService(), mocks.NewMockTokenService(), otpSvc)
	_, err := svc.ForgotPassword(context.Background(), domain.ChannelEmail, "nobody@example.com")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if issued {
		t.Error("expected no OTP issued for unknown identifier")
	}
}

func TestAuthServiceImpl_ResetPassword(t *testing.T) {
	validOTP := &domain.OTPChallenge{Code: "123456", ExpiresAt: time.Now().Add(time.Minute)}

	tests := []struct {
		name          string
		code          string
		otp           *domain.OTPChallenge
		expectedError error
	}{
		{name: "success", code: "123456", otp: validOTP},
		{name: "wrong code", code: "000000", otp: validOTP, expectedError: domain.ErrOTPInvalid},
		{
			name: "expired code",
			code: "123456",
			otp:  &domain.OTPChallenge{Code: "123456", ExpiresAt: time.Now().Add(-time.Minute)},

			expectedError: domain.ErrOTPExpired,
		},
		{name: "no challenge outstanding", code: "123456", expectedError: domain.ErrOTPInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := mocks.NewMockUserRepository()
			userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
				u := registeredUser()
				u.OTP = tt.otp
				return u, nil
			}

			var updated *domain.User
			userRepo.UpdateFunc = func(ctx context.Context, user *domain.User) error {
				updated = user
				return nil
			}

			svc := newTestAuthService(userRepo, mocks.NewMockPasswordService(), mocks.NewMockTokenService(), mocks.NewMockOTPService())
			err := svc.ResetPassword(context.Background(), domain.ChannelEmail, "alice@example.com", tt.code, "newsecret")

			if tt.expectedError != nil {
				if !errors.Is(err, tt.expectedError) {
					t.Fatalf("expected error %v, got %v", tt.expectedError, err)
				}
				if updated != nil {
					t.Error("expected no update on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if updated == nil {
				t.Fatal("expected the user to be updated")
			}
			if updated.PasswordHash != "hashed_newsecret" {
				t.Errorf("expected new password hash, got %q", updated.PasswordHash)
			}
			if updated.OTP != nil {
				t.Error("expected challenge cleared after reset")
			}
		})
	}
}
