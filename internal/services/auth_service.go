package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ranjith-devop/smart-medication/domain"
)

// AuthServiceImpl implements domain.AuthService. It is stateless per
// request; every decision reads from and writes to the user repository.
type AuthServiceImpl struct {
	userRepo    domain.UserRepository
	passwordSvc domain.PasswordService
	tokenSvc    domain.TokenService
	otpSvc      domain.OTPService
	logger      *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	otpSvc domain.OTPService,
	logger *zap.Logger,
) domain.AuthService {
	return &AuthServiceImpl{
		userRepo:    userRepo,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
		otpSvc:      otpSvc,
		logger:      logger,
	}
}

// SendOTP implements domain.AuthService. The record is created lazily on the
// first send for an unknown identifier. Two concurrent sends race on the otp
// field and the last writer wins; the earlier code simply stops verifying.
func (s *AuthServiceImpl) SendOTP(ctx context.Context, ch domain.Channel, identifier string) error {
	user, err := s.upsertByChannel(ctx, ch, identifier)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	challenge, err := s.otpSvc.Issue(ctx, ch, identifier)
	if err != nil {
		return fmt.Errorf("failed to issue OTP: %w", err)
	}

	if err := s.userRepo.SetOTP(ctx, user.ID, challenge); err != nil {
		return fmt.Errorf("failed to store OTP challenge: %w", err)
	}

	return nil
}

// VerifyOTP implements domain.AuthService. On success the channel is marked
// verified and the challenge cleared. A record that never finished
// registration gets routed back to register-finish, even on repeat logins.
func (s *AuthServiceImpl) VerifyOTP(ctx context.Context, ch domain.Channel, identifier, code string) (*domain.VerifyResult, error) {
	user, err := s.findByChannel(ctx, ch, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// An unknown identifier is indistinguishable from a wrong code.
			return nil, domain.ErrOTPInvalid
		}
		return nil, err
	}

	if err := user.OTP.Accepts(code, time.Now()); err != nil {
		return nil, err
	}

	if err := s.userRepo.MarkVerified(ctx, user.ID, ch); err != nil {
		return nil, fmt.Errorf("failed to mark %s verified: %w", ch, err)
	}

	s.logger.Info("channel verified",
		zap.String("user_id", user.ID),
		zap.String("channel", string(ch)),
	)

	if !user.IsFullyRegistered() {
		return &domain.VerifyResult{NewUser: true, UserID: user.ID}, nil
	}

	token, err := s.tokenSvc.Generate(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &domain.VerifyResult{
		UserID: user.ID,
		Auth:   &domain.AuthResult{User: user, Token: token},
	}, nil
}

// FinishRegistration implements domain.AuthService. The role may only be
// chosen while the record has not yet completed registration; afterwards the
// call still replaces name and password but leaves the role alone.
func (s *AuthServiceImpl) FinishRegistration(ctx context.Context, userID, name, password, role string) (*domain.AuthResult, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if role != "" {
		if !domain.ValidRole(role) {
			return nil, domain.ErrInvalidRole
		}
		if !user.IsFullyRegistered() {
			user.Role = role
		}
	}

	hash, err := s.passwordSvc.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user.Name = name
	user.PasswordHash = hash

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("registration finished",
		zap.String("user_id", user.ID),
		zap.String("role", user.Role),
	)

	token, err := s.tokenSvc.Generate(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &domain.AuthResult{User: user, Token: token}, nil
}

// GoogleAuth implements domain.AuthService. Linking prefers a googleId
// match, then falls back to the email record (attaching the googleId to it),
// and otherwise creates a fresh record whose email counts as verified.
//
// The claims arrive from the client unverified; a production deployment must
// validate the Google ID token server-side before trusting any of them.
func (s *AuthServiceImpl) GoogleAuth(ctx context.Context, email, name, googleID string) (*domain.AuthResult, error) {
	user, err := s.userRepo.FindByGoogleID(ctx, googleID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}

		user, err = s.userRepo.FindByEmail(ctx, email)
		switch {
		case err == nil:
			user.GoogleID = googleID
			if err := s.userRepo.Update(ctx, user); err != nil {
				return nil, fmt.Errorf("failed to link google account: %w", err)
			}
			s.logger.Info("google account linked", zap.String("user_id", user.ID))
		case errors.Is(err, domain.ErrUserNotFound):
			user = &domain.User{
				Name:            name,
				Email:           email,
				GoogleID:        googleID,
				Role:            domain.RolePatient,
				IsEmailVerified: true,
			}
			if err := s.userRepo.Create(ctx, user); err != nil {
				return nil, fmt.Errorf("failed to create google user: %w", err)
			}
			s.logger.Info("google account created", zap.String("user_id", user.ID))
		default:
			return nil, err
		}
	}

	token, err := s.tokenSvc.Generate(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &domain.AuthResult{User: user, Token: token}, nil
}

// Login implements domain.AuthService. The identifier may be a phone number
// or an email address.
func (s *AuthServiceImpl) Login(ctx context.Context, identifier, password string) (*domain.AuthResult, error) {
	user, err := s.userRepo.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	// Verified but never set a password: route back into registration.
	if user.PasswordHash == "" {
		return nil, domain.ErrRegistrationIncomplete
	}

	if !s.passwordSvc.Verify(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokenSvc.Generate(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("password login", zap.String("user_id", user.ID))

	return &domain.AuthResult{User: user, Token: token}, nil
}

// ForgotPassword implements domain.AuthService. Unlike SendOTP this never
// creates a record; an unknown identifier is a not-found error.
func (s *AuthServiceImpl) ForgotPassword(ctx context.Context, ch domain.Channel, identifier string) (string, error) {
	user, err := s.findByChannel(ctx, ch, identifier)
	if err != nil {
		return "", err
	}

	challenge, err := s.otpSvc.Issue(ctx, ch, identifier)
	if err != nil {
		return "", fmt.Errorf("failed to issue OTP: %w", err)
	}

	if err := s.userRepo.SetOTP(ctx, user.ID, challenge); err != nil {
		return "", fmt.Errorf("failed to store OTP challenge: %w", err)
	}

	return user.ID, nil
}

// ResetPassword implements domain.AuthService. The code is consumed whether
// or not another challenge was requested later.
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, ch domain.Channel, identifier, code, newPassword string) error {
	user, err := s.findByChannel(ctx, ch, identifier)
	if err != nil {
		return err
	}

	if err := user.OTP.Accepts(code, time.Now()); err != nil {
		return err
	}

	hash, err := s.passwordSvc.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = hash
	user.OTP = nil

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("password reset", zap.String("user_id", user.ID))

	return nil
}

// GetUserProfile implements domain.AuthService
func (s *AuthServiceImpl) GetUserProfile(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

func (s *AuthServiceImpl) upsertByChannel(ctx context.Context, ch domain.Channel, identifier string) (*domain.User, error) {
	if ch == domain.ChannelEmail {
		return s.userRepo.UpsertByEmail(ctx, identifier)
	}
	return s.userRepo.UpsertByPhone(ctx, identifier)
}

func (s *AuthServiceImpl) findByChannel(ctx context.Context, ch domain.Channel, identifier string) (*domain.User, error) {
	if ch == domain.ChannelEmail {
		return s.userRepo.FindByEmail(ctx, identifier)
	}
	return s.userRepo.FindByPhone(ctx, identifier)
}
