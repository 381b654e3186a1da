package domain

import "context"

// UserRepository defines user data access operations
type UserRepository interface {
	// UpsertByPhone and UpsertByEmail atomically find-or-create the record
	// holding the given identifier and return it. Concurrent calls for the
	// same identifier converge on a single record.
	UpsertByPhone(ctx context.Context, phone string) (*User, error)
	UpsertByEmail(ctx context.Context, email string) (*User, error)

	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByPhone(ctx context.Context, phone string) (*User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*User, error)
	// FindByIdentifier matches either the phone or the email field.
	FindByIdentifier(ctx context.Context, identifier string) (*User, error)

	// SetOTP replaces the outstanding challenge. Last writer wins.
	SetOTP(ctx context.Context, id string, otp *OTPChallenge) error
	// MarkVerified sets the verified flag for the channel and clears the
	// outstanding challenge.
	MarkVerified(ctx context.Context, id string, ch Channel) error
	Update(ctx context.Context, user *User) error
}

// AuthService defines the authentication state machine. All state lives in
// the user repository; every call is independent.
type AuthService interface {
	SendOTP(ctx context.Context, ch Channel, identifier string) error
	VerifyOTP(ctx context.Context, ch Channel, identifier, code string) (*VerifyResult, error)
	FinishRegistration(ctx context.Context, userID, name, password, role string) (*AuthResult, error)
	GoogleAuth(ctx context.Context, email, name, googleID string) (*AuthResult, error)
	Login(ctx context.Context, identifier, password string) (*AuthResult, error)
	ForgotPassword(ctx context.Context, ch Channel, identifier string) (string, error)
	ResetPassword(ctx context.Context, ch Channel, identifier, code, newPassword string) error
	GetUserProfile(ctx context.Context, userID string) (*User, error)
}

// OTPService defines OTP issuance. Issue generates a code, delivers it over
// the channel and returns the challenge to persist. A delivery failure means
// no challenge is returned and nothing may be persisted.
type OTPService interface {
	Issue(ctx context.Context, ch Channel, address string) (*OTPChallenge, error)
}

// PasswordService defines password operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService defines bearer token operations
type TokenService interface {
	Generate(userID, role string) (string, error)
	Validate(token string) (*TokenClaims, error)
}

// NotificationService defines delivery of OTP codes and other messages
type NotificationService interface {
	SendSMS(to, message string) error
	SendEmail(to, subject, body string) error
}
