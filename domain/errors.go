package domain

import "errors"

// Authentication errors
var (
	ErrUserNotFound           = errors.New("user not found")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrRegistrationIncomplete = errors.New("registration not completed")
	ErrIdentifierInUse        = errors.New("identifier already in use")
	ErrInvalidRole            = errors.New("invalid role")
)

// OTP errors
var (
	ErrOTPInvalid = errors.New("invalid otp code")
	ErrOTPExpired = errors.New("otp has expired")
)

// Token errors
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")
)
