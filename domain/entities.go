package domain

import "time"

// Role values a user record may carry.
const (
	RoleDoctor    = "doctor"
	RolePatient   = "patient"
	RoleAdmin     = "admin"
	RoleCaregiver = "caregiver"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleDoctor, RolePatient, RoleAdmin, RoleCaregiver:
		return true
	}
	return false
}

// Channel identifies how an OTP challenge is delivered.
type Channel string

const (
	ChannelMobile Channel = "mobile"
	ChannelEmail  Channel = "email"
)

// ParseChannel maps the client-facing method names (MOBILE/EMAIL) to a Channel.
func ParseChannel(method string) (Channel, bool) {
	switch method {
	case "MOBILE":
		return ChannelMobile, true
	case "EMAIL":
		return ChannelEmail, true
	}
	return "", false
}

// User is the identity record, keyed by any of phone, email or Google ID.
// Identifier fields are empty until the corresponding path has been taken;
// a record is created lazily on the first OTP send or Google sign-in.
type User struct {
	ID              string
	Name            string
	Email           string
	PhoneNumber     string
	GoogleID        string
	PasswordHash    string
	Role            string
	IsEmailVerified bool
	IsPhoneVerified bool
	OTP             *OTPChallenge
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsFullyRegistered reports whether the record has completed registration.
// Until then OTP verification routes the user back to register-finish.
func (u *User) IsFullyRegistered() bool {
	return u.Name != "" && u.PasswordHash != ""
}

// OTPChallenge is the transient one-time code attached to a user record
// while a challenge is outstanding.
type OTPChallenge struct {
	Code      string
	ExpiresAt time.Time
}

// Accepts reports whether code matches this challenge at the given instant.
// Expiry is strict: a matching code presented at or after ExpiresAt fails.
func (c *OTPChallenge) Accepts(code string, now time.Time) error {
	if c == nil || c.Code == "" || c.Code != code {
		return ErrOTPInvalid
	}
	if !now.Before(c.ExpiresAt) {
		return ErrOTPExpired
	}
	return nil
}

// AuthResult is a successful authentication outcome: the user plus a signed
// bearer token.
type AuthResult struct {
	User  *User
	Token string
}

// VerifyResult is the outcome of an OTP verification. When the record is not
// fully registered, NewUser is set and Auth is nil; the caller must route the
// user into register-finish with UserID.
type VerifyResult struct {
	NewUser bool
	UserID  string
	Auth    *AuthResult
}

// TokenClaims represents the claims carried by a bearer token.
type TokenClaims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
