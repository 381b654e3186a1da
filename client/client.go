// Package client is the Go SDK for the SmartMeds auth service. It mirrors
// the server's endpoint surface one method per operation and keeps the
// caller's session in a SessionStore.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx response decoded into the service's error shape.
type APIError struct {
	StatusCode           int    `json:"-"`
	Message              string `json:"message"`
	RequiresRegistration bool   `json:"requiresRegistration"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Session is the payload returned on every successful authentication.
type Session struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Role        string `json:"role"`
	Token       string `json:"token"`
}

// VerifyOutcome is the result of an OTP verification. Either Session is set
// (the record already finished registration) or NewUser is true and UserID
// carries the id to pass to FinishRegistration.
type VerifyOutcome struct {
	NewUser bool
	UserID  string
	Session *Session
}

// Profile is the authenticated user's view of their own record.
type Profile struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	PhoneNumber     string    `json:"phoneNumber"`
	Role            string    `json:"role"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	IsPhoneVerified bool      `json:"isPhoneVerified"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Client talks to the auth service. The zero value is not usable; construct
// with New.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient supplies a custom http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// New creates a client for the service at baseURL. Requests carry a timeout
// so a dead server never hangs the caller.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendMobileOTP requests a verification code by SMS.
func (c *Client) SendMobileOTP(ctx context.Context, phoneNumber string) error {
	return c.post(ctx, "/api/auth/send-otp-mobile", map[string]string{
		"phoneNumber": phoneNumber,
	}, nil)
}

// SendEmailOTP requests a verification code by email.
func (c *Client) SendEmailOTP(ctx context.Context, email string) error {
	return c.post(ctx, "/api/auth/send-otp-email", map[string]string{
		"email": email,
	}, nil)
}

// VerifyMobileOTP submits a code received by SMS.
func (c *Client) VerifyMobileOTP(ctx context.Context, phoneNumber, code string) (*VerifyOutcome, error) {
	return c.verify(ctx, "/api/auth/verify-otp-mobile", map[string]string{
		"phoneNumber": phoneNumber,
		"otp":         code,
	})
}

// VerifyEmailOTP submits a code received by email.
func (c *Client) VerifyEmailOTP(ctx context.Context, email, code string) (*VerifyOutcome, error) {
	return c.verify(ctx, "/api/auth/verify-otp-email", map[string]string{
		"email": email,
		"otp":   code,
	})
}

func (c *Client) verify(ctx context.Context, path string, body map[string]string) (*VerifyOutcome, error) {
	var raw struct {
		Session
		IsNewUser bool `json:"isNewUser"`
	}
	if err := c.post(ctx, path, body, &raw); err != nil {
		return nil, err
	}

	if raw.IsNewUser {
		return &VerifyOutcome{NewUser: true, UserID: raw.ID}, nil
	}
	session := raw.Session
	return &VerifyOutcome{UserID: session.ID, Session: &session}, nil
}

// FinishRegistration completes a record created by OTP verification. Role
// may be empty to keep the server default.
func (c *Client) FinishRegistration(ctx context.Context, userID, name, password, role string) (*Session, error) {
	body := map[string]string{
		"userId":   userID,
		"name":     name,
		"password": password,
	}
	if role != "" {
		body["role"] = role
	}
	var session Session
	if err := c.post(ctx, "/api/auth/register-finish", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GoogleAuth signs in with a Google account.
func (c *Client) GoogleAuth(ctx context.Context, idToken, email, name, googleID string) (*Session, error) {
	var session Session
	err := c.post(ctx, "/api/auth/google", map[string]string{
		"idToken":  idToken,
		"email":    email,
		"name":     name,
		"googleId": googleID,
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Login authenticates with a phone number or email plus password.
func (c *Client) Login(ctx context.Context, identifier, password string) (*Session, error) {
	var session Session
	err := c.post(ctx, "/api/auth/login", map[string]string{
		"identifier": identifier,
		"password":   password,
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ForgotPassword starts a password reset over the given method ("MOBILE" or
// "EMAIL") and returns the user id the reset applies to.
func (c *Client) ForgotPassword(ctx context.Context, identifier, method string) (string, error) {
	var resp struct {
		UserID string `json:"userId"`
	}
	err := c.post(ctx, "/api/auth/forgot-password", map[string]string{
		"identifier": identifier,
		"method":     method,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.UserID, nil
}

// ResetPassword completes a password reset with the code from ForgotPassword.
func (c *Client) ResetPassword(ctx context.Context, identifier, code, newPassword, method string) error {
	return c.post(ctx, "/api/auth/reset-password", map[string]string{
		"identifier":  identifier,
		"otp":         code,
		"newPassword": newPassword,
		"method":      method,
	}, nil)
}

// Me fetches the profile for the given bearer token.
func (c *Client) Me(ctx context.Context, token string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var profile Profile
	if err := c.do(req, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr := json.NewDecoder(resp.Body).Decode(apiErr); decodeErr != nil {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
