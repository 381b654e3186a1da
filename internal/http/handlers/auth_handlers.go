package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ranjith-devop/smart-medication/domain"
)

// AuthHandlers handles authentication HTTP requests
type AuthHandlers struct {
	authSvc domain.AuthService
	logger  *zap.Logger
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authSvc domain.AuthService, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		authSvc: authSvc,
		logger:  logger,
	}
}

// SendMobileOTPRequest represents a mobile OTP request
type SendMobileOTPRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
}

// SendEmailOTPRequest represents an email OTP request
type SendEmailOTPRequest struct {
	Email string `json:"email" binding:"required"`
}

// VerifyMobileOTPRequest represents a mobile OTP verification
type VerifyMobileOTPRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	OTP         string `json:"otp" binding:"required"`
}

// VerifyEmailOTPRequest represents an email OTP verification
type VerifyEmailOTPRequest struct {
	Email string `json:"email" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

// FinishRegistrationRequest completes a record created via OTP
type FinishRegistrationRequest struct {
	UserID   string `json:"userId" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role,omitempty"`
}

// GoogleAuthRequest represents a Google sign-in. The idToken is carried but
// not verified here; see AuthService.GoogleAuth.
type GoogleAuthRequest struct {
	IDToken  string `json:"idToken"`
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	GoogleID string `json:"googleId" binding:"required"`
}

// LoginRequest represents a password login; identifier is phone or email
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// ForgotPasswordRequest starts a password reset
type ForgotPasswordRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Method     string `json:"method" binding:"required"`
}

// ResetPasswordRequest completes a password reset
type ResetPasswordRequest struct {
	Identifier  string `json:"identifier" binding:"required"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
	Method      string `json:"method" binding:"required"`
}

// SessionResponse is the payload returned on every successful authentication
type SessionResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Role        string `json:"role"`
	Token       string `json:"token"`
}

func sessionResponse(res *domain.AuthResult) SessionResponse {
	return SessionResponse{
		ID:          res.User.ID,
		Name:        res.User.Name,
		Email:       res.User.Email,
		PhoneNumber: res.User.PhoneNumber,
		Role:        res.User.Role,
		Token:       res.Token,
	}
}

// SendMobileOTP handles POST /api/auth/send-otp-mobile
func (h *AuthHandlers) SendMobileOTP(c *gin.Context) {
	var req SendMobileOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Phone number is required"})
		return
	}

	if err := h.authSvc.SendOTP(c.Request.Context(), domain.ChannelMobile, req.PhoneNumber); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP sent successfully"})
}

// SendEmailOTP handles POST /api/auth/send-otp-email
func (h *AuthHandlers) SendEmailOTP(c *gin.Context) {
	var req SendEmailOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email is required"})
		return
	}

	if err := h.authSvc.SendOTP(c.Request.Context(), domain.ChannelEmail, req.Email); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP sent to email"})
}

// VerifyMobileOTP handles POST /api/auth/verify-otp-mobile
func (h *AuthHandlers) VerifyMobileOTP(c *gin.Context) {
	var req VerifyMobileOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Phone number and OTP are required"})
		return
	}

	h.verify(c, domain.ChannelMobile, req.PhoneNumber, req.OTP)
}

// VerifyEmailOTP handles POST /api/auth/verify-otp-email
func (h *AuthHandlers) VerifyEmailOTP(c *gin.Context) {
	var req VerifyEmailOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and OTP are required"})
		return
	}

	h.verify(c, domain.ChannelEmail, req.Email, req.OTP)
}

func (h *AuthHandlers) verify(c *gin.Context, ch domain.Channel, identifier, code string) {
	result, err := h.authSvc.VerifyOTP(c.Request.Context(), ch, identifier, code)
	if err != nil {
		h.fail(c, err)
		return
	}

	if result.NewUser {
		c.JSON(http.StatusOK, gin.H{
			"message":   "OTP Verified",
			"isNewUser": true,
			"id":        result.UserID,
		})
		return
	}

	c.JSON(http.StatusOK, sessionResponse(result.Auth))
}

// FinishRegistration handles POST /api/auth/register-finish
func (h *AuthHandlers) FinishRegistration(c *gin.Context) {
	var req FinishRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name and password are required"})
		return
	}

	result, err := h.authSvc.FinishRegistration(c.Request.Context(), req.UserID, req.Name, req.Password, req.Role)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse(result))
}

// GoogleAuth handles POST /api/auth/google
func (h *AuthHandlers) GoogleAuth(c *gin.Context) {
	var req GoogleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email, name and googleId are required"})
		return
	}

	result, err := h.authSvc.GoogleAuth(c.Request.Context(), req.Email, req.Name, req.GoogleID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse(result))
}

// Login handles POST /api/auth/login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide identifier and password"})
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse(result))
}

// ForgotPassword handles POST /api/auth/forgot-password
func (h *AuthHandlers) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Identifier and method are required"})
		return
	}

	ch, ok := domain.ParseChannel(req.Method)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Method must be MOBILE or EMAIL"})
		return
	}

	userID, err := h.authSvc.ForgotPassword(c.Request.Context(), ch, req.Identifier)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password reset OTP sent successfully",
		"userId":  userID,
	})
}

// ResetPassword handles POST /api/auth/reset-password
func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "All fields are required"})
		return
	}

	ch, ok := domain.ParseChannel(req.Method)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Method must be MOBILE or EMAIL"})
		return
	}

	if err := h.authSvc.ResetPassword(c.Request.Context(), ch, req.Identifier, req.OTP, req.NewPassword); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password reset successfully",
		"success": true,
	})
}

// Me handles GET /api/auth/me (requires authentication)
func (h *AuthHandlers) Me(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User ID not found in context"})
		return
	}

	user, err := h.authSvc.GetUserProfile(c.Request.Context(), userID.(string))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":              user.ID,
		"name":            user.Name,
		"email":           user.Email,
		"phoneNumber":     user.PhoneNumber,
		"role":            user.Role,
		"isEmailVerified": user.IsEmailVerified,
		"isPhoneVerified": user.IsPhoneVerified,
		"createdAt":       user.CreatedAt,
	})
}

// fail maps service errors onto the response taxonomy. Anything not
// recognized is a server fault and leaks no detail.
func (h *AuthHandlers) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrOTPInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid OTP"})
	case errors.Is(err, domain.ErrOTPExpired):
		c.JSON(http.StatusBadRequest, gin.H{"message": "OTP expired"})
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
	case errors.Is(err, domain.ErrRegistrationIncomplete):
		c.JSON(http.StatusBadRequest, gin.H{
			"message":              "Please complete registration first",
			"requiresRegistration": true,
		})
	case errors.Is(err, domain.ErrIdentifierInUse):
		c.JSON(http.StatusConflict, gin.H{"message": "Identifier already in use"})
	case errors.Is(err, domain.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid role"})
	default:
		h.logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
	}
}
