package httpx

import (
	"github.com/gin-gonic/gin"

	"github.com/ranjith-devop/smart-medication/internal/http/handlers"
	"github.com/ranjith-devop/smart-medication/internal/http/middleware"
)

func BuildRouter(ah *handlers.AuthHandlers, jwtmw *middleware.AuthMW) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	auth := r.Group("/api/auth")
	auth.POST("/send-otp-mobile", ah.SendMobileOTP)
	auth.POST("/verify-otp-mobile", ah.VerifyMobileOTP)
	auth.POST("/send-otp-email", ah.SendEmailOTP)
	auth.POST("/verify-otp-email", ah.VerifyEmailOTP)
	auth.POST("/register-finish", ah.FinishRegistration)
	auth.POST("/google", ah.GoogleAuth)
	auth.POST("/login", ah.Login)
	auth.POST("/forgot-password", ah.ForgotPassword)
	auth.POST("/reset-password", ah.ResetPassword)

	auth.GET("/me", jwtmw.WithJWT(), ah.Me)

	return r
}
