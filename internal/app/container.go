package app

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/ranjith-devop/smart-medication/domain"
	"github.com/ranjith-devop/smart-medication/internal/config"
	"github.com/ranjith-devop/smart-medication/internal/infrastructure/auth"
	"github.com/ranjith-devop/smart-medication/internal/infrastructure/database"
	"github.com/ranjith-devop/smart-medication/internal/infrastructure/notifications"
	"github.com/ranjith-devop/smart-medication/internal/infrastructure/repositories"
	"github.com/ranjith-devop/smart-medication/internal/logger"
	"github.com/ranjith-devop/smart-medication/internal/services"
)

// Container holds all dependencies
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Mongo *mongo.Client

	UserRepo domain.UserRepository

	PasswordSvc     domain.PasswordService
	TokenSvc        domain.TokenService
	NotificationSvc domain.NotificationService
	OTPSvc          domain.OTPService
	AuthSvc         domain.AuthService
}

// NewContainer creates and initializes all dependencies
func NewContainer(cfg *config.Config) (*Container, error) {
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		return nil, err
	}

	users := client.Database(cfg.MongoDatabase).Collection("users")
	if err := database.EnsureUserIndexes(context.Background(), users); err != nil {
		return nil, err
	}

	c := &Container{
		Config: cfg,
		Logger: log,
		Mongo:  client,
	}

	c.UserRepo = repositories.NewUserRepository(users)

	c.PasswordSvc = auth.NewPasswordService()
	c.TokenSvc = auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	c.NotificationSvc = notifications.NewService(
		cfg.TwilioSID,
		cfg.TwilioToken,
		cfg.TwilioFrom,
		cfg.MailerKey,
		cfg.MailerName,
		cfg.MailerFrom,
	)
	c.OTPSvc = services.NewOTPService(c.NotificationSvc, cfg.OTPTTL, log)
	c.AuthSvc = services.NewAuthService(c.UserRepo, c.PasswordSvc, c.TokenSvc, c.OTPSvc, log)

	return c, nil
}

// Close closes all connections
func (c *Container) Close() error {
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
	if c.Mongo != nil {
		return c.Mongo.Disconnect(context.Background())
	}
	return nil
}
