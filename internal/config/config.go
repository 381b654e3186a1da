package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port    int    `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
	TTL    string `yaml:"ttl"`
}

type OTPConfig struct {
	TTL string `yaml:"ttl"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type MailerSendConfig struct {
	APIKey    string `yaml:"api_key"`
	FromName  string `yaml:"from_name"`
	FromEmail string `yaml:"from_email"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type ConfigFile struct {
	App        AppConfig        `yaml:"app"`
	Mongo      MongoConfig      `yaml:"mongo"`
	JWT        JWTConfig        `yaml:"jwt"`
	OTP        OTPConfig        `yaml:"otp"`
	Twilio     TwilioConfig     `yaml:"twilio"`
	MailerSend MailerSendConfig `yaml:"mailersend"`
	Log        LogConfig        `yaml:"log"`
}

type Config struct {
	Port          string
	GinMode       string
	MongoURI      string
	MongoDatabase string
	JWTSecret     string
	JWTIssuer     string
	JWTTTL        time.Duration
	OTPTTL        time.Duration
	TwilioSID     string
	TwilioToken   string
	TwilioFrom    string
	MailerKey     string
	MailerName    string
	MailerFrom    string
	LogLevel      string
	LogFormat     string
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func Load() (*Config, error) {
	// .env is optional; real environment variables win over both it and the
	// yaml file for secrets.
	_ = godotenv.Load()

	configFile, err := loadConfigFile(env("CONFIG_PATH", "config/config.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	jwtTTL, err := time.ParseDuration(configFile.JWT.TTL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT TTL: %w", err)
	}

	otpTTL, err := time.ParseDuration(configFile.OTP.TTL)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP TTL: %w", err)
	}

	return &Config{
		Port:          fmt.Sprintf("%d", configFile.App.Port),
		GinMode:       configFile.App.GinMode,
		MongoURI:      env("MONGO_URI", configFile.Mongo.URI),
		MongoDatabase: env("MONGO_DATABASE", configFile.Mongo.Database),
		JWTSecret:     env("JWT_SECRET", configFile.JWT.Secret),
		JWTIssuer:     configFile.JWT.Issuer,
		JWTTTL:        jwtTTL,
		OTPTTL:        otpTTL,
		TwilioSID:     env("TWILIO_ACCOUNT_SID", configFile.Twilio.AccountSID),
		TwilioToken:   env("TWILIO_AUTH_TOKEN", configFile.Twilio.AuthToken),
		TwilioFrom:    env("TWILIO_FROM_NUMBER", configFile.Twilio.FromNumber),
		MailerKey:     env("MAILERSEND_API_KEY", configFile.MailerSend.APIKey),
		MailerName:    configFile.MailerSend.FromName,
		MailerFrom:    env("MAILER_FROM", configFile.MailerSend.FromEmail),
		LogLevel:      configFile.Log.Level,
		LogFormat:     configFile.Log.Format,
	}, nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}
