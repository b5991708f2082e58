package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"    validate:"required"`
	OTP      OTPConfig      `mapstructure:"otp"      validate:"required"`
	Mail     MailConfig     `mapstructure:"mail"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    validate:"gt=0"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"     validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"               validate:"required,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"    validate:"gte=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    validate:"gte=0,ltefield=MaxOpenConns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"              validate:"required,min=32"`
	BCryptCost           int    `mapstructure:"bcrypt_cost"             validate:"gte=4,lte=31"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes"  validate:"gt=0"`
	RefreshLifetimeHours int    `mapstructure:"refresh_lifetime_hours"  validate:"gt=0"`
}

// AccessLifetime returns the configured access-token lifetime.
func (a AuthConfig) AccessLifetime() time.Duration {
	return time.Duration(a.TokenLifetimeMinutes) * time.Minute
}

// RefreshLifetime returns the configured refresh-token lifetime.
func (a AuthConfig) RefreshLifetime() time.Duration {
	return time.Duration(a.RefreshLifetimeHours) * time.Hour
}

// RedisConfig contains the connection settings for the login-code store.
type RedisConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// DefaultOTPLockout is the lockout window used when none is configured.
const DefaultOTPLockout = 15 * time.Minute

// OTPConfig controls one-time login codes. Once MaxAttempts failures are
// recorded for a phone number, no code is issued or accepted for it until
// the lockout window that started with the first failure has passed.
type OTPConfig struct {
	TTLSeconds     int `mapstructure:"ttl_seconds"     validate:"gt=0"`
	MaxAttempts    int `mapstructure:"max_attempts"    validate:"gt=0"`
	LockoutSeconds int `mapstructure:"lockout_seconds" validate:"gte=0"`
}

// TTL returns the login-code lifetime.
func (o OTPConfig) TTL() time.Duration {
	return time.Duration(o.TTLSeconds) * time.Second
}

// LockoutWindow returns how long failed attempts are remembered.
func (o OTPConfig) LockoutWindow() time.Duration {
	if o.LockoutSeconds <= 0 {
		return DefaultOTPLockout
	}
	return time.Duration(o.LockoutSeconds) * time.Second
}

// MailConfig holds outbound email settings. With no API key the server
// logs login codes instead of sending them.
type MailConfig struct {
	SendGridAPIKey string `mapstructure:"sendgrid_api_key"`
	FromAddress    string `mapstructure:"from_address"     validate:"required_with=SendGridAPIKey,omitempty,email"`
	FromName       string `mapstructure:"from_name"`
}
