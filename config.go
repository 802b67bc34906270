package fixauth

import (
	"errors"
	"time"
)

// Config carries every tunable of the authentication engine. Instances are
// set up once before [Builder.Build] and treated as immutable afterwards.
type Config struct {
	JWT      JWTConfig
	TOTP     TOTPConfig
	Password PasswordConfig
	Seed     SeedCipherConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig configures the dual-secret token issuer. Access and refresh
// tokens are signed with distinct secrets so a compromise of one kind does
// not expose the other.
type JWTConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	// Refresh lifetimes differ by principal class: admins rotate weekly,
	// end users monthly.
	AdminRefreshTTL time.Duration
	UserRefreshTTL  time.Duration
	Issuer          string
}

/*
====================================
TOTP CONFIG
====================================
*/

// TOTPConfig configures second-factor code generation and verification.
// Skew is counted in time steps; the default of 5 steps on a 30-second
// period gives the deliberate ±150 s drift tolerance.
type TOTPConfig struct {
	Issuer    string
	Digits    int
	Period    int
	Skew      int
	Algorithm string // SHA1 (default), SHA256, SHA512

	// Attempt limiting for submitted codes. Requires a Redis client on the
	// builder; with no Redis the limiter is disabled.
	MaxAttempts     int
	AttemptCooldown time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig configures hashing cost and generated temporary passwords.
type PasswordConfig struct {
	Cost            int
	GeneratedLength int
}

// SeedCipherConfig holds the server-side key protecting TOTP seeds at rest.
// The key must be exactly 32 bytes (AES-256-GCM).
type SeedCipherConfig struct {
	Key []byte
}

// AuditConfig configures the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull sheds events under backpressure instead of blocking the
	// request path; drops are counted and exported.
	DropIfFull bool
}

// MetricsConfig enables the engine's internal counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the production policy: 1-day access tokens, 7-day
// admin / 30-day user refresh tokens, 6-digit SHA1 TOTP at a 30-second
// period with ±5 steps of tolerance, bcrypt cost 10, and 10-character
// generated passwords.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:       24 * time.Hour,
			AdminRefreshTTL: 7 * 24 * time.Hour,
			UserRefreshTTL:  30 * 24 * time.Hour,
			Issuer:          "FixACareer",
		},
		TOTP: TOTPConfig{
			Issuer:          "FixACareer",
			Digits:          6,
			Period:          30,
			Skew:            5,
			Algorithm:       "SHA1",
			MaxAttempts:     5,
			AttemptCooldown: time.Minute,
		},
		Password: PasswordConfig{
			Cost:            10,
			GeneratedLength: 10,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func (c *Config) validate() error {
	if len(c.JWT.AccessSecret) == 0 || len(c.JWT.RefreshSecret) == 0 {
		return errors.New("jwt secrets are required")
	}
	if string(c.JWT.AccessSecret) == string(c.JWT.RefreshSecret) {
		return errors.New("access and refresh secrets must differ")
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.AdminRefreshTTL <= 0 || c.JWT.UserRefreshTTL <= 0 {
		return errors.New("invalid TTL configuration")
	}
	if c.TOTP.Digits < 6 || c.TOTP.Digits > 10 {
		return errors.New("totp digits must be between 6 and 10")
	}
	if c.TOTP.Period <= 0 {
		return errors.New("totp period must be positive")
	}
	if c.TOTP.Skew < 0 {
		return errors.New("totp skew must not be negative")
	}
	if len(c.Seed.Key) != 32 {
		return errors.New("seed cipher key must be 32 bytes")
	}
	if c.Password.Cost < 4 || c.Password.Cost > 31 {
		return errors.New("invalid bcrypt cost")
	}
	if c.Password.GeneratedLength < 8 {
		return errors.New("generated passwords must be at least 8 characters")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.AccessSecret = append([]byte(nil), cfg.JWT.AccessSecret...)
	out.JWT.RefreshSecret = append([]byte(nil), cfg.JWT.RefreshSecret...)
	out.Seed.Key = append([]byte(nil), cfg.Seed.Key...)
	return out
}
