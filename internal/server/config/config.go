// Package config handles configuration for the eventhub server, including
// defaults, a JSON or YAML file overlay, environment variables and
// command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds runtime settings for the eventhub server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the public REST API.
//   - EndpointAddrGRPC: bind address for the gRPC health service ("" disables it).
//   - DatabaseDriver / DatabaseDSN: "postgres" (pgx) or "sqlite" and its DSN.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Required, there is no default.
//   - Issuer / Audience / ValidateAudience: JWT iss/aud claims and whether aud is checked.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - BcryptCost: work factor for password hashes.
//   - RedisAddr / LoginMaxAttempts / LoginAttemptWindow: failed-login throttling.
//   - RateLimitRPS / RateLimitBurst: per-client HTTP rate limit (0 disables it).
//   - S3*: object storage settings for event images ("" bucket disables uploads).
//   - NATSURL: broker for domain notifications ("" disables publishing).
//   - SendGridAPIKey / MailFrom: owner e-mail notifications ("" key disables them).
type Config struct {
	EndpointAddrHTTP             string
	EndpointAddrGRPC             string
	DatabaseDriver               string
	DatabaseDSN                  string
	SecretKey                    string
	Issuer                       string
	Audience                     string
	ValidateAudience             bool
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
	BcryptCost                   int
	RedisAddr                    string
	LoginMaxAttempts             int
	LoginAttemptWindow           time.Duration
	RateLimitRPS                 float64
	RateLimitBurst               int
	S3RootUser                   string
	S3RootPassword               string
	S3Bucket                     string
	S3Region                     string
	S3BaseEndpoint               string
	NATSURL                      string
	SendGridAPIKey               string
	MailFrom                     string
	LogLevel                     string
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DefaultIssuer is the development issuer; deployments should set their own.
const DefaultIssuer = "eventhub"

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey deliberately stays empty and must be configured.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDriver = DriverSQLite
	c.DatabaseDSN = "eventhub.db"
	c.Issuer = DefaultIssuer
	c.AccessTokenValidityDuration = 60 * time.Minute
	c.RefreshTokenValidityDuration = 7 * 24 * time.Hour
	c.BcryptCost = 10
	c.LoginMaxAttempts = 5
	c.LoginAttemptWindow = 15 * time.Minute
	c.RateLimitRPS = 20
	c.RateLimitBurst = 40
	c.S3Region = "us-east-1"
	c.MailFrom = "no-reply@eventhub.local"
	c.LogLevel = "info"
}

// Validate reports configuration that must stop the server from starting.
func (c *Config) Validate() error {
	var errs []error
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is not configured"))
	}
	if c.Issuer == "" {
		errs = append(errs, errors.New("issuer is not configured"))
	}
	if c.ValidateAudience && c.Audience == "" {
		errs = append(errs, errors.New("audience validation enabled without audience"))
	}
	if c.AccessTokenValidityDuration <= 0 {
		errs = append(errs, fmt.Errorf("invalid access token validity %v", c.AccessTokenValidityDuration))
	}
	if c.RefreshTokenValidityDuration <= 0 {
		errs = append(errs, fmt.Errorf("invalid refresh token validity %v", c.RefreshTokenValidityDuration))
	}
	if c.DatabaseDriver != DriverPostgres && c.DatabaseDriver != DriverSQLite {
		errs = append(errs, fmt.Errorf("unsupported database driver %q", c.DatabaseDriver))
	}
	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON/YAML file, the environment, and finally from
// command-line flags.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
