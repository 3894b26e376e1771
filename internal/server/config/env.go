package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/eventhub/internal/flagx"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by parseEnv.
const EnvPrefix = "EVENTHUB_"

// defaultEnvFile is loaded when present and -env is not given.
const defaultEnvFile = ".env"

// parseEnv loads a dotenv file (the -env flag or ./.env when it exists) and
// then overlays EVENTHUB_* variables onto config. Variables that are already
// set in the process environment take precedence over the dotenv file.
func parseEnv(config *Config) error {
	path := flagx.EnvFileFlag()
	if path == "" {
		path = defaultEnvFile
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
	}
	return applyEnv(config, os.LookupEnv)
}

func applyEnv(c *Config, lookup func(string) (string, bool)) error {
	var errs []error

	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	integer := func(name string, dst *int) {
		if v, ok := lookup(EnvPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	float := func(name string, dst *float64) {
		if v, ok := lookup(EnvPrefix + name); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = f
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(EnvPrefix + name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = b
		}
	}
	duration := func(name string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = d
		}
	}

	str("HTTP_ADDR", &c.EndpointAddrHTTP)
	str("GRPC_ADDR", &c.EndpointAddrGRPC)
	str("DATABASE_DRIVER", &c.DatabaseDriver)
	str("DATABASE_DSN", &c.DatabaseDSN)
	str("SECRET_KEY", &c.SecretKey)
	str("ISSUER", &c.Issuer)
	str("AUDIENCE", &c.Audience)
	boolean("VALIDATE_AUDIENCE", &c.ValidateAudience)
	duration("ACCESS_TOKEN_TTL", &c.AccessTokenValidityDuration)
	duration("REFRESH_TOKEN_TTL", &c.RefreshTokenValidityDuration)
	integer("BCRYPT_COST", &c.BcryptCost)
	str("REDIS_ADDR", &c.RedisAddr)
	integer("LOGIN_MAX_ATTEMPTS", &c.LoginMaxAttempts)
	duration("LOGIN_ATTEMPT_WINDOW", &c.LoginAttemptWindow)
	float("RATE_LIMIT_RPS", &c.RateLimitRPS)
	integer("RATE_LIMIT_BURST", &c.RateLimitBurst)
	str("S3_ROOT_USER", &c.S3RootUser)
	str("S3_ROOT_PASSWORD", &c.S3RootPassword)
	str("S3_BUCKET", &c.S3Bucket)
	str("S3_REGION", &c.S3Region)
	str("S3_BASE_ENDPOINT", &c.S3BaseEndpoint)
	str("NATS_URL", &c.NATSURL)
	str("SENDGRID_API_KEY", &c.SendGridAPIKey)
	str("MAIL_FROM", &c.MailFrom)
	str("LOG_LEVEL", &c.LogLevel)

	return errors.Join(errs...)
}
