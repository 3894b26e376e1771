package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, DriverSQLite, c.DatabaseDriver)
	assert.Equal(t, "eventhub.db", c.DatabaseDSN)
	assert.Empty(t, c.SecretKey, "no secret may ship as a default")
	assert.Equal(t, DefaultIssuer, c.Issuer)
	assert.Equal(t, 60*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, 7*24*time.Hour, c.RefreshTokenValidityDuration)
	assert.Equal(t, 10, c.BcryptCost)
	assert.Equal(t, 5, c.LoginMaxAttempts)
	assert.Equal(t, 15*time.Minute, c.LoginAttemptWindow)
	assert.Equal(t, "info", c.LogLevel)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		var c Config
		c.LoadDefaults()
		c.SecretKey = "s3cr3t"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "ok", mutate: func(c *Config) {}},
		{name: "missing secret", mutate: func(c *Config) { c.SecretKey = "" }, wantErr: "secret key is not configured"},
		{name: "missing issuer", mutate: func(c *Config) { c.Issuer = "" }, wantErr: "issuer is not configured"},
		{name: "audience validation without audience", mutate: func(c *Config) { c.ValidateAudience = true }, wantErr: "audience validation enabled"},
		{name: "zero access ttl", mutate: func(c *Config) { c.AccessTokenValidityDuration = 0 }, wantErr: "invalid access token validity"},
		{name: "negative refresh ttl", mutate: func(c *Config) { c.RefreshTokenValidityDuration = -time.Minute }, wantErr: "invalid refresh token validity"},
		{name: "unknown driver", mutate: func(c *Config) { c.DatabaseDriver = "oracle" }, wantErr: "unsupported database driver"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig_UsesDefaultsWithoutOverrides(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	c, err := LoadConfig()
	require.NoError(t, err)
	require.NotNil(t, c, "LoadConfig must not return nil")

	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
	assert.Equal(t, 60*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, 7*24*time.Hour, c.RefreshTokenValidityDuration)
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempFile(t, "cfg.json", `{"secret_key":"from-file","issuer":"file-issuer","endpoint_addr_http":":7000"}`)
	t.Setenv(EnvPrefix+"ISSUER", "env-issuer")
	os.Args = []string{"testbin", "-c", path, "-a", ":9000"}

	c, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "from-file", c.SecretKey)
	assert.Equal(t, "env-issuer", c.Issuer, "env overrides file")
	assert.Equal(t, ":9000", c.EndpointAddrHTTP, "flags override file")
	require.NoError(t, c.Validate())
}
