package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/eventhub/internal/common"
	"github.com/dmitrijs2005/eventhub/internal/logging"
	"github.com/dmitrijs2005/eventhub/internal/server/auth"
	"github.com/dmitrijs2005/eventhub/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLimiter counts failures in memory.
type fakeLimiter struct {
	max      int
	failures map[string]int
	allowErr error
	resets   int
}

func newFakeLimiter(max int) *fakeLimiter {
	return &fakeLimiter{max: max, failures: map[string]int{}}
}

func (f *fakeLimiter) Allow(_ context.Context, key string) (bool, error) {
	if f.allowErr != nil {
		return false, f.allowErr
	}
	return f.failures[key] < f.max, nil
}

func (f *fakeLimiter) Fail(_ context.Context, key string) error {
	f.failures[key]++
	return nil
}

func (f *fakeLimiter) Reset(_ context.Context, key string) error {
	delete(f.failures, key)
	f.resets++
	return nil
}

func TestRegister_Success(t *testing.T) {
	env := newTestEnv(t)

	u, err := env.users.Register(context.Background(), "a@example.com", "Secret1!", "")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "a@example.com", u.Email)
	assert.Equal(t, "a@example.com", u.UserName, "username defaults to the email")
	assert.NotEqual(t, "Secret1!", u.PasswordHash)
	assert.True(t, env.hasher.Verify("Secret1!", u.PasswordHash))
}

func TestRegister_LongPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	password := strings.Repeat("x", 80)

	_, err := env.users.Register(ctx, "long@example.com", password, "")
	require.NoError(t, err)

	pair, err := env.users.Login(ctx, "long@example.com", password)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	_, err = env.users.Login(ctx, "long@example.com", strings.Repeat("x", 79)+"y")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		email    string
		password string
		msg      string
	}{
		{"empty email", "", "Secret1!", "Invalid email address."},
		{"not an address", "alice", "Secret1!", "Invalid email address."},
		{"display name form", "Alice <a@example.com>", "Secret1!", "Invalid email address."},
		{"short password", "a@example.com", "12345", "Password must be at least 6 characters long."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.users.Register(context.Background(), tt.email, tt.password, "")
			require.ErrorIs(t, err, common.ErrorValidation)
			assert.EqualError(t, err, tt.msg)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "alice")

	_, err := env.users.Register(context.Background(), "alice@example.com", "Secret1!", "other")
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestLogin_IssuesVerifiableTokens(t *testing.T) {
	env := newTestEnv(t)
	_, u := env.signup(t, "alice")

	pair, err := env.users.Login(context.Background(), "alice@example.com", "Secret1!")
	require.NoError(t, err)

	claims, err := env.tokens.ValidateAccessToken(pair.AccessToken, false)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Subject)
	assert.Equal(t, "alice", claims.UserName)

	var stored models.User
	require.NoError(t, env.db.First(&stored, "id = ?", u.ID).Error)
	require.NotNil(t, stored.RefreshToken)
	require.NotNil(t, stored.RefreshTokenExpiresAt)
	assert.Equal(t, auth.HashRefreshToken(pair.RefreshToken), *stored.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(env.cfg.RefreshTokenValidityDuration), *stored.RefreshTokenExpiresAt, time.Minute)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "alice")

	_, err := env.users.Login(context.Background(), "alice@example.com", "wrong-password")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = env.users.Login(context.Background(), "nobody@example.com", "Secret1!")
	require.ErrorIs(t, err, common.ErrInvalidCredentials, "unknown email looks like a bad password")
}

func TestLogin_Throttled(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "alice")
	limiter := newFakeLimiter(2)
	svc := NewUserService(env.db, env.m, env.hasher, env.tokens, limiter, env.cfg, logging.Nop{})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Login(ctx, "alice@example.com", "wrong")
		require.ErrorIs(t, err, common.ErrInvalidCredentials)
	}

	_, err := svc.Login(ctx, "alice@example.com", "Secret1!")
	require.ErrorIs(t, err, common.ErrTooManyAttempts, "correct password is refused while locked out")

	delete(limiter.failures, "alice@example.com")
	_, err = svc.Login(ctx, "alice@example.com", "Secret1!")
	require.NoError(t, err)
	assert.Equal(t, 1, limiter.resets)
}

func TestLogin_UnknownEmailCountsAsFailure(t *testing.T) {
	env := newTestEnv(t)
	limiter := newFakeLimiter(5)
	svc := NewUserService(env.db, env.m, env.hasher, env.tokens, limiter, env.cfg, logging.Nop{})

	_, err := svc.Login(context.Background(), "ghost@example.com", "whatever")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
	assert.Equal(t, 1, limiter.failures["ghost@example.com"])
}

func TestLogin_LimiterUnavailableFailsOpen(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "alice")
	limiter := newFakeLimiter(1)
	limiter.allowErr = errors.New("redis down")
	svc := NewUserService(env.db, env.m, env.hasher, env.tokens, limiter, env.cfg, logging.Nop{})

	_, err := svc.Login(context.Background(), "alice@example.com", "Secret1!")
	require.NoError(t, err)
}

func TestRefresh_RotatesTokens(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "alice")
	ctx := context.Background()

	first, err := env.users.Login(ctx, "alice@example.com", "Secret1!")
	require.NoError(t, err)

	second, err := env.users.Refresh(ctx, first.AccessToken, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	_, err = env.tokens.ValidateAccessToken(second.AccessToken, false)
	require.NoError(t, err)

	// the rotated-out token is dead
	_, err = env.users.Refresh(ctx, first.AccessToken, first.RefreshToken)
	require.ErrorIs(t, err, common.ErrInvalidToken)

	_, err = env.users.Refresh(ctx, second.AccessToken, second.RefreshToken)
	require.NoError(t, err)
}

func TestRefresh_AcceptsExpiredAccessToken(t *testing.T) {
	env := newTestEnv(t)
	_, u := env.signup(t, "alice")
	ctx := context.Background()

	pair, err := env.users.Login(ctx, "alice@example.com", "Secret1!")
	require.NoError(t, err)

	expired := signClaims(t, env, u, time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour))
	_, err = env.tokens.ValidateAccessToken(expired, false)
	require.ErrorIs(t, err, common.ErrTokenExpired)

	_, err = env.users.Refresh(ctx, expired, pair.RefreshToken)
	require.NoError(t, err)
}

func TestRefresh_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, env *testEnv, u *models.User, pair *TokenPair) (access, refresh string)
	}{
		{
			name: "wrong refresh token",
			mutate: func(t *testing.T, env *testEnv, u *models.User, pair *TokenPair) (string, string) {
				return pair.AccessToken, pair.RefreshToken + "x"
			},
		},
		{
			name: "access token signed with another secret",
			mutate: func(t *testing.T, env *testEnv, u *models.User, pair *TokenPair) (string, string) {
				other, err := auth.NewTokenService(auth.SigningConfig{
					Secret:         []byte("another-secret"),
					Issuer:         env.cfg.Issuer,
					AccessTokenTTL: time.Hour,
				})
				require.NoError(t, err)
				forged, err := other.IssueAccessToken(u)
				require.NoError(t, err)
				return forged, pair.RefreshToken
			},
		},
		{
			name: "access token of another user",
			mutate: func(t *testing.T, env *testEnv, u *models.User, pair *TokenPair) (string, string) {
				_, bob := env.signup(t, "bob")
				return signClaims(t, env, bob, time.Now(), time.Now().Add(time.Hour)), pair.RefreshToken
			},
		},
		{
			name: "user deleted",
			mutate: func(t *testing.T, env *testEnv, u *models.User, pair *TokenPair) (string, string) {
				require.NoError(t, env.db.Delete(&models.User{}, "id = ?", u.ID).Error)
				return pair.AccessToken, pair.RefreshToken
			},
		},
		{
			name: "refresh session expired",
			mutate: func(t *testing.T, env *testEnv, u *models.User, pair *TokenPair) (string, string) {
				env.users.now = func() time.Time { return time.Now().Add(env.cfg.RefreshTokenValidityDuration + time.Minute) }
				return pair.AccessToken, pair.RefreshToken
			},
		},
		{
			name: "garbage access token",
			mutate: func(t *testing.T, env *testEnv, u *models.User, pair *TokenPair) (string, string) {
				return "not-a-jwt", pair.RefreshToken
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, u := env.signup(t, "alice")
			pair, err := env.users.Login(context.Background(), "alice@example.com", "Secret1!")
			require.NoError(t, err)

			access, refresh := tt.mutate(t, env, u, pair)
			_, err = env.users.Refresh(context.Background(), access, refresh)
			require.ErrorIs(t, err, common.ErrInvalidToken)
		})
	}
}

func TestRefresh_WithoutSession(t *testing.T) {
	env := newTestEnv(t)
	_, u := env.signup(t, "alice")

	access := signClaims(t, env, u, time.Now(), time.Now().Add(time.Hour))
	_, err := env.users.Refresh(context.Background(), access, "anything")
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx, u := env.signup(t, "alice")

	got, err := env.users.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = env.users.Profile(context.Background())
	require.ErrorIs(t, err, common.ErrUnauthenticated)

	ghost := auth.WithIdentity(context.Background(), auth.Identity{UserID: "missing"})
	_, err = env.users.Profile(ghost)
	require.ErrorIs(t, err, common.ErrUserNotFound)
}

// signClaims builds an access token for u with explicit times, signed with
// the test secret.
func signClaims(t *testing.T, env *testEnv, u *models.User, iat, exp time.Time) string {
	t.Helper()
	claims := auth.Claims{
		Email:    u.Email,
		UserName: u.UserName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    env.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(env.cfg.SecretKey))
	require.NoError(t, err)
	return s
}
