// Package auth holds the authentication core of the server: password hashing,
// access and refresh token handling, and the ownership guard used by services.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/eventhub/internal/common"
	"github.com/dmitrijs2005/eventhub/internal/server/config"
	"github.com/dmitrijs2005/eventhub/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// refreshTokenSize is the number of random bytes in a refresh token.
const refreshTokenSize = 32

// SigningConfig is everything TokenService needs to sign and check tokens.
type SigningConfig struct {
	Secret           []byte
	Issuer           string
	Audience         string
	ValidateAudience bool
	AccessTokenTTL   time.Duration
}

// SigningConfigFrom extracts the signing settings from the server config.
func SigningConfigFrom(c *config.Config) SigningConfig {
	return SigningConfig{
		Secret:           []byte(c.SecretKey),
		Issuer:           c.Issuer,
		Audience:         c.Audience,
		ValidateAudience: c.ValidateAudience,
		AccessTokenTTL:   c.AccessTokenValidityDuration,
	}
}

// Claims is the access token payload.
type Claims struct {
	Email    string `json:"email"`
	UserName string `json:"unique_name"`
	jwt.RegisteredClaims
}

// TokenService issues HS256 access tokens and opaque refresh tokens.
type TokenService struct {
	cfg SigningConfig
	now func() time.Time
}

// NewTokenService fails when the secret or issuer is missing; there is no
// fallback secret.
func NewTokenService(cfg SigningConfig) (*TokenService, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token service: empty signing secret")
	}
	if cfg.Issuer == "" {
		return nil, errors.New("token service: empty issuer")
	}
	if cfg.AccessTokenTTL <= 0 {
		return nil, fmt.Errorf("token service: invalid access token ttl %v", cfg.AccessTokenTTL)
	}
	if cfg.ValidateAudience && cfg.Audience == "" {
		return nil, errors.New("token service: audience validation enabled without audience")
	}
	return &TokenService{cfg: cfg, now: time.Now}, nil
}

// IssueAccessToken signs a token for user valid for the configured TTL.
func (s *TokenService) IssueAccessToken(user *models.User) (string, error) {
	if user == nil || user.Email == "" || user.UserName == "" {
		return "", common.ErrInvalidArgument
	}

	now := s.now()
	claims := Claims{
		Email:    user.Email,
		UserName: user.UserName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenTTL)),
		},
	}
	if s.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.cfg.Audience}
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
}

// IssueRefreshToken returns 256 random bits, base64 encoded.
func (s *TokenService) IssueRefreshToken() (string, error) {
	return common.MakeRandBase64String(refreshTokenSize)
}

// ValidateAccessToken verifies the signature, issuer, audience (when enabled)
// and, unless ignoreExpiration is set, the expiry of tokenString. Every error
// wraps common.ErrInvalidToken.
func (s *TokenService) ValidateAccessToken(tokenString string, ignoreExpiration bool) (*Claims, error) {
	claims := &Claims{}

	// claims are checked below so ignoreExpiration can drop only the exp check
	_, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, mapJWTError(err)
	}

	checked := *claims
	if ignoreExpiration {
		checked.ExpiresAt = nil
	}
	if err := jwt.NewValidator(s.validatorOptions(ignoreExpiration)...).Validate(&checked); err != nil {
		return nil, mapJWTError(err)
	}

	if claims.Subject == "" {
		return nil, common.ErrMalformedToken
	}
	return claims, nil
}

func (s *TokenService) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
	}
	return s.cfg.Secret, nil
}

func (s *TokenService) validatorOptions(ignoreExpiration bool) []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithTimeFunc(s.now),
	}
	if !ignoreExpiration {
		opts = append(opts, jwt.WithExpirationRequired())
	}
	if s.cfg.ValidateAudience {
		opts = append(opts, jwt.WithAudience(s.cfg.Audience))
	}
	return opts
}

// mapJWTError converts library errors into the common token errors. The order
// matters: a forged token must never be reported as merely expired.
func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed), errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return common.ErrMalformedToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return common.ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return common.ErrInvalidIssuer
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return common.ErrInvalidAudience
	case errors.Is(err, jwt.ErrTokenExpired):
		return common.ErrTokenExpired
	default:
		return fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
}
