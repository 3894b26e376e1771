package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/dmitrijs2005/eventhub/internal/common"
	"github.com/dmitrijs2005/eventhub/internal/server/models"
)

// HashRefreshToken returns the hex SHA-256 digest persisted in place of a
// refresh token.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// RefreshSession is the refresh state stored on a user row.
type RefreshSession struct {
	TokenHash string
	ExpiresAt time.Time
}

// NewRefreshSession binds token to a session expiring ttl after now.
func NewRefreshSession(token string, now time.Time, ttl time.Duration) RefreshSession {
	return RefreshSession{TokenHash: HashRefreshToken(token), ExpiresAt: now.Add(ttl)}
}

// SessionOf returns the session stored on u, or false when u has none.
func SessionOf(u *models.User) (RefreshSession, bool) {
	if u == nil || u.RefreshToken == nil || u.RefreshTokenExpiresAt == nil {
		return RefreshSession{}, false
	}
	return RefreshSession{TokenHash: *u.RefreshToken, ExpiresAt: *u.RefreshTokenExpiresAt}, true
}

// Check reports whether presented is the current token and still valid at now.
func (s RefreshSession) Check(presented string, now time.Time) error {
	if presented == "" || s.TokenHash == "" {
		return common.ErrRefreshTokenInvalid
	}
	if subtle.ConstantTimeCompare([]byte(HashRefreshToken(presented)), []byte(s.TokenHash)) != 1 {
		return common.ErrRefreshTokenInvalid
	}
	if !now.Before(s.ExpiresAt) {
		return common.ErrRefreshTokenExpired
	}
	return nil
}
