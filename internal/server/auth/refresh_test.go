package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/eventhub/internal/common"
	"github.com/dmitrijs2005/eventhub/internal/server/models"
)

func TestRefreshSession_Check(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	session := NewRefreshSession("token-a", now, 7*24*time.Hour)

	if session.TokenHash == "token-a" {
		t.Fatal("token must not be stored in plain text")
	}

	tests := []struct {
		name      string
		presented string
		at        time.Time
		want      error
	}{
		{"match", "token-a", now.Add(time.Hour), nil},
		{"mismatch", "token-b", now.Add(time.Hour), common.ErrRefreshTokenInvalid},
		{"empty", "", now, common.ErrRefreshTokenInvalid},
		{"expired", "token-a", now.Add(7 * 24 * time.Hour), common.ErrRefreshTokenExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := session.Check(tt.presented, tt.at)
			if !errors.Is(err, tt.want) && !(tt.want == nil && err == nil) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSessionOf(t *testing.T) {
	t.Parallel()

	if _, ok := SessionOf(&models.User{}); ok {
		t.Fatal("user without refresh state must have no session")
	}

	hash := HashRefreshToken("t")
	exp := time.Now()
	s, ok := SessionOf(&models.User{RefreshToken: &hash, RefreshTokenExpiresAt: &exp})
	if !ok || s.TokenHash != hash || !s.ExpiresAt.Equal(exp) {
		t.Fatalf("unexpected session %+v (ok=%v)", s, ok)
	}
}

func TestHashRefreshToken_Deterministic(t *testing.T) {
	t.Parallel()

	if HashRefreshToken("x") != HashRefreshToken("x") {
		t.Fatal("digest must be deterministic")
	}
	if HashRefreshToken("x") == HashRefreshToken("y") {
		t.Fatal("different tokens must differ")
	}
	if len(HashRefreshToken("x")) != 64 {
		t.Fatal("digest must be 64 hex chars")
	}
}
