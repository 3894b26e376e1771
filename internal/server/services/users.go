// Package services contains server-side business logic. UserService covers
// registration, login with throttling, refresh-token rotation and the
// current user's profile.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/eventhub/internal/common"
	"github.com/dmitrijs2005/eventhub/internal/dbx"
	"github.com/dmitrijs2005/eventhub/internal/logging"
	"github.com/dmitrijs2005/eventhub/internal/server/auth"
	"github.com/dmitrijs2005/eventhub/internal/server/config"
	"github.com/dmitrijs2005/eventhub/internal/server/models"
	"github.com/dmitrijs2005/eventhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/eventhub/internal/server/throttle"
	"gorm.io/gorm"
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 6

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type UserService struct {
	db          *gorm.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.PasswordHasher
	tokens      *auth.TokenService
	limiter     throttle.LoginLimiter
	refreshTTL  time.Duration
	logger      logging.Logger
	now         func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(db *gorm.DB, m repomanager.RepositoryManager, hasher *auth.PasswordHasher, tokens *auth.TokenService,
	limiter throttle.LoginLimiter, cfg *config.Config, l logging.Logger) *UserService {
	if limiter == nil {
		limiter = throttle.Nop{}
	}
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		limiter:     limiter,
		refreshTTL:  cfg.RefreshTokenValidityDuration,
		logger:      l.With("module", "user_service"),
		now:         time.Now,
	}
}

// Register creates a user. username defaults to the email when empty.
func (s *UserService) Register(ctx context.Context, email, password, username string) (*models.User, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)

	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, common.NewValidationError("Invalid email address.")
	}
	if len(password) < MinPasswordLength {
		return nil, common.NewValidationError(fmt.Sprintf("Password must be at least %d characters long.", MinPasswordLength))
	}
	if username == "" {
		username = email
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, &models.User{
		Email:        email,
		UserName:     username,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies the credentials and stores a fresh refresh session.
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = strings.TrimSpace(email)

	allowed, err := s.limiter.Allow(ctx, email)
	if err != nil {
		// fail open
		s.logger.Warn(ctx, "login throttle unavailable", "error", err)
		allowed = true
	}
	if !allowed {
		return nil, common.ErrTooManyAttempts
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if user == nil {
		// same bcrypt cost as a real check
		s.hasher.Verify(password, s.getDummyHash())
		s.recordFailure(ctx, email)
		return nil, common.ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		s.recordFailure(ctx, email)
		return nil, common.ErrInvalidCredentials
	}

	pair, session, err := s.generateTokenPair(user)
	if err != nil {
		return nil, err
	}
	if err := repo.SetRefreshSession(ctx, user.ID, session.TokenHash, session.ExpiresAt); err != nil {
		return nil, fmt.Errorf("error storing refresh session: %w", err)
	}

	if err := s.limiter.Reset(ctx, email); err != nil {
		s.logger.Warn(ctx, "login throttle reset failed", "error", err)
	}
	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return pair, nil
}

// Refresh exchanges an (possibly expired) access token and the matching
// refresh token for a new pair. The old refresh token stops working. Every
// rejection wraps common.ErrInvalidToken.
func (s *UserService) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.ValidateAccessToken(accessToken, true)
	if err != nil {
		return nil, s.rejectRefresh(ctx, err)
	}

	var pair *TokenPair
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *gorm.DB) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.FindByID(ctx, claims.Subject)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrUserNotFound
			}
			return err
		}

		current, ok := auth.SessionOf(user)
		if !ok {
			return common.ErrRefreshTokenInvalid
		}
		if err := current.Check(refreshToken, s.now()); err != nil {
			return err
		}

		var next auth.RefreshSession
		pair, next, err = s.generateTokenPair(user)
		if err != nil {
			return err
		}
		return repo.RotateRefreshSession(ctx, user.ID, current.TokenHash, next.TokenHash, next.ExpiresAt)
	})
	if err != nil {
		return nil, s.rejectRefresh(ctx, err)
	}

	s.logger.Info(ctx, "refresh token rotated", "user_id", claims.Subject)
	return pair, nil
}

// Profile returns the user behind the identity in ctx.
func (s *UserService) Profile(ctx context.Context) (*models.User, error) {
	return auth.ResolveCurrentUser(ctx, s.repomanager.Users(s.db))
}

// rejectRefresh logs why a refresh failed and folds every refresh-protocol
// failure into common.ErrInvalidToken. Storage failures pass through.
func (s *UserService) rejectRefresh(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidToken):
	case errors.Is(err, common.ErrUserNotFound),
		errors.Is(err, common.ErrRefreshTokenInvalid),
		errors.Is(err, common.ErrRefreshTokenExpired):
		err = fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	default:
		s.logger.Error(ctx, "refresh failed", "error", err)
		return err
	}
	s.logger.Debug(ctx, "refresh rejected", "reason", err)
	return err
}

func (s *UserService) recordFailure(ctx context.Context, email string) {
	if err := s.limiter.Fail(ctx, email); err != nil {
		s.logger.Warn(ctx, "login throttle update failed", "error", err)
	}
}

func (s *UserService) getDummyHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("eventhub-dummy-password")
	})
	return s.dummyHash
}

func (s *UserService) generateTokenPair(user *models.User) (*TokenPair, auth.RefreshSession, error) {
	access, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, auth.RefreshSession{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefreshToken()
	if err != nil {
		return nil, auth.RefreshSession{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh},
		auth.NewRefreshSession(refresh, s.now(), s.refreshTTL), nil
}
