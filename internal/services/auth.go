package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/bankcore/internal/auth"
	"github.com/dmitrijs2005/bankcore/internal/common"
	"github.com/dmitrijs2005/bankcore/internal/config"
	"github.com/dmitrijs2005/bankcore/internal/dbx"
	"github.com/dmitrijs2005/bankcore/internal/logging"
	"github.com/dmitrijs2005/bankcore/internal/models"
	"github.com/dmitrijs2005/bankcore/internal/repositories/repomanager"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// refreshTokenByteLength is the entropy of a server-stored refresh token.
const refreshTokenByteLength = 32

// TokenPair is what a successful authentication hands back: a short-lived
// signed access token and a server-stored refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// PasswordHasher hashes a plaintext password for storage.
type PasswordHasher func(password string) (string, error)

// PasswordVerifier checks a plaintext password against a stored hash.
type PasswordVerifier func(hash, password string) bool

// AuthService implements registration, login with failure-streak lockout,
// token refresh and credential management.
//
// The lockout state machine is event-sourced: every attempt appends an auth
// event, and the decision to lock is made by scanning the most recent events
// for an unbroken run of failures. Lock expiry is lazy, evaluated on the
// next login attempt rather than by a background timer; an expired lock is
// cleared and an "Account Unlocked" event is appended so the stale failure
// run cannot trigger an immediate re-lock.
type AuthService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	log   logging.Logger

	secretKey       []byte
	accessValidity  time.Duration
	refreshValidity time.Duration
	lockoutDuration time.Duration
	threshold       int
	lookback        int

	hashPassword   PasswordHasher
	verifyPassword PasswordVerifier

	// now is the clock, swapped in tests to drive lock expiry.
	now func() time.Time
}

// NewAuthService constructs an AuthService with bcrypt password handling.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) *AuthService {
	return &AuthService{
		db:              db,
		repos:           m,
		log:             log.With("component", "auth"),
		secretKey:       []byte(cfg.SecretKey),
		accessValidity:  cfg.AccessTokenValidityDuration,
		refreshValidity: cfg.RefreshTokenValidityDuration,
		lockoutDuration: cfg.LockoutDuration,
		threshold:       cfg.FailedAttemptThreshold,
		lookback:        cfg.AuthEventLookback,
		hashPassword: func(password string) (string, error) {
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return "", err
			}
			return string(hash), nil
		},
		verifyPassword: func(hash, password string) bool {
			return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
		},
		now: time.Now,
	}
}

// Register creates a user with an initial credential and a checking and a
// saving account, both opened empty, then signs the user in. Everything
// commits or rolls back together; a failure can never leave a user without
// a credential or default accounts.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, *TokenPair, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" || email == "" || password == "" {
		return nil, nil, common.ErrInvalidOperation
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	var user *models.User
	var pair *TokenPair
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err = s.repos.Users(tx).Create(ctx, &models.User{Name: name, Email: email})
		if err != nil {
			return err
		}
		if _, err := s.repos.Credentials(tx).Insert(ctx, user.ID, hash); err != nil {
			return err
		}
		accountRepo := s.repos.Accounts(tx)
		if _, err := accountRepo.Create(ctx, user.ID, "Checking", models.AccountTypeChecking, decimal.Zero); err != nil {
			return err
		}
		if _, err := accountRepo.Create(ctx, user.ID, "Savings", models.AccountTypeSaving, decimal.Zero); err != nil {
			return err
		}
		pair, err = s.issueTokens(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.Info(ctx, "user registered", "user", user.ID)
	return user, pair, nil
}

// Login authenticates by email and password.
//
// A locked account rejects the attempt before any credential check, so a
// correct password reveals nothing while the lock holds. A failed attempt
// appends a failure event and, when it completes a streak of threshold
// consecutive failures, locks the account for the configured duration.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.repos.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, common.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := s.evaluateLock(ctx, user); err != nil {
		return nil, nil, err
	}

	cred, err := s.repos.Credentials(s.db).GetCurrent(ctx, user.ID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, common.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !s.verifyPassword(cred.Hash, password) {
		return nil, nil, s.recordFailure(ctx, user.ID)
	}

	var pair *TokenPair
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.AuthEvents(tx).Insert(ctx, user.ID, models.EventSuccessfulAuth); err != nil {
			return err
		}
		pair, err = s.issueTokens(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.Info(ctx, "login succeeded", "user", user.ID)
	return user, pair, nil
}

// Refresh exchanges a refresh token for a new token pair, rotating the
// stored token. An expired token is removed and rejected.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	stored, err := s.repos.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, err
	}

	if s.now().After(stored.Expires) {
		if err := s.repos.RefreshTokens(s.db).Delete(ctx, refreshToken); err != nil {
			return nil, err
		}
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return err
		}
		pair, err = s.issueTokens(ctx, tx, stored.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout invalidates the refresh token and records the event. Access tokens
// stay valid until they expire; only the refresh path is cut.
func (s *AuthService) Logout(ctx context.Context, userID int64, refreshToken string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.AuthEvents(tx).Insert(ctx, userID, models.EventLogOut); err != nil {
			return err
		}
		err := s.repos.RefreshTokens(tx).Delete(ctx, refreshToken)
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}
	s.log.Info(ctx, "logout", "user", userID)
	return nil
}

// ChangePassword verifies the current password, then supersedes the current
// credential and appends the new one in a single unit. Old hashes are kept
// for history, never reused for authentication.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	if newPassword == "" {
		return common.ErrInvalidOperation
	}

	cred, err := s.repos.Credentials(s.db).GetCurrent(ctx, userID)
	if err != nil {
		return err
	}
	if !s.verifyPassword(cred.Hash, oldPassword) {
		return common.ErrInvalidCredentials
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Credentials(tx)
		if err := repo.SupersedeCurrent(ctx, userID); err != nil {
			return err
		}
		_, err := repo.Insert(ctx, userID, hash)
		return err
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "password changed", "user", userID)
	return nil
}

// Unlock clears a lockout ahead of its deadline, an operator action. The
// unlock event terminates the failure run, so the next failed attempt
// starts a fresh count of one.
func (s *AuthService) Unlock(ctx context.Context, userID int64) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Users(tx).SetLockState(ctx, userID, false, nil); err != nil {
			return err
		}
		return s.repos.AuthEvents(tx).Insert(ctx, userID, models.EventAccountUnlocked)
	})
	if err != nil {
		return err
	}
	s.log.Info(ctx, "account unlocked", "user", userID)
	return nil
}

// VerifyAccessToken resolves an access token to the authenticated user id.
func (s *AuthService) VerifyAccessToken(token string) (int64, error) {
	return auth.GetUserIDFromToken(token, s.secretKey)
}

// --- internals ---

// evaluateLock enforces an active lockout and lazily expires a stale one.
// Clearing an expired lock appends an unlock event; without it the old
// failure run would still satisfy the streak scan and the very next failed
// attempt would re-lock the account forever.
func (s *AuthService) evaluateLock(ctx context.Context, user *models.User) error {
	if !user.Locked {
		return nil
	}
	if user.LockoutUntil == nil || s.now().Before(*user.LockoutUntil) {
		return common.ErrAccountLocked
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Users(tx).SetLockState(ctx, user.ID, false, nil); err != nil {
			return err
		}
		return s.repos.AuthEvents(tx).Insert(ctx, user.ID, models.EventAccountUnlocked)
	})
	if err != nil {
		return err
	}

	user.Locked = false
	user.LockoutUntil = nil
	s.log.Info(ctx, "lockout expired", "user", user.ID)
	return nil
}

// recordFailure appends the failure event and locks the account when it
// completes a streak. The bookkeeping commits in its own unit and the login
// error is returned afterwards, so a rollback-on-error transaction helper
// cannot swallow the audit trail.
func (s *AuthService) recordFailure(ctx context.Context, userID int64) error {
	locked := false
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		events := s.repos.AuthEvents(tx)
		if err := events.Insert(ctx, userID, models.EventFailedAuth); err != nil {
			return err
		}
		recent, err := events.ListRecent(ctx, userID, s.lookback)
		if err != nil {
			return err
		}
		if countFailureStreak(recent) < s.threshold {
			return nil
		}
		until := s.now().Add(s.lockoutDuration)
		if err := s.repos.Users(tx).SetLockState(ctx, userID, true, &until); err != nil {
			return err
		}
		if err := events.Insert(ctx, userID, models.EventAccountLocked); err != nil {
			return err
		}
		locked = true
		return nil
	})
	if err != nil {
		return err
	}

	if locked {
		s.log.Warn(ctx, "account locked after failure streak", "user", userID)
		return common.ErrAccountLocked
	}
	return common.ErrInvalidCredentials
}

// countFailureStreak counts consecutive failed authentications walking the
// event log newest first. A successful authentication or an unlock ends the
// run; lock and logout markers are skipped, they are not attempt outcomes.
func countFailureStreak(events []*models.AuthEvent) int {
	streak := 0
	for _, e := range events {
		switch e.Kind {
		case models.EventFailedAuth:
			streak++
		case models.EventSuccessfulAuth, models.EventAccountUnlocked:
			return streak
		}
	}
	return streak
}

// issueTokens mints an access token and stores a fresh refresh token inside
// the caller's transaction.
func (s *AuthService) issueTokens(ctx context.Context, tx dbx.DBTX, userID int64) (*TokenPair, error) {
	access, err := auth.GenerateToken(userID, s.secretKey, s.accessValidity)
	if err != nil {
		return nil, err
	}
	refresh, err := common.MakeRandHexString(refreshTokenByteLength)
	if err != nil {
		return nil, err
	}
	if err := s.repos.RefreshTokens(tx).Create(ctx, userID, refresh, s.refreshValidity); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
