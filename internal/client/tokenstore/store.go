// Package tokenstore persists the Token Record (bearer token, absolute
// expiry and remember-me flag) and the cached User Record in the local
// key-value store.
//
// The store never returns storage errors. A store that cannot be read
// behaves as an empty one, and failed writes are logged and dropped.
package tokenstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dmitrijs2005/freightdesk/internal/client/models"
	"github.com/dmitrijs2005/freightdesk/internal/client/repositories/kv"
	"github.com/dmitrijs2005/freightdesk/internal/dbx"
	"github.com/dmitrijs2005/freightdesk/internal/logging"
)

// Storage keys.
const (
	KeyToken      = "auth_token"
	KeyExpiration = "token_expiration"
	KeyRememberMe = "remember_me"
	KeyUser       = "user"
	KeyUserID     = "user_id"
)

var allKeys = []string{KeyToken, KeyExpiration, KeyRememberMe, KeyUser, KeyUserID}

// ExpirationInfo is a diagnostic snapshot of the Token Record.
type ExpirationInfo struct {
	ExpiresAt  time.Time
	TimeLeft   time.Duration
	RememberMe bool
	Expired    bool
}

type Store struct {
	db     *sql.DB
	clock  clock.Clock
	logger logging.Logger

	short time.Duration
	long  time.Duration
}

type Option func(*Store)

func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New returns a Store over db. short is the token lifetime of a plain login,
// long the lifetime of a remembered one.
func New(db *sql.DB, short, long time.Duration, opts ...Option) *Store {
	s := &Store{
		db:     db,
		clock:  clock.New(),
		logger: logging.Nop(),
		short:  short,
		long:   long,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Lifetime returns the token lifetime for the given remember-me choice.
func (s *Store) Lifetime(rememberMe bool) time.Duration {
	if rememberMe {
		return s.long
	}
	return s.short
}

func (s *Store) repo() kv.Repository {
	return kv.NewSQLiteRepository(s.db)
}

func (s *Store) get(ctx context.Context, key string) (string, bool) {
	if s.db == nil {
		return "", false
	}
	v, ok, err := s.repo().Get(ctx, key)
	if err != nil {
		s.logger.Warn(ctx, "token store read failed", "key", key, "error", err)
		return "", false
	}
	return v, ok
}

func (s *Store) write(ctx context.Context, op string, fn func(ctx context.Context, repo kv.Repository) error) {
	if s.db == nil {
		return
	}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, kv.NewSQLiteRepository(tx))
	})
	if err != nil {
		s.logger.Warn(ctx, "token store write failed", "op", op, "error", err)
	}
}

// SetToken stores token with an expiry of now plus the lifetime selected by
// rememberMe.
func (s *Store) SetToken(ctx context.Context, token string, rememberMe bool) {
	expiresAt := s.clock.Now().Add(s.Lifetime(rememberMe))
	s.write(ctx, "set_token", func(ctx context.Context, repo kv.Repository) error {
		if err := repo.Set(ctx, KeyToken, token); err != nil {
			return err
		}
		if err := repo.Set(ctx, KeyExpiration, strconv.FormatInt(expiresAt.UnixMilli(), 10)); err != nil {
			return err
		}
		return repo.Set(ctx, KeyRememberMe, strconv.FormatBool(rememberMe))
	})
}

// expiresAt returns the stored expiry. An unreadable value counts as absent.
func (s *Store) expiresAt(ctx context.Context) (time.Time, bool) {
	raw, ok := s.get(ctx, KeyExpiration)
	if !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.logger.Warn(ctx, "ignoring malformed token expiration", "value", raw)
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// IsExpired reports whether there is no expiry on record or it has passed.
func (s *Store) IsExpired(ctx context.Context) bool {
	exp, ok := s.expiresAt(ctx)
	if !ok {
		return true
	}
	return s.clock.Now().After(exp)
}

// Token returns the stored token, or "" when there is none or it has
// expired. An expired token is removed together with the user record.
func (s *Store) Token(ctx context.Context) string {
	if s.IsExpired(ctx) {
		s.RemoveToken(ctx)
		return ""
	}
	token, _ := s.get(ctx, KeyToken)
	return token
}

func (s *Store) IsAuthenticated(ctx context.Context) bool {
	return s.Token(ctx) != ""
}

func (s *Store) RememberMe(ctx context.Context) bool {
	v, _ := s.get(ctx, KeyRememberMe)
	return v == "true"
}

// RemoveToken clears the Token Record and the cached user. It is idempotent.
func (s *Store) RemoveToken(ctx context.Context) {
	s.write(ctx, "remove_token", func(ctx context.Context, repo kv.Repository) error {
		return repo.Delete(ctx, allKeys...)
	})
}

// ExpirationInfo returns nil when no expiry is on record.
func (s *Store) ExpirationInfo(ctx context.Context) *ExpirationInfo {
	exp, ok := s.expiresAt(ctx)
	if !ok {
		return nil
	}
	left := exp.Sub(s.clock.Now())
	return &ExpirationInfo{
		ExpiresAt:  exp,
		TimeLeft:   left,
		RememberMe: s.RememberMe(ctx),
		Expired:    left <= 0,
	}
}

// SetUser caches u and its id.
func (s *Store) SetUser(ctx context.Context, u models.User) {
	userJSON, err := json.Marshal(u)
	if err != nil {
		s.logger.Warn(ctx, "cannot encode user", "error", err)
		return
	}
	idJSON, err := json.Marshal(u.ID)
	if err != nil {
		s.logger.Warn(ctx, "cannot encode user id", "error", err)
		return
	}
	s.write(ctx, "set_user", func(ctx context.Context, repo kv.Repository) error {
		if err := repo.Set(ctx, KeyUser, string(userJSON)); err != nil {
			return err
		}
		return repo.Set(ctx, KeyUserID, string(idJSON))
	})
}

// User returns the cached user, or nil when none is cached or the cached
// value cannot be decoded.
func (s *Store) User(ctx context.Context) *models.User {
	raw, ok := s.get(ctx, KeyUser)
	if !ok || raw == "" || raw == "null" {
		return nil
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.logger.Warn(ctx, "ignoring malformed cached user", "error", err)
		return nil
	}
	return &u
}

// RemoveUser drops the cached user but keeps its id, so the profile can be
// fetched again.
func (s *Store) RemoveUser(ctx context.Context) {
	s.write(ctx, "remove_user", func(ctx context.Context, repo kv.Repository) error {
		return repo.Delete(ctx, KeyUser)
	})
}

// UserID returns the id stored at login, or "" when absent.
func (s *Store) UserID(ctx context.Context) models.UserID {
	raw, ok := s.get(ctx, KeyUserID)
	if !ok {
		return ""
	}
	var id models.UserID
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		s.logger.Warn(ctx, "ignoring malformed cached user id", "error", err)
		return ""
	}
	return id
}
