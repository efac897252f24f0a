package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/freightdesk/internal/client/api"
	"github.com/dmitrijs2005/freightdesk/internal/client/models"
	"github.com/dmitrijs2005/freightdesk/internal/client/sessiontimer"
	"github.com/dmitrijs2005/freightdesk/internal/client/tokenstore"
	"github.com/dmitrijs2005/freightdesk/internal/logging"
)

// Landing is the area a user is sent to after login.
type Landing string

const (
	LandingDashboard Landing = "dashboard"
	LandingAdmin     Landing = "admin"
)

// LogoutReason says why a session ended.
type LogoutReason string

const (
	ReasonUser         LogoutReason = "user"
	ReasonIdleTimeout  LogoutReason = "idle_timeout"
	ReasonUnauthorized LogoutReason = "unauthorized"
)

type LoginResult struct {
	User    *models.User
	Landing Landing
}

// TokenInfo is the diagnostic view of the current token.
type TokenInfo struct {
	tokenstore.ExpirationInfo
	// ServerExpiresAt is the exp claim when the token is a JWT. It is
	// informational and never changes the local expiry.
	ServerExpiresAt *time.Time
}

// SessionConfig configures the idle timeout of an AuthSession.
type SessionConfig struct {
	// Enabled false means the idle timer is never armed.
	Enabled          bool
	Warning          time.Duration
	ActivityThrottle time.Duration
	Clock            clock.Clock

	// OnChange receives every timer snapshot, for rendering the warning.
	OnChange func(sessiontimer.Snapshot)
	// OnForcedLogout is called after a logout the user did not ask for.
	OnForcedLogout func(reason LogoutReason)
}

// AuthSession owns the authentication state: the current user, the stored
// token and the idle timer that guards them.
type AuthSession struct {
	client api.Client
	store  *tokenstore.Store
	timer  *sessiontimer.Timer
	logger logging.Logger

	warning        time.Duration
	onForcedLogout func(reason LogoutReason)

	mu   sync.Mutex
	user *models.User
}

// NewAuthSession wires an AuthSession. The idle timer's timeout is bound to a
// forced logout.
func NewAuthSession(client api.Client, store *tokenstore.Store, cfg SessionConfig, logger logging.Logger) (*AuthSession, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &AuthSession{
		client:         client,
		store:          store,
		logger:         logger,
		warning:        cfg.Warning,
		onForcedLogout: cfg.OnForcedLogout,
	}

	if cfg.Enabled {
		t, err := sessiontimer.New(sessiontimer.Config{
			Timeout:          store.Lifetime(false),
			Warning:          cfg.Warning,
			ActivityThrottle: cfg.ActivityThrottle,
			Clock:            cfg.Clock,
			OnChange:         cfg.OnChange,
			OnTimeout: func() {
				s.forceLogout(context.Background(), ReasonIdleTimeout)
			},
		})
		if err != nil {
			return nil, err
		}
		s.timer = t
	}

	return s, nil
}

// setUser publishes u as the current user and arms or disarms the idle
// timer to match.
func (s *AuthSession) setUser(ctx context.Context, u *models.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()

	if s.timer == nil {
		return
	}
	if u == nil {
		s.timer.SetAuthenticated(false)
		return
	}

	timeout := s.store.Lifetime(s.store.RememberMe(ctx))
	if s.timer.Timeout() != timeout {
		if err := s.timer.SetTimeout(timeout, s.warning); err != nil {
			s.logger.Warn(ctx, "cannot apply session timeout", "timeout", timeout, "error", err)
		}
	}
	s.timer.SetAuthenticated(true)
}

// Login exchanges credentials for a token. On failure the error is an
// *api.AuthError with a message fit for the user.
func (s *AuthSession) Login(ctx context.Context, email, password string, rememberMe bool) (*LoginResult, error) {
	resp, err := s.client.Login(ctx, email, password)
	if err != nil {
		s.logger.Warn(ctx, "login failed", "email", email, "error", err)
		return nil, err
	}

	if resp.Token != "" {
		s.store.SetToken(ctx, resp.Token, rememberMe)
	}
	if resp.User != nil {
		s.store.SetUser(ctx, *resp.User)
	}
	s.setUser(ctx, resp.User)

	landing := LandingDashboard
	if resp.User != nil && resp.User.IsAdmin() {
		landing = LandingAdmin
	}

	s.logger.Info(ctx, "logged in", "email", email, "remember_me", rememberMe, "landing", landing)
	return &LoginResult{User: resp.User, Landing: landing}, nil
}

// Logout notifies the API when a token is held, then clears all local
// session state. The notification is best effort, so Logout always
// succeeds.
func (s *AuthSession) Logout(ctx context.Context) bool {
	s.logout(ctx, ReasonUser)
	return true
}

func (s *AuthSession) logout(ctx context.Context, reason LogoutReason) {
	if token := s.store.Token(ctx); token != "" {
		if err := s.client.Logout(ctx, token); err != nil {
			s.logger.Warn(ctx, "logout notification failed, continuing with local cleanup", "error", err)
		}
	}

	s.store.RemoveToken(ctx)
	s.setUser(ctx, nil)
	s.logger.Info(ctx, "logged out", "reason", reason)
}

// forceLogout ends a live session the user did not log out of. It does
// nothing when no one is logged in.
func (s *AuthSession) forceLogout(ctx context.Context, reason LogoutReason) {
	if !s.IsAuthenticated() {
		return
	}
	s.logger.Warn(ctx, "forced logout", "reason", reason)
	s.logout(ctx, reason)
	if s.onForcedLogout != nil {
		s.onForcedLogout(reason)
	}
}

// HandleError forces a logout when err is a 401 from the API and reports
// whether it did.
func (s *AuthSession) HandleError(ctx context.Context, err error) bool {
	if !errors.Is(err, api.ErrUnauthorized) {
		return false
	}
	s.forceLogout(ctx, ReasonUnauthorized)
	return true
}

// RefreshUser re-establishes the current user. A cached user wins; without
// one the profile is fetched with the stored user id. A 401 logs out, any
// other failure leaves the session unauthenticated. It never fails.
func (s *AuthSession) RefreshUser(ctx context.Context) {
	token := s.store.Token(ctx)
	if token == "" {
		s.setUser(ctx, nil)
		return
	}

	if cached := s.store.User(ctx); cached != nil {
		s.setUser(ctx, cached)
		return
	}

	id := s.store.UserID(ctx)
	if id == "" {
		s.setUser(ctx, nil)
		return
	}

	u, err := s.client.GetUser(ctx, token, id)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			s.logger.Warn(ctx, "user refresh rejected by server", "user_id", id)
			// the session may not be published yet, so log out unconditionally
			s.logout(ctx, ReasonUnauthorized)
			if s.onForcedLogout != nil {
				s.onForcedLogout(ReasonUnauthorized)
			}
			return
		}
		s.logger.Warn(ctx, "failed to refresh user data", "user_id", id, "error", err)
		s.setUser(ctx, nil)
		return
	}

	if u != nil {
		s.store.SetUser(ctx, *u)
	}
	s.setUser(ctx, u)
}

// SetCurrentUser replaces the cached record of the logged-in user, after a
// profile change. It does nothing while logged out.
func (s *AuthSession) SetCurrentUser(ctx context.Context, u models.User) {
	if !s.IsAuthenticated() {
		return
	}
	s.store.SetUser(ctx, u)
	s.setUser(ctx, &u)
}

// Restore resumes a session persisted by an earlier run.
func (s *AuthSession) Restore(ctx context.Context) {
	if !s.store.IsAuthenticated(ctx) {
		s.setUser(ctx, nil)
		return
	}
	s.RefreshUser(ctx)
	if u := s.CurrentUser(); u != nil {
		s.logger.Info(ctx, "session restored", "user_id", u.ID)
	}
}

// CurrentUser returns a copy of the current user, or nil.
func (s *AuthSession) CurrentUser() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *AuthSession) IsAuthenticated() bool {
	return s.CurrentUser() != nil
}

// Token returns the bearer token for API calls.
func (s *AuthSession) Token(ctx context.Context) (string, error) {
	if !s.IsAuthenticated() {
		return "", ErrNotAuthenticated
	}
	token := s.store.Token(ctx)
	if token == "" {
		s.setUser(ctx, nil)
		return "", ErrNotAuthenticated
	}
	return token, nil
}

// TokenInfo returns nil while no user is logged in.
func (s *AuthSession) TokenInfo(ctx context.Context) *TokenInfo {
	if !s.IsAuthenticated() {
		return nil
	}
	info := s.store.ExpirationInfo(ctx)
	if info == nil {
		return nil
	}

	ti := &TokenInfo{ExpirationInfo: *info}
	if token := s.store.Token(ctx); token != "" {
		ti.ServerExpiresAt = jwtExpiry(token)
	}
	return ti
}

// jwtExpiry reads the exp claim without verifying the signature.
func jwtExpiry(token string) *time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time
	return &t
}

// Activity reports user input to the idle timer.
func (s *AuthSession) Activity() {
	if s.timer != nil {
		s.timer.Activity()
	}
}

// DismissWarning confirms the user is still there.
func (s *AuthSession) DismissWarning() {
	if s.timer != nil {
		s.timer.Dismiss()
	}
}

// Warning returns what the warning surface should show.
func (s *AuthSession) Warning() sessiontimer.Snapshot {
	if s.timer == nil {
		return sessiontimer.Snapshot{}
	}
	return s.timer.Snapshot()
}

// IdleDeadline is when the idle timeout fires absent activity; zero when the
// timer is not running.
func (s *AuthSession) IdleDeadline() time.Time {
	if s.timer == nil {
		return time.Time{}
	}
	return s.timer.Deadline()
}

// Close stops the idle timer. The stored session is kept for the next run.
func (s *AuthSession) Close() {
	if s.timer != nil {
		s.timer.Stop()
	}
}
