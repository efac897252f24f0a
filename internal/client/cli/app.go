package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/freightdesk/internal/client/api"
	"github.com/dmitrijs2005/freightdesk/internal/client/config"
	"github.com/dmitrijs2005/freightdesk/internal/client/services"
	"github.com/dmitrijs2005/freightdesk/internal/client/sessiontimer"
	"github.com/dmitrijs2005/freightdesk/internal/client/storage"
	"github.com/dmitrijs2005/freightdesk/internal/client/tokenstore"
	"github.com/dmitrijs2005/freightdesk/internal/logging"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	auth      *services.AuthSession
	shipments *services.ShipmentService
	account   *services.AccountService
	users     *services.UserService
	reader    *bufio.Reader

	notifications *services.NotificationService

	// out is shared with the idle timer goroutines.
	outMu       sync.Mutex
	out         io.Writer
	showWarning bool
}

// NewApp opens the local store and wires the services against the API at
// c.APIURL.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := storage.InitDatabase(ctx, c.DBPath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", c.DBPath, "error", err)
		return nil, err
	}

	store := tokenstore.New(db, c.SessionTimeout, c.RememberMeDuration, tokenstore.WithLogger(logger))
	apiClient := api.NewHTTPClient(c.APIURL, c.RequestTimeout, logger)

	a := &App{config: c, logger: logger, db: db, reader: bufio.NewReader(os.Stdin), out: os.Stdout}
	if err := a.wire(apiClient, store, services.SessionConfig{
		Enabled:          c.EnableSessionTimeout,
		Warning:          c.WarningLead,
		ActivityThrottle: c.ActivityThrottle,
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

// wire builds the services. The session callbacks of cfg are always
// replaced by the app's own.
func (a *App) wire(client api.Client, store *tokenstore.Store, cfg services.SessionConfig) error {
	if a.logger == nil {
		a.logger = logging.Nop()
	}
	cfg.OnChange = a.onSessionChange
	cfg.OnForcedLogout = a.onForcedLogout

	auth, err := services.NewAuthSession(client, store, cfg, a.logger)
	if err != nil {
		return err
	}
	a.auth = auth
	a.shipments = services.NewShipmentService(client, auth, a.logger)
	a.account = services.NewAccountService(client, auth, a.logger)
	a.users = services.NewUserService(client, auth, a.logger)
	a.notifications = services.NewNotificationService(a.db, a.logger)
	return nil
}

// Run resumes a stored session and blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	a.auth.Restore(ctx)
	printlnFn("Welcome to freightdesk (type 'help' for commands)")
	if u := a.auth.CurrentUser(); u != nil {
		printlnFn("Resumed session of", u.DisplayName())
	}

	runREPL(ctx, a, a.status, a.reader)
}

// Close stops the idle timer and closes the local store. The session
// itself stays stored for the next run.
func (a *App) Close() {
	a.auth.Close()
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn(context.Background(), "error closing database", "error", err)
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.auth.IsAuthenticated()
}

func (a *App) activity() {
	a.auth.Activity()
}

func (a *App) status() string {
	if u := a.auth.CurrentUser(); u != nil {
		return fmt.Sprintf("(%s)", u.Email)
	}
	return ""
}

func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}

// onSessionChange renders the idle warning. It runs on timer goroutines.
func (a *App) onSessionChange(s sessiontimer.Snapshot) {
	a.outMu.Lock()
	defer a.outMu.Unlock()

	switch {
	case s.ShowWarning:
		if !a.showWarning || announce(s.TimeLeft) {
			fmt.Fprintln(a.out, renderWarning(s.TimeLeft))
		}
	case a.showWarning && s.State == sessiontimer.Armed:
		fmt.Fprintln(a.out, renderNotice("Session extended."))
	}
	a.showWarning = s.ShowWarning
}

func (a *App) onForcedLogout(reason services.LogoutReason) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, renderAlert(logoutMessage(reason)))
}

func logoutMessage(reason services.LogoutReason) string {
	switch reason {
	case services.ReasonIdleTimeout:
		return "You have been logged out due to inactivity."
	case services.ReasonUnauthorized:
		return "Your session is no longer valid. Please log in again."
	}
	return "You have been logged out."
}

// errorMessage turns a command error into a line for the user.
func errorMessage(err error) string {
	var authErr *api.AuthError
	var fieldErr *services.FieldError
	switch {
	case errors.As(err, &authErr):
		return api.Message(err, api.DefaultLoginMessage)
	case errors.As(err, &fieldErr):
		return fieldErr.Message
	case errors.Is(err, services.ErrNotAuthenticated):
		return "Please log in first."
	case errors.Is(err, api.ErrUnauthorized):
		return "Your session has expired. Please log in again."
	case errors.Is(err, api.ErrUnavailable):
		return "Server unavailable, please try again later."
	case errors.Is(err, api.ErrForbidden):
		return "You are not allowed to do that."
	case errors.Is(err, api.ErrNotFound):
		return api.Message(err, "Not found.")
	}

	var se *api.StatusError
	if errors.As(err, &se) {
		if fields := se.FieldErrors(); len(fields) > 0 {
			return fmt.Sprintf("%s (%s)", api.Message(err, "Request failed."), joinLines(fields))
		}
		return api.Message(err, "Request failed.")
	}
	return err.Error()
}
