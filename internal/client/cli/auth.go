package cli

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/freightdesk/internal/client/services"
	"github.com/dmitrijs2005/freightdesk/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errAlreadyLoggedIn = errors.New("already logged in, log out first")

// Login prompts for credentials and the remember-me choice and starts a
// session. The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	if a.auth.IsAuthenticated() {
		return errAlreadyLoggedIn
	}

	email, err := a.ask("Enter email")
	if err != nil {
		return err
	}

	password, err := a.askPassword("Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	remember, err := a.ask("Remember me? (y/N)")
	if err != nil {
		return err
	}

	res, err := a.auth.Login(ctx, email, string(password), isYes(remember))
	if err != nil {
		return err
	}

	if res.User != nil {
		a.printf("Welcome, %s!\n", res.User.DisplayName())
	}
	if res.Landing == services.LandingAdmin {
		a.println("Signed in to the admin area.")
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if !a.auth.IsAuthenticated() {
		return services.ErrNotAuthenticated
	}
	a.auth.Logout(ctx)
	a.println("Logged out.")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	u := a.auth.CurrentUser()
	if u == nil {
		return services.ErrNotAuthenticated
	}
	a.printf("%s <%s>\n", u.DisplayName(), u.Email)
	a.printf("id: %s, role: %s\n", u.ID, u.Role)
	return nil
}

// TokenInfo prints the expiry of the stored token and of the idle window.
func (a *App) TokenInfo(ctx context.Context) error {
	info := a.auth.TokenInfo(ctx)
	if info == nil {
		return services.ErrNotAuthenticated
	}

	a.printf("Token expires at %s (in %s)\n", info.ExpiresAt.Format(time.RFC1123), info.TimeLeft.Round(time.Second))
	a.printf("Remember me: %t\n", info.RememberMe)
	if info.ServerExpiresAt != nil {
		a.printf("Server expiry: %s\n", info.ServerExpiresAt.Format(time.RFC1123))
	}
	if d := a.auth.IdleDeadline(); !d.IsZero() {
		a.printf("Idle timeout at %s\n", d.Format(time.RFC1123))
	}
	return nil
}

// Continue dismisses the inactivity warning.
func (a *App) Continue(ctx context.Context) error {
	if !a.auth.IsAuthenticated() {
		return services.ErrNotAuthenticated
	}
	a.auth.DismissWarning()
	return nil
}
