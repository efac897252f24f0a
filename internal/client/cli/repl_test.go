package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/freightdesk/internal/client/services"
)

type fakeExec struct {
	loggedIn   bool
	activities int

	calls []string
	args  [][]string
	err   error
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return f.err
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) activity()        { f.activities++ }
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login", nil)
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout", nil)
}
func (f *fakeExec) WhoAmI(ctx context.Context) error    { return f.record("whoami", nil) }
func (f *fakeExec) TokenInfo(ctx context.Context) error { return f.record("token", nil) }
func (f *fakeExec) Shipments(ctx context.Context, args []string) error {
	return f.record("shipments", args)
}
func (f *fakeExec) Shipment(ctx context.Context, args []string) error {
	return f.record("shipment", args)
}
func (f *fakeExec) Quote(ctx context.Context) error         { return f.record("quote", nil) }
func (f *fakeExec) ResetPassword(ctx context.Context) error { return f.record("reset", nil) }
func (f *fakeExec) CheckEmail(ctx context.Context, args []string) error {
	return f.record("checkemail", args)
}
func (f *fakeExec) CheckPhone(ctx context.Context, args []string) error {
	return f.record("checkphone", args)
}
func (f *fakeExec) Support(ctx context.Context) error  { return f.record("support", nil) }
func (f *fakeExec) Continue(ctx context.Context) error { return f.record("continue", nil) }
func (f *fakeExec) Profile(ctx context.Context) error  { return f.record("profile", nil) }
func (f *fakeExec) Settings(ctx context.Context) error { return f.record("settings", nil) }
func (f *fakeExec) Notify(ctx context.Context, args []string) error {
	return f.record("notify", args)
}
func (f *fakeExec) Users(ctx context.Context, args []string) error {
	return f.record("users", args)
}
func (f *fakeExec) DeleteUser(ctx context.Context, args []string) error {
	return f.record("deleteuser", args)
}

func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	capturePrintln(t)

	input := strings.Join([]string{
		"help",
		"login",
		"shipments 1017 2",
		"s",
		"shipment 42",
		"quote",
		"checkemail a@b.io",
		"checkphone +61 400",
		"support",
		"whoami",
		"token",
		"continue",
		"reset",
		"logout",
		"exit",
		"whoami",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader(input)))

	assert.Equal(t, []string{
		"login", "shipments", "shipments", "shipment", "quote", "checkemail", "checkphone",
		"support", "whoami", "token", "continue", "reset", "logout",
	}, exec.calls)
	assert.Equal(t, []string{"1017", "2"}, exec.args[1])
	assert.Empty(t, exec.args[2])
	assert.Equal(t, []string{"42"}, exec.args[3])
	assert.Equal(t, []string{"+61", "400"}, exec.args[6])
	assert.Equal(t, 15, exec.activities)
}

func TestRunREPL_AccountAndAdminCommands(t *testing.T) {
	lines := capturePrintln(t)

	input := strings.Join([]string{
		"profile",
		"settings",
		"notify off",
		"users role:admin 2",
		"deleteuser",
		"deleteuser 7",
	}, "\n")

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader(input)))

	assert.Equal(t, []string{"profile", "settings", "notify", "users", "deleteuser"}, exec.calls)
	assert.Equal(t, []string{"off"}, exec.args[2])
	assert.Equal(t, []string{"role:admin", "2"}, exec.args[3])
	assert.Equal(t, []string{"7"}, exec.args[4])
	assert.Contains(t, *lines, "Usage: deleteuser <id>")
	assert.Equal(t, 6, exec.activities)
}

func TestRunREPL_EveryLineIsActivity(t *testing.T) {
	lines := capturePrintln(t)

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "(a@b.io)" }, bufio.NewReader(strings.NewReader("\n\nfoobar\nshipment\n")))

	assert.Equal(t, 4, exec.activities)
	assert.Empty(t, exec.calls)
	assert.Contains(t, *lines, "Unknown command: foobar")
	assert.Contains(t, *lines, "Usage: shipment <id>")
	assert.Contains(t, *lines, "freightdesk (a@b.io)> ")
}

func TestRunREPL_PrintsErrorsAndContinues(t *testing.T) {
	lines := capturePrintln(t)

	exec := &fakeExec{loggedIn: true, err: services.ErrNotAuthenticated}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("whoami\nquote")))

	require.Equal(t, []string{"whoami", "quote"}, exec.calls)
	var errLines int
	for _, l := range *lines {
		if l == "Error: Please log in first." {
			errLines++
		}
	}
	assert.Equal(t, 2, errLines)
}

func TestRunREPL_HelpDependsOnLogin(t *testing.T) {
	lines := capturePrintln(t)

	exec := &fakeExec{err: errors.New("unused")}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("help\nquit\n")))

	assert.Contains(t, *lines, "Available commands: login, reset, exit")
	assert.Contains(t, *lines, "Bye!")
}
