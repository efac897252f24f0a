package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	activity()
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	TokenInfo(ctx context.Context) error
	Shipments(ctx context.Context, args []string) error
	Shipment(ctx context.Context, args []string) error
	Quote(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	CheckEmail(ctx context.Context, args []string) error
	CheckPhone(ctx context.Context, args []string) error
	Support(ctx context.Context) error
	Profile(ctx context.Context) error
	Settings(ctx context.Context) error
	Notify(ctx context.Context, args []string) error
	Users(ctx context.Context, args []string) error
	DeleteUser(ctx context.Context, args []string) error
	Continue(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the freightdesk CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Every line, even an empty or unknown one,
// is reported as user activity first. The loop exits on EOF or when the
// user types "exit" or "quit".
//
// Prompt & Commands
//
//	Not logged in:
//	  - help                      - show available commands
//	  - login                     - authenticate
//	  - reset                     - reset a forgotten password
//	  - exit | quit               - leave the program
//
//	Logged in:
//	  - shipments [query] [page]  - list shipments, optionally filtered
//	  - shipment <id>             - show one shipment
//	  - quote                     - calculate and request a quote
//	  - checkemail [email]        - check whether an email is taken
//	  - checkphone [phone]        - check whether a phone number is taken
//	  - support                   - send a support request
//	  - profile                   - edit your profile
//	  - settings                  - show notification settings
//	  - notify <on|off>           - switch new shipment notifications
//	  - users [query] [page]      - list users (admin)
//	  - deleteuser <id>           - delete a user (admin)
//	  - whoami | token            - show the user and token expiry
//	  - continue                  - dismiss the inactivity warning
//	  - logout                    - log out
//
// Errors returned by command handlers are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("freightdesk %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		a.activity()

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: shipments [query] [page], shipment <id>, quote, checkemail, checkphone, support, profile, settings, notify <on|off>, users [query] [page], deleteuser <id>, whoami, token, continue, logout, exit")
			} else {
				printlnFn("Available commands: login, reset, exit")
			}

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "token":
			cmdErr = a.TokenInfo(ctx)

		case "s", "shipments":
			cmdErr = a.Shipments(ctx, args)

		case "shipment":
			if len(args) == 0 {
				printlnFn("Usage: shipment <id>")
				continue
			}
			cmdErr = a.Shipment(ctx, args)

		case "quote":
			cmdErr = a.Quote(ctx)

		case "reset":
			cmdErr = a.ResetPassword(ctx)

		case "checkemail":
			cmdErr = a.CheckEmail(ctx, args)

		case "checkphone":
			cmdErr = a.CheckPhone(ctx, args)

		case "support":
			cmdErr = a.Support(ctx)

		case "profile":
			cmdErr = a.Profile(ctx)

		case "settings":
			cmdErr = a.Settings(ctx)

		case "notify":
			cmdErr = a.Notify(ctx, args)

		case "users":
			cmdErr = a.Users(ctx, args)

		case "deleteuser":
			if len(args) != 1 {
				printlnFn("Usage: deleteuser <id>")
				continue
			}
			cmdErr = a.DeleteUser(ctx, args)

		case "continue":
			cmdErr = a.Continue(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", errorMessage(cmdErr))
		}

		if err != nil {
			return
		}
	}
}
