// Package cli provides the interactive freightdesk command-line client.
//
// It wires configuration, the local token store, the API services and an
// interactive REPL. Every line typed at the prompt counts as user activity
// for the idle timeout. When the timeout approaches, a warning with the
// seconds left is printed; typing "continue" keeps the session alive.
//
// Key features:
//   - Login / Logout, with an optional remembered session
//   - Shipment listing with filter and paging, shipment details
//   - Multi-item quotes with carrier selection
//   - Password reset, email and phone availability checks, support requests
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
