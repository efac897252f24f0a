// Package api is the client side of the freight REST API.
//
// # Overview
//
// Client is the transport-agnostic contract used by the services; HTTPClient
// implements it over net/http with JSON bodies. The client is stateless with
// respect to authentication: every call that needs it takes the bearer token
// explicitly, so the token store stays the single owner of the credential.
//
// Every request carries a fresh X-Request-ID so client and server logs can be
// correlated.
//
// # Error Handling
//
// Transport failures map to ErrUnavailable (context cancellation is returned
// as is). Non-2xx responses become *StatusError, which matches
// ErrUnauthorized (401), ErrForbidden (403), ErrNotFound (404) and
// ErrUnavailable (502-504) through errors.Is.
// Login failures are reported as *AuthError carrying a human-readable message
// taken from the response when the API sent one.
package api
