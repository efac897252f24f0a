// Package common contains constants, sentinel errors and small helpers shared
// by the client and the mock API.
package common

const (
	// AuthorizationHeader carries "Bearer <token>" on authenticated requests.
	AuthorizationHeader = "Authorization"

	// BearerPrefix precedes the token in AuthorizationHeader.
	BearerPrefix = "Bearer "

	// RequestIDHeader correlates a client request with server logs.
	RequestIDHeader = "X-Request-ID"
)
