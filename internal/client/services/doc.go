// Package services contains the application services of the freightdesk
// client: the authentication session with its idle timeout, shipments and
// quotes, and account maintenance.
//
// AuthSession is the only component that changes authentication state. The
// other services borrow its token and hand every 401 back to it, so a
// server-side invalidation always ends in the same forced logout.
package services
