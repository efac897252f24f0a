// Package mockapi is an in-memory implementation of the freight shipment
// REST API, served with gin under /api. It backs local development of the
// client and the client's integration tests.
//
// State lives in a Store seeded with a demo customer, an admin and a set of
// shipments. Authenticated routes take an HS256 bearer token issued by
// /login; /logout revokes it.
package mockapi
