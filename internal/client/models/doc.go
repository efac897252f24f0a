// Package models defines the client-side shapes of the freight API: the
// cached user, booked shipments and the multi-item quote form with its
// validation, totals and carrier reconciliation.
package models
