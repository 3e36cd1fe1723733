// Package repository holds the pgx-backed data access layer. The sentinel
// errors below are shared across repositories so that handlers can map
// failure kinds to HTTP status codes without inspecting SQL state.
package repository

import "errors"

// ErrNotFound is returned when a schedule, seat, station, booking or promo
// code does not exist. Handlers translate it into a 404.
var ErrNotFound = errors.New("not found")

// ErrSeatUnavailable is returned when a segment reservation would overlap a
// live reservation for the same (schedule, seat). It is a business refusal,
// not a system fault; handlers translate it into a 409.
var ErrSeatUnavailable = errors.New("seat unavailable for requested segment")
