// Package repository implements the data-access layer: parameterized
// statements against the users and applications tables. This file defines
// the sentinel errors shared across repositories so handlers can map
// failures to responses without inspecting SQL errors. Anything that is
// not one of these sentinels is a store error and propagates unchanged.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no row: a credential
// miss, or a clone whose source application does not exist for the
// calling user. Handlers translate it into 401 or 404 depending on
// the operation.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when a write is rejected before touching
// the store because a required field is missing or malformed.
var ErrValidation = errors.New("validation failed")

// ErrInvalidStatus is returned when a status update names a value
// outside the vocabulary. The write is rejected without touching the
// store.
var ErrInvalidStatus = errors.New("invalid status")
