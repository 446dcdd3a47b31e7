// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and services to distinguish between different failure
// scenarios without inspecting driver-specific errors.
package repository

import "errors"

// ErrDuplicate is returned when an insert violates a unique key, e.g. a
// second like row for the same (actor, target, kind) or a username or
// email that is already taken. The toggle path treats it as "another
// concurrent toggle won"; account creation treats it as a 409.
var ErrDuplicate = errors.New("duplicate key")

// ErrUserExists is returned when registration collides with an existing
// username or email.
var ErrUserExists = errors.New("username or email already exists")
