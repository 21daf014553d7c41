// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EduAccess Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a unique constraint (username or
// invitation code) is violated.
var ErrConflict = errors.New("already exists")
