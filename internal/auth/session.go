// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EduAccess Contributors

package auth

import (
	"github.com/samber/oops"
)

// Session is the ephemeral, process-local binding of an authenticated
// username to one active role. It is never persisted; it ends when the
// user logs out or leaves the role menu.
type Session struct {
	Username string
	Role     Role
}

// NewSession binds a username to an active role.
func NewSession(username string, role Role) (*Session, error) {
	if username == "" {
		return nil, oops.Code("AUTH_INVALID_SESSION").Errorf("username cannot be empty")
	}
	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}
	return &Session{Username: username, Role: role}, nil
}

// IsAdmin reports whether the session is bound to the admin role.
// Admin sessions short-circuit into the administrative menu instead of a
// generic role menu.
func (s *Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// BindSession resolves the session for an account without a selection
// step. An account with no roles has no usable session, which is a
// terminal error, never silent success. Multi-role accounts return
// (nil, nil): the caller must drive role selection via ChooseRole.
func BindSession(account *Account) (*Session, error) {
	switch len(account.Roles) {
	case 0:
		return nil, oops.Code("AUTH_NO_ROLES").
			With("username", account.Username).
			Errorf("no roles assigned to this account")
	case 1:
		return NewSession(account.Username, account.Roles[0])
	default:
		return nil, nil
	}
}

// ChooseRole applies one step of the role-selection menu: choice 0 aborts
// session establishment without error (nil, nil), 1..len(roles) binds the
// 1-indexed role, and anything else is a validation error so the menu can
// re-prompt.
func ChooseRole(username string, roles []Role, choice int) (*Session, error) {
	if choice == 0 {
		return nil, nil
	}
	if choice < 0 || choice > len(roles) {
		return nil, oops.Code("AUTH_VALIDATION").
			With("choice", choice).
			Errorf("choice must be between 0 and %d", len(roles))
	}
	return NewSession(username, roles[choice-1])
}
