// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EduAccess Contributors

package auth

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Role is a capability tag. The set is closed: stored strings are mapped
// through ParseRole and anything unrecognized is a validation error, never
// silently carried along.
type Role string

// Known roles.
const (
	RoleAdmin      Role = "admin"
	RoleInstructor Role = "instructor"
	RoleStudent    Role = "student"
)

// ParseRole maps a stored or user-entered tag to a Role.
// Matching is case-insensitive; surrounding whitespace is ignored.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, nil
	case "instructor":
		return RoleInstructor, nil
	case "student":
		return RoleStudent, nil
	default:
		return "", oops.Code("AUTH_UNKNOWN_ROLE").
			With("role", s).
			Errorf("unknown role %q", s)
	}
}

// ParseRoles parses a comma-separated role list, preserving order and
// dropping duplicates. An empty list or any unknown tag is an error.
func ParseRoles(s string) ([]Role, error) {
	var roles []Role
	seen := make(map[Role]bool)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		role, err := ParseRole(part)
		if err != nil {
			return nil, err
		}
		if seen[role] {
			continue
		}
		seen[role] = true
		roles = append(roles, role)
	}
	if len(roles) == 0 {
		return nil, oops.Code("AUTH_NO_ROLES").Errorf("at least one role is required")
	}
	return roles, nil
}

// JoinRoles renders a role list in its stored comma-separated form.
func JoinRoles(roles []Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}

// HasRole reports whether the set contains the role.
func HasRole(roles []Role, role Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// Username validation constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
)

// usernameRegex matches usernames that:
// - Start with a letter (a-z, A-Z)
// - Contain only letters, numbers, and underscores
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// ValidateUsername validates a username against rules.
// Username requirements:
// - Length: MinUsernameLength to MaxUsernameLength characters
// - Must start with a letter
// - Can contain only letters (a-z, A-Z), numbers (0-9), and underscores (_)
func ValidateUsername(username string) error {
	if username == "" {
		return oops.Code("AUTH_INVALID_USERNAME").Errorf("username cannot be empty")
	}
	if len(username) < MinUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("min", MinUsernameLength).
			Errorf("username must be at least %d characters", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("max", MaxUsernameLength).
			Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return oops.Code("AUTH_INVALID_USERNAME").
			Errorf("username must start with a letter and contain only letters, numbers, and underscores")
	}
	return nil
}

// Account is an identity record. The username is immutable once created.
//
// While a reset is pending, OTPActive is true and OTP/OTPExpiresAt are
// set; all three are cleared atomically when the reset completes.
type Account struct {
	ID              ulid.ULID
	Username        string
	PasswordHash    string
	Roles           []Role
	Email           string
	FirstName       string
	MiddleName      *string
	LastName        string
	PreferredName   *string
	OTP             string
	OTPExpiresAt    time.Time
	OTPActive       bool
	ProfileComplete bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewAccount creates a validated Account with the given credentials and
// role set. The profile starts incomplete.
func NewAccount(username, passwordHash string, roles []Role) (*Account, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("AUTH_INVALID_HASH").Errorf("password hash cannot be empty")
	}
	if len(roles) == 0 {
		return nil, oops.Code("AUTH_NO_ROLES").Errorf("account must have at least one role")
	}

	now := time.Now()
	return &Account{
		ID:           ulid.Make(),
		Username:     username,
		PasswordHash: passwordHash,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Profile holds the personal fields collected during profile setup.
// MiddleName and PreferredName are optional and stay nil when blank; the
// distinction between nil and empty string matters for display downstream.
type Profile struct {
	Email         string
	FirstName     string
	MiddleName    *string
	LastName      string
	PreferredName *string
}

// NewProfile validates the required fields and normalizes the optional
// ones, mapping blank input to nil.
func NewProfile(email, firstName, middleName, lastName, preferredName string) (Profile, error) {
	if strings.TrimSpace(email) == "" {
		return Profile{}, oops.Code("AUTH_VALIDATION").Errorf("email is required")
	}
	if strings.TrimSpace(firstName) == "" {
		return Profile{}, oops.Code("AUTH_VALIDATION").Errorf("first name is required")
	}
	if strings.TrimSpace(lastName) == "" {
		return Profile{}, oops.Code("AUTH_VALIDATION").Errorf("last name is required")
	}

	return Profile{
		Email:         email,
		FirstName:     firstName,
		MiddleName:    optional(middleName),
		LastName:      lastName,
		PreferredName: optional(preferredName),
	}, nil
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// AccountSummary is the read-only row returned by List.
type AccountSummary struct {
	Username  string
	FirstName string
	LastName  string
	Roles     []Role
}

// AccountRepository manages account persistence.
//
// Mutations are single-statement: a storage failure aborts the operation
// without partial effect.
type AccountRepository interface {
	// IsEmpty reports whether no accounts exist yet.
	IsEmpty(ctx context.Context) (bool, error)

	// Create stores a new account. Returns ErrConflict on a duplicate
	// username.
	Create(ctx context.Context, account *Account) error

	// GetByUsername retrieves an account by exact username.
	GetByUsername(ctx context.Context, username string) (*Account, error)

	// SetOTP puts the account into the OTP-pending state with the given
	// code and expiry.
	SetOTP(ctx context.Context, username, code string, expiresAt time.Time) error

	// ConsumeOTP atomically clears the OTP-pending state and stores the
	// new password hash. Returns ErrNotFound if the account is not
	// OTP-pending (including when a concurrent reset already consumed
	// the code).
	ConsumeOTP(ctx context.Context, username, passwordHash string) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, username, passwordHash string) error

	// UpdateRoles overwrites the role set.
	UpdateRoles(ctx context.Context, username string, roles []Role) error

	// UpdateProfile stores the profile fields and marks the profile
	// complete.
	UpdateProfile(ctx context.Context, username string, profile Profile) error

	// Delete removes an account. Deleting an absent account is a no-op.
	Delete(ctx context.Context, username string) error

	// List returns account summaries in storage order.
	List(ctx context.Context) ([]AccountSummary, error)
}
