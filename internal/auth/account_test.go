// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EduAccess Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduaccess/eduaccess/internal/auth"
	"github.com/eduaccess/eduaccess/pkg/errutil"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    auth.Role
		wantErr bool
	}{
		{name: "admin", input: "admin", want: auth.RoleAdmin},
		{name: "instructor", input: "instructor", want: auth.RoleInstructor},
		{name: "student", input: "student", want: auth.RoleStudent},
		{name: "case insensitive", input: "Admin", want: auth.RoleAdmin},
		{name: "surrounding whitespace", input: "  student ", want: auth.RoleStudent},
		{name: "unknown role", input: "superuser", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := auth.ParseRole(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, "AUTH_UNKNOWN_ROLE")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, role)
		})
	}
}

func TestParseRoles(t *testing.T) {
	t.Run("parses comma-separated list", func(t *testing.T) {
		roles, err := auth.ParseRoles("admin,student")
		require.NoError(t, err)
		assert.Equal(t, []auth.Role{auth.RoleAdmin, auth.RoleStudent}, roles)
	})

	t.Run("preserves order and drops duplicates", func(t *testing.T) {
		roles, err := auth.ParseRoles("student, admin, student")
		require.NoError(t, err)
		assert.Equal(t, []auth.Role{auth.RoleStudent, auth.RoleAdmin}, roles)
	})

	t.Run("skips blank segments", func(t *testing.T) {
		roles, err := auth.ParseRoles("instructor, ,")
		require.NoError(t, err)
		assert.Equal(t, []auth.Role{auth.RoleInstructor}, roles)
	})

	t.Run("rejects empty list", func(t *testing.T) {
		_, err := auth.ParseRoles("")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_NO_ROLES")
	})

	t.Run("rejects unknown tag", func(t *testing.T) {
		_, err := auth.ParseRoles("admin,superuser")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_UNKNOWN_ROLE")
	})
}

func TestJoinRoles(t *testing.T) {
	assert.Equal(t, "admin,student", auth.JoinRoles([]auth.Role{auth.RoleAdmin, auth.RoleStudent}))
	assert.Equal(t, "", auth.JoinRoles(nil))
}

func TestHasRole(t *testing.T) {
	roles := []auth.Role{auth.RoleInstructor, auth.RoleStudent}
	assert.True(t, auth.HasRole(roles, auth.RoleStudent))
	assert.False(t, auth.HasRole(roles, auth.RoleAdmin))
	assert.False(t, auth.HasRole(nil, auth.RoleAdmin))
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{name: "valid simple", username: "alice", wantErr: false},
		{name: "valid with numbers", username: "alice123", wantErr: false},
		{name: "valid with underscore", username: "alice_smith", wantErr: false},
		{name: "minimum length", username: "abc", wantErr: false},
		{name: "maximum length", username: strings.Repeat("a", 30), wantErr: false},
		{name: "empty", username: "", wantErr: true},
		{name: "too short", username: "ab", wantErr: true},
		{name: "too long", username: strings.Repeat("a", 31), wantErr: true},
		{name: "starts with number", username: "1alice", wantErr: true},
		{name: "starts with underscore", username: "_alice", wantErr: true},
		{name: "contains hyphen", username: "alice-smith", wantErr: true},
		{name: "contains space", username: "alice smith", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ValidateUsername(tt.username)
			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, "AUTH_INVALID_USERNAME")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewAccount(t *testing.T) {
	t.Run("creates account with incomplete profile", func(t *testing.T) {
		account, err := auth.NewAccount("alice", "$argon2id$hash", []auth.Role{auth.RoleStudent})
		require.NoError(t, err)
		assert.Equal(t, "alice", account.Username)
		assert.Equal(t, []auth.Role{auth.RoleStudent}, account.Roles)
		assert.False(t, account.ProfileComplete)
		assert.False(t, account.OTPActive)
		assert.NotZero(t, account.ID)
		assert.False(t, account.CreatedAt.IsZero())
	})

	t.Run("rejects invalid username", func(t *testing.T) {
		_, err := auth.NewAccount("1bad", "$argon2id$hash", []auth.Role{auth.RoleStudent})
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_USERNAME")
	})

	t.Run("rejects empty hash", func(t *testing.T) {
		_, err := auth.NewAccount("alice", "", []auth.Role{auth.RoleStudent})
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_HASH")
	})

	t.Run("rejects empty role set", func(t *testing.T) {
		_, err := auth.NewAccount("alice", "$argon2id$hash", nil)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_NO_ROLES")
	})
}

func TestNewProfile(t *testing.T) {
	t.Run("valid profile with all fields", func(t *testing.T) {
		profile, err := auth.NewProfile("alice@example.edu", "Alice", "May", "Smith", "Ali")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.edu", profile.Email)
		require.NotNil(t, profile.MiddleName)
		assert.Equal(t, "May", *profile.MiddleName)
		require.NotNil(t, profile.PreferredName)
		assert.Equal(t, "Ali", *profile.PreferredName)
	})

	t.Run("blank optional fields stay nil", func(t *testing.T) {
		profile, err := auth.NewProfile("alice@example.edu", "Alice", "", "Smith", "  ")
		require.NoError(t, err)
		assert.Nil(t, profile.MiddleName)
		assert.Nil(t, profile.PreferredName)
	})

	t.Run("missing email", func(t *testing.T) {
		_, err := auth.NewProfile(" ", "Alice", "", "Smith", "")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_VALIDATION")
	})

	t.Run("missing first name", func(t *testing.T) {
		_, err := auth.NewProfile("alice@example.edu", "", "", "Smith", "")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_VALIDATION")
	})

	t.Run("missing last name", func(t *testing.T) {
		_, err := auth.NewProfile("alice@example.edu", "Alice", "", "", "")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_VALIDATION")
	})
}
