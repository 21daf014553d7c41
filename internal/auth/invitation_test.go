// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EduAccess Contributors

package auth_test

import (
	"context"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/eduaccess/eduaccess/internal/auth"
	"github.com/eduaccess/eduaccess/internal/auth/mocks"
	"github.com/eduaccess/eduaccess/pkg/errutil"
)

func TestGenerateInvitationCode(t *testing.T) {
	t.Run("generates hex code of expected length", func(t *testing.T) {
		code, err := auth.GenerateInvitationCode()
		require.NoError(t, err)
		assert.Len(t, code, auth.InvitationCodeLength)

		_, decodeErr := hex.DecodeString(code)
		assert.NoError(t, decodeErr)
	})

	t.Run("generates unique codes", func(t *testing.T) {
		code1, err := auth.GenerateInvitationCode()
		require.NoError(t, err)
		code2, err := auth.GenerateInvitationCode()
		require.NoError(t, err)
		assert.NotEqual(t, code1, code2)
	})
}

func TestNewInvitation(t *testing.T) {
	t.Run("creates unused invitation", func(t *testing.T) {
		inv, err := auth.NewInvitation("abcd1234", []auth.Role{auth.RoleStudent})
		require.NoError(t, err)
		assert.Equal(t, "abcd1234", inv.Code)
		assert.Equal(t, []auth.Role{auth.RoleStudent}, inv.Roles)
		assert.False(t, inv.Used)
		assert.NotZero(t, inv.ID)
	})

	t.Run("rejects empty code", func(t *testing.T) {
		_, err := auth.NewInvitation("", []auth.Role{auth.RoleStudent})
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_INVITATION")
	})

	t.Run("rejects empty role set", func(t *testing.T) {
		_, err := auth.NewInvitation("abcd1234", nil)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_NO_ROLES")
	})
}

func TestNewInvitationGate(t *testing.T) {
	t.Run("rejects nil repository", func(t *testing.T) {
		gate, err := auth.NewInvitationGate(nil)
		require.Error(t, err)
		assert.Nil(t, gate)
		assert.Contains(t, err.Error(), "invitations repository is required")
	})
}

func TestInvitationGate_Redeem(t *testing.T) {
	ctx := context.Background()

	t.Run("returns granted roles", func(t *testing.T) {
		repo := mocks.NewMockInvitationRepository(t)
		gate, err := auth.NewInvitationGate(repo)
		require.NoError(t, err)

		repo.On("Redeem", ctx, "abcd1234").Return([]auth.Role{auth.RoleInstructor}, nil)

		roles, err := gate.Redeem(ctx, "abcd1234")
		require.NoError(t, err)
		assert.Equal(t, []auth.Role{auth.RoleInstructor}, roles)
	})

	t.Run("propagates not found for unknown or used codes", func(t *testing.T) {
		repo := mocks.NewMockInvitationRepository(t)
		gate, err := auth.NewInvitationGate(repo)
		require.NoError(t, err)

		repo.On("Redeem", ctx, "used0000").Return(nil, auth.ErrNotFound)

		roles, err := gate.Redeem(ctx, "used0000")
		require.Error(t, err)
		assert.Nil(t, roles)
		assert.True(t, errors.Is(err, auth.ErrNotFound))
	})
}

func TestInvitationGate_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("stores validated invitation", func(t *testing.T) {
		repo := mocks.NewMockInvitationRepository(t)
		gate, err := auth.NewInvitationGate(repo)
		require.NoError(t, err)

		var created *auth.Invitation
		repo.On("Create", ctx, mock.AnythingOfType("*auth.Invitation")).Run(func(args mock.Arguments) {
			created = args.Get(1).(*auth.Invitation)
		}).Return(nil)

		err = gate.Create(ctx, "abcd1234", []auth.Role{auth.RoleStudent, auth.RoleInstructor})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, "abcd1234", created.Code)
		assert.Equal(t, []auth.Role{auth.RoleStudent, auth.RoleInstructor}, created.Roles)
		assert.False(t, created.Used)
	})

	t.Run("rejects invalid invitation before touching storage", func(t *testing.T) {
		repo := mocks.NewMockInvitationRepository(t)
		gate, err := auth.NewInvitationGate(repo)
		require.NoError(t, err)

		err = gate.Create(ctx, "", []auth.Role{auth.RoleStudent})
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_INVITATION")
	})

	t.Run("propagates conflict on duplicate code", func(t *testing.T) {
		repo := mocks.NewMockInvitationRepository(t)
		gate, err := auth.NewInvitationGate(repo)
		require.NoError(t, err)

		repo.On("Create", ctx, mock.AnythingOfType("*auth.Invitation")).Return(auth.ErrConflict)

		err = gate.Create(ctx, "abcd1234", []auth.Role{auth.RoleStudent})
		require.Error(t, err)
		assert.True(t, errors.Is(err, auth.ErrConflict))
	})
}
