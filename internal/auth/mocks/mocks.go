// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EduAccess Contributors

// Package mocks provides testify mocks for the auth interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/eduaccess/eduaccess/internal/auth"
)

// MockAccountRepository is a mock type for the AccountRepository interface.
type MockAccountRepository struct {
	mock.Mock
}

// NewMockAccountRepository creates a new instance of MockAccountRepository.
func NewMockAccountRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAccountRepository {
	m := &MockAccountRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *MockAccountRepository) IsEmpty(ctx context.Context) (bool, error) {
	ret := _m.Called(ctx)
	return ret.Bool(0), ret.Error(1)
}

func (_m *MockAccountRepository) Create(ctx context.Context, account *auth.Account) error {
	ret := _m.Called(ctx, account)
	return ret.Error(0)
}

func (_m *MockAccountRepository) GetByUsername(ctx context.Context, username string) (*auth.Account, error) {
	ret := _m.Called(ctx, username)
	var r0 *auth.Account
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*auth.Account)
	}
	return r0, ret.Error(1)
}

func (_m *MockAccountRepository) SetOTP(ctx context.Context, username, code string, expiresAt time.Time) error {
	ret := _m.Called(ctx, username, code, expiresAt)
	return ret.Error(0)
}

func (_m *MockAccountRepository) ConsumeOTP(ctx context.Context, username, passwordHash string) error {
	ret := _m.Called(ctx, username, passwordHash)
	return ret.Error(0)
}

func (_m *MockAccountRepository) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	ret := _m.Called(ctx, username, passwordHash)
	return ret.Error(0)
}

func (_m *MockAccountRepository) UpdateRoles(ctx context.Context, username string, roles []auth.Role) error {
	ret := _m.Called(ctx, username, roles)
	return ret.Error(0)
}

func (_m *MockAccountRepository) UpdateProfile(ctx context.Context, username string, profile auth.Profile) error {
	ret := _m.Called(ctx, username, profile)
	return ret.Error(0)
}

func (_m *MockAccountRepository) Delete(ctx context.Context, username string) error {
	ret := _m.Called(ctx, username)
	return ret.Error(0)
}

func (_m *MockAccountRepository) List(ctx context.Context) ([]auth.AccountSummary, error) {
	ret := _m.Called(ctx)
	var r0 []auth.AccountSummary
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]auth.AccountSummary)
	}
	return r0, ret.Error(1)
}

// MockInvitationRepository is a mock type for the InvitationRepository interface.
type MockInvitationRepository struct {
	mock.Mock
}

// NewMockInvitationRepository creates a new instance of MockInvitationRepository.
func NewMockInvitationRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockInvitationRepository {
	m := &MockInvitationRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *MockInvitationRepository) Create(ctx context.Context, invitation *auth.Invitation) error {
	ret := _m.Called(ctx, invitation)
	return ret.Error(0)
}

func (_m *MockInvitationRepository) Redeem(ctx context.Context, code string) ([]auth.Role, error) {
	ret := _m.Called(ctx, code)
	var r0 []auth.Role
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]auth.Role)
	}
	return r0, ret.Error(1)
}

// MockPasswordHasher is a mock type for the PasswordHasher interface.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a new instance of MockPasswordHasher.
func NewMockPasswordHasher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *MockPasswordHasher) Hash(password []byte) (string, error) {
	ret := _m.Called(password)
	return ret.String(0), ret.Error(1)
}

func (_m *MockPasswordHasher) Verify(password []byte, hash string) bool {
	ret := _m.Called(password, hash)
	return ret.Bool(0)
}
