// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EduAccess Contributors

// Package auth is the credential and session core of eduaccess.
//
// # Domain Types
//
// Domain types (Account, Invitation, Session) should be created using
// their constructors:
//   - NewAccount - creates an Account with a validated username, hash, and role set
//   - NewInvitation - creates a single-use Invitation with a granted role set
//   - NewSession - binds an authenticated username to one active role
//
// Direct struct initialization bypasses validation and may create invalid
// state. Repository implementations receive pre-validated types from these
// constructors.
//
// # Services
//
// Service types coordinate domain operations:
//   - CredentialService - registration, login, OTP reset, profile setup
//   - AdminService - invitations, forced resets, role and account management
//   - InvitationGate - exactly-once redemption of invitation codes
//
// Services are created with New*Service constructors that validate
// dependencies.
//
// Plaintext passwords travel as []byte and are wiped with Wipe on every
// exit path.
package auth
