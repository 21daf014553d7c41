// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EduAccess Contributors

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// InvitationCodeLength is the length of a generated invitation code in
// characters. Codes are case-sensitive hex.
const InvitationCodeLength = 8

// Invitation is a single-use registration authorization carrying the role
// set granted to whoever redeems it. Used invitations are retained for
// audit, never reused and never deleted.
type Invitation struct {
	ID        ulid.ULID
	Code      string
	Roles     []Role
	Used      bool
	CreatedAt time.Time
}

// NewInvitation creates a validated, unused Invitation.
func NewInvitation(code string, roles []Role) (*Invitation, error) {
	if code == "" {
		return nil, oops.Code("AUTH_INVALID_INVITATION").Errorf("invitation code cannot be empty")
	}
	if len(roles) == 0 {
		return nil, oops.Code("AUTH_NO_ROLES").Errorf("invitation must grant at least one role")
	}

	return &Invitation{
		ID:        ulid.Make(),
		Code:      code,
		Roles:     roles,
		CreatedAt: time.Now(),
	}, nil
}

// GenerateInvitationCode creates a short random invitation code.
func GenerateInvitationCode() (string, error) {
	buf := make([]byte, InvitationCodeLength/2)
	if _, err := rand.Read(buf); err != nil {
		return "", oops.Code("AUTH_INVITATION_GENERATE_FAILED").Wrap(err)
	}
	return hex.EncodeToString(buf), nil
}

// InvitationRepository manages invitation persistence.
type InvitationRepository interface {
	// Create stores a fresh unused invitation. Returns ErrConflict on a
	// duplicate code.
	Create(ctx context.Context, invitation *Invitation) error

	// Redeem marks the invitation used and returns its granted roles in
	// a single atomic step. Returns ErrNotFound for an unknown or
	// already-used code, so two redemptions of the same code can never
	// both succeed.
	Redeem(ctx context.Context, code string) ([]Role, error)
}

// InvitationGate validates and consumes invitation codes.
type InvitationGate struct {
	invitations InvitationRepository
}

// NewInvitationGate creates a new InvitationGate.
func NewInvitationGate(invitations InvitationRepository) (*InvitationGate, error) {
	if invitations == nil {
		return nil, oops.Errorf("invitations repository is required")
	}
	return &InvitationGate{invitations: invitations}, nil
}

// Redeem consumes an unused invitation, returning the granted role set.
// Exact code match, exactly once.
func (g *InvitationGate) Redeem(ctx context.Context, code string) ([]Role, error) {
	roles, err := g.invitations.Redeem(ctx, code)
	if err != nil {
		return nil, err
	}
	return roles, nil
}

// Create stores a fresh invitation granting the given roles.
func (g *InvitationGate) Create(ctx context.Context, code string, roles []Role) error {
	invitation, err := NewInvitation(code, roles)
	if err != nil {
		return err
	}
	return g.invitations.Create(ctx, invitation)
}
