// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EduAccess Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/eduaccess/eduaccess/internal/auth"
)

// InvitationRepository implements auth.InvitationRepository using PostgreSQL.
type InvitationRepository struct {
	db Querier
}

// NewInvitationRepository creates a new InvitationRepository.
func NewInvitationRepository(db Querier) *InvitationRepository {
	return &InvitationRepository{db: db}
}

// Create stores a fresh unused invitation.
func (r *InvitationRepository) Create(ctx context.Context, invitation *auth.Invitation) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO invitations (id, code, roles, used, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		invitation.ID.String(),
		invitation.Code,
		auth.JoinRoles(invitation.Roles),
		invitation.Used,
		invitation.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("INVITATION_CODE_TAKEN").
				With("code", invitation.Code).
				Wrap(auth.ErrConflict)
		}
		return oops.Code("INVITATION_CREATE_FAILED").
			With("operation", "insert invitation").
			Wrap(err)
	}
	return nil
}

// Redeem marks an unused invitation used and returns its granted roles.
// The used = FALSE guard makes redemption exactly-once: a repeated or
// concurrent redemption sees no row and gets ErrNotFound.
func (r *InvitationRepository) Redeem(ctx context.Context, code string) ([]auth.Role, error) {
	var rolesStr string
	err := r.db.QueryRow(ctx, `
		UPDATE invitations SET used = TRUE
		WHERE code = $1 AND used = FALSE
		RETURNING roles
	`, code).Scan(&rolesStr)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("INVITATION_NOT_FOUND").
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("INVITATION_REDEEM_FAILED").
			With("operation", "redeem invitation").
			Wrap(err)
	}

	roles, err := auth.ParseRoles(rolesStr)
	if err != nil {
		return nil, oops.Code("INVITATION_CORRUPT_ROLES").
			Wrap(err)
	}
	return roles, nil
}
