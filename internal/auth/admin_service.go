// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EduAccess Contributors

package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/samber/oops"
)

// inviteCodeAttempts bounds code regeneration when a freshly generated
// invitation code collides with an existing one.
const inviteCodeAttempts = 5

// AdminService provides admin-only account mutations. Authorization is
// the caller's responsibility: these operations assume the caller already
// holds an authenticated admin session and do not re-check credentials.
type AdminService struct {
	accounts AccountRepository
	gate     *InvitationGate
	otp      *OTPIssuer
	logger   *slog.Logger
	now      func() time.Time
}

// NewAdminService creates an AdminService with a no-op logger.
// Returns an error if any required dependency is nil.
func NewAdminService(accounts AccountRepository, gate *InvitationGate, otp *OTPIssuer) (*AdminService, error) {
	return NewAdminServiceWithLogger(accounts, gate, otp, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// NewAdminServiceWithLogger creates an AdminService with the provided
// logger. Returns an error if any dependency is nil.
func NewAdminServiceWithLogger(accounts AccountRepository, gate *InvitationGate, otp *OTPIssuer, logger *slog.Logger) (*AdminService, error) {
	if accounts == nil {
		return nil, oops.Errorf("accounts repository is required")
	}
	if gate == nil {
		return nil, oops.Errorf("invitation gate is required")
	}
	if otp == nil {
		return nil, oops.Errorf("otp issuer is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &AdminService{
		accounts: accounts,
		gate:     gate,
		otp:      otp,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// InviteUser creates an invitation granting the given role set and
// returns its code. A code collision is retried with a fresh code rather
// than failing the operation.
func (s *AdminService) InviteUser(ctx context.Context, roles []Role) (string, error) {
	if len(roles) == 0 {
		return "", oops.Code("AUTH_NO_ROLES").Errorf("invitation must grant at least one role")
	}

	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		code, err := GenerateInvitationCode()
		if err != nil {
			return "", err
		}

		err = s.gate.Create(ctx, code, roles)
		if err == nil {
			s.logger.Info("invitation created",
				"event", "invitation_created",
				"roles", JoinRoles(roles),
			)
			return code, nil
		}
		if errors.Is(err, ErrConflict) {
			continue
		}
		return "", oops.Code("AUTH_INVITE_FAILED").
			With("operation", "create invitation").
			Wrap(err)
	}

	return "", oops.Code("AUTH_INVITE_FAILED").
		With("attempts", inviteCodeAttempts).
		Errorf("could not generate a unique invitation code")
}

// ResetUserPassword puts the target account into the OTP-pending state
// with a freshly issued code and returns that code. The old password is
// not required; it stops working until the reset completes.
func (s *AdminService) ResetUserPassword(ctx context.Context, username string) (string, error) {
	if _, err := s.accounts.GetByUsername(ctx, username); err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", oops.Code("AUTH_ACCOUNT_NOT_FOUND").
				With("username", username).
				Wrap(ErrNotFound)
		}
		return "", oops.Code("AUTH_RESET_FAILED").
			With("operation", "get account by username").
			Wrap(err)
	}

	code, expiresAt, err := s.otp.Issue(s.now())
	if err != nil {
		return "", err
	}

	if err := s.accounts.SetOTP(ctx, username, code, expiresAt); err != nil {
		return "", oops.Code("AUTH_RESET_FAILED").
			With("operation", "set otp").
			Wrap(err)
	}

	s.logger.Info("admin reset issued",
		"event", "otp_issued",
		"username", username,
	)

	return code, nil
}

// ModifyUserRoles overwrites the account's role set. The set must be
// non-empty and contain only known role tags; unknown tags are rejected
// before anything is persisted.
func (s *AdminService) ModifyUserRoles(ctx context.Context, username string, roles []Role) error {
	if len(roles) == 0 {
		return oops.Code("AUTH_NO_ROLES").Errorf("at least one role is required")
	}
	for _, role := range roles {
		if _, err := ParseRole(string(role)); err != nil {
			return err
		}
	}

	if err := s.accounts.UpdateRoles(ctx, username, roles); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("AUTH_ACCOUNT_NOT_FOUND").
				With("username", username).
				Wrap(ErrNotFound)
		}
		return oops.Code("AUTH_ROLES_UPDATE_FAILED").
			With("operation", "update roles").
			Wrap(err)
	}

	s.logger.Info("roles modified",
		"event", "roles_modified",
		"username", username,
		"roles", JoinRoles(roles),
	)

	return nil
}

// DeleteUserAccount removes the account. The caller is expected to have
// confirmed the deletion with the operator; once invoked it is
// unconditional and irreversible.
func (s *AdminService) DeleteUserAccount(ctx context.Context, username string) error {
	if _, err := s.accounts.GetByUsername(ctx, username); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("AUTH_ACCOUNT_NOT_FOUND").
				With("username", username).
				Wrap(ErrNotFound)
		}
		return oops.Code("AUTH_DELETE_FAILED").
			With("operation", "get account by username").
			Wrap(err)
	}

	if err := s.accounts.Delete(ctx, username); err != nil {
		return oops.Code("AUTH_DELETE_FAILED").
			With("operation", "delete account").
			Wrap(err)
	}

	s.logger.Info("account deleted",
		"event", "account_deleted",
		"username", username,
	)

	return nil
}

// ListUsers returns account summaries in storage order.
func (s *AdminService) ListUsers(ctx context.Context) ([]AccountSummary, error) {
	summaries, err := s.accounts.List(ctx)
	if err != nil {
		return nil, oops.Code("AUTH_LIST_FAILED").
			With("operation", "list accounts").
			Wrap(err)
	}
	return summaries, nil
}
