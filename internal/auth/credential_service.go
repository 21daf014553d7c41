// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EduAccess Contributors

package auth

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/samber/oops"
)

// dummyPasswordHash is used when a user doesn't exist to prevent timing attacks.
// We still run password verification to make response time consistent.
// This is NOT a real credential - it's a fake hash that will never match any password.
//
//nolint:gosec // G101: This is an intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// LoginResult is the outcome of a successful credential check.
//
// When OTPPending is true the password was not checked at all: the
// account is in a forced-reset state and the caller must route the user
// into the OTP reset flow. Password login and OTP reset are mutually
// exclusive per account.
type LoginResult struct {
	Account    *Account
	OTPPending bool
}

// CredentialService orchestrates registration, login, OTP resets, and
// profile setup.
type CredentialService struct {
	accounts AccountRepository
	gate     *InvitationGate
	hasher   PasswordHasher
	otp      *OTPIssuer
	logger   *slog.Logger
	now      func() time.Time
}

// NewCredentialService creates a CredentialService with a no-op logger.
// Returns an error if any required dependency is nil.
func NewCredentialService(accounts AccountRepository, gate *InvitationGate, hasher PasswordHasher, otp *OTPIssuer) (*CredentialService, error) {
	return NewCredentialServiceWithLogger(accounts, gate, hasher, otp, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// NewCredentialServiceWithLogger creates a CredentialService with the
// provided logger. Returns an error if any dependency is nil.
func NewCredentialServiceWithLogger(accounts AccountRepository, gate *InvitationGate, hasher PasswordHasher, otp *OTPIssuer, logger *slog.Logger) (*CredentialService, error) {
	if accounts == nil {
		return nil, oops.Errorf("accounts repository is required")
	}
	if gate == nil {
		return nil, oops.Errorf("invitation gate is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if otp == nil {
		return nil, oops.Errorf("otp issuer is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &CredentialService{
		accounts: accounts,
		gate:     gate,
		hasher:   hasher,
		otp:      otp,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Register redeems an invitation code and creates the account with the
// invitation's granted role set. The new account starts with an
// incomplete profile; the first login forces profile setup.
//
// The invitation is redeemed only after every other way the registration
// can fail has been checked, so a rejected username or password leaves
// the code redeemable for another attempt.
func (s *CredentialService) Register(ctx context.Context, invitationCode, username string, password []byte) (*Account, error) {
	defer Wipe(password)

	if err := ValidateUsername(username); err != nil {
		return nil, err
	}

	if _, err := s.accounts.GetByUsername(ctx, username); err == nil {
		return nil, oops.Code("AUTH_USERNAME_TAKEN").
			With("username", username).
			Wrap(ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "check username availability").
			Wrap(err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	roles, err := s.gate.Redeem(ctx, invitationCode)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("AUTH_INVALID_INVITATION").
				Wrap(ErrNotFound)
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "redeem invitation").
			Wrap(err)
	}

	account, err := NewAccount(username, hash, roles)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, ErrConflict) {
			// Lost a race with a concurrent registration for the same
			// username after the availability check.
			return nil, oops.Code("AUTH_USERNAME_TAKEN").
				With("username", username).
				Wrap(ErrConflict)
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "create account").
			Wrap(err)
	}

	s.logger.Info("account registered",
		"event", "account_registered",
		"username", username,
		"roles", JoinRoles(roles),
	)

	return account, nil
}

// Login checks a username/password pair.
//
// If the account is OTP-pending the password is not checked and the
// result routes the caller to the OTP reset flow instead. Unknown
// usernames and wrong passwords produce the same error, and password
// verification always runs (against a dummy hash when the user does not
// exist) to keep response time constant.
func (s *CredentialService) Login(ctx context.Context, username string, password []byte) (*LoginResult, error) {
	defer Wipe(password)

	account, lookupErr := s.accounts.GetByUsername(ctx, username)

	var targetHash string
	var accountExists bool

	if lookupErr != nil {
		if errors.Is(lookupErr, ErrNotFound) {
			targetHash = dummyPasswordHash
		} else {
			return nil, oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get account by username").
				Wrap(lookupErr)
		}
	} else {
		if account.OTPActive {
			// Forced-reset state: the permanent password is not
			// consulted at all.
			return &LoginResult{Account: account, OTPPending: true}, nil
		}
		targetHash = account.PasswordHash
		accountExists = true
	}

	valid := s.hasher.Verify(password, targetHash)

	if !accountExists || !valid {
		return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid username or password")
	}

	return &LoginResult{Account: account}, nil
}

// CompleteOTPReset finishes a forced or self-service reset: it verifies
// the submitted one-time code, then atomically clears the OTP-pending
// state and stores the hash of the new password. A code that was already
// consumed (including by a concurrent attempt) fails verification.
func (s *CredentialService) CompleteOTPReset(ctx context.Context, username, submittedOTP string, newPassword, confirmPassword []byte) error {
	defer Wipe(newPassword)
	defer Wipe(confirmPassword)

	if !bytes.Equal(newPassword, confirmPassword) {
		return oops.Code("AUTH_PASSWORD_MISMATCH").Errorf("passwords do not match")
	}

	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("AUTH_INVALID_OTP").Errorf("invalid or expired one-time password")
		}
		return oops.Code("AUTH_OTP_RESET_FAILED").
			With("operation", "get account by username").
			Wrap(err)
	}

	if !account.OTPActive || !s.otp.Verify(account.OTP, account.OTPExpiresAt, submittedOTP, s.now()) {
		return oops.Code("AUTH_INVALID_OTP").Errorf("invalid or expired one-time password")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.accounts.ConsumeOTP(ctx, username, hash); err != nil {
		if errors.Is(err, ErrNotFound) {
			// Lost the race: another attempt consumed the code first.
			return oops.Code("AUTH_INVALID_OTP").Errorf("invalid or expired one-time password")
		}
		return oops.Code("AUTH_OTP_RESET_FAILED").
			With("operation", "consume otp").
			Wrap(err)
	}

	s.logger.Info("password reset completed",
		"event", "otp_reset_completed",
		"username", username,
	)

	return nil
}

// ForgotPassword starts a self-service reset. It returns the issued
// one-time code for delivery; delivery itself is out of scope.
//
// Unknown usernames return an empty code and no error, matching the
// enumeration-safe behavior of Login: the caller shows the same message
// either way and the subsequent OTP entry simply fails.
func (s *CredentialService) ForgotPassword(ctx context.Context, username string) (string, error) {
	_, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", oops.Code("AUTH_FORGOT_PASSWORD_FAILED").
			With("operation", "get account by username").
			Wrap(err)
	}

	code, expiresAt, err := s.otp.Issue(s.now())
	if err != nil {
		return "", err
	}

	if err := s.accounts.SetOTP(ctx, username, code, expiresAt); err != nil {
		return "", oops.Code("AUTH_FORGOT_PASSWORD_FAILED").
			With("operation", "set otp").
			Wrap(err)
	}

	s.logger.Info("self-service reset issued",
		"event", "otp_issued",
		"username", username,
	)

	return code, nil
}

// SetupProfile stores the required profile fields and marks the profile
// complete. Login reports ProfileComplete=false until this succeeds; the
// caller must not establish a session before then.
func (s *CredentialService) SetupProfile(ctx context.Context, username string, profile Profile) error {
	if err := s.accounts.UpdateProfile(ctx, username, profile); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("AUTH_ACCOUNT_NOT_FOUND").
				With("username", username).
				Wrap(ErrNotFound)
		}
		return oops.Code("AUTH_PROFILE_UPDATE_FAILED").
			With("operation", "update profile").
			Wrap(err)
	}
	return nil
}
