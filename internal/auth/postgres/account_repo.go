// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EduAccess Contributors

// Package postgres implements the auth repositories using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/eduaccess/eduaccess/internal/auth"
)

// Querier is the subset of pgxpool.Pool used by the repositories. It is
// satisfied by *pgxpool.Pool and by pgxmock in tests.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AccountRepository implements auth.AccountRepository using PostgreSQL.
type AccountRepository struct {
	db Querier
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db Querier) *AccountRepository {
	return &AccountRepository{db: db}
}

// isUniqueViolation reports whether err is a unique-constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// IsEmpty reports whether no accounts exist yet.
func (r *AccountRepository) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count)
	if err != nil {
		return false, oops.Code("ACCOUNT_COUNT_FAILED").
			With("operation", "count accounts").
			Wrap(err)
	}
	return count == 0, nil
}

// Create stores a new account.
func (r *AccountRepository) Create(ctx context.Context, account *auth.Account) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO accounts (
			id, username, password_hash, roles,
			otp, otp_expires_at, otp_active,
			profile_complete, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		account.ID.String(),
		account.Username,
		account.PasswordHash,
		auth.JoinRoles(account.Roles),
		nullable(account.OTP),
		nullableTime(account.OTPExpiresAt),
		account.OTPActive,
		account.ProfileComplete,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("ACCOUNT_USERNAME_TAKEN").
				With("username", account.Username).
				Wrap(auth.ErrConflict)
		}
		return oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "insert account").
			With("username", account.Username).
			Wrap(err)
	}
	return nil
}

// GetByUsername retrieves an account by exact username.
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*auth.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, username, password_hash, roles,
		       email, first_name, middle_name, last_name, preferred_name,
		       otp, otp_expires_at, otp_active,
		       profile_complete, created_at, updated_at
		FROM accounts
		WHERE username = $1
	`, username)

	account, err := r.scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_FAILED").
			With("operation", "get account by username").
			With("username", username).
			Wrap(err)
	}
	return account, nil
}

// SetOTP puts the account into the OTP-pending state.
func (r *AccountRepository) SetOTP(ctx context.Context, username, code string, expiresAt time.Time) error {
	result, err := r.db.Exec(ctx, `
		UPDATE accounts SET otp = $2, otp_expires_at = $3, otp_active = TRUE, updated_at = $4
		WHERE username = $1
	`, username, code, expiresAt, time.Now())
	if err != nil {
		return oops.Code("ACCOUNT_SET_OTP_FAILED").
			With("operation", "set otp").
			With("username", username).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// ConsumeOTP atomically clears the OTP-pending state and stores the new
// password hash. The otp_active guard makes the read-check-write cycle
// single-statement: only one of two concurrent consumers can see an
// affected row.
func (r *AccountRepository) ConsumeOTP(ctx context.Context, username, passwordHash string) error {
	result, err := r.db.Exec(ctx, `
		UPDATE accounts SET
			password_hash = $2,
			otp = NULL,
			otp_expires_at = NULL,
			otp_active = FALSE,
			updated_at = $3
		WHERE username = $1 AND otp_active = TRUE
	`, username, passwordHash, time.Now())
	if err != nil {
		return oops.Code("ACCOUNT_CONSUME_OTP_FAILED").
			With("operation", "consume otp").
			With("username", username).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *AccountRepository) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	result, err := r.db.Exec(ctx, `
		UPDATE accounts SET password_hash = $2, updated_at = $3
		WHERE username = $1
	`, username, passwordHash, time.Now())
	if err != nil {
		return oops.Code("ACCOUNT_UPDATE_PASSWORD_FAILED").
			With("operation", "update password").
			With("username", username).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// UpdateRoles overwrites the role set.
func (r *AccountRepository) UpdateRoles(ctx context.Context, username string, roles []auth.Role) error {
	result, err := r.db.Exec(ctx, `
		UPDATE accounts SET roles = $2, updated_at = $3
		WHERE username = $1
	`, username, auth.JoinRoles(roles), time.Now())
	if err != nil {
		return oops.Code("ACCOUNT_UPDATE_ROLES_FAILED").
			With("operation", "update roles").
			With("username", username).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// UpdateProfile stores the profile fields and marks the profile complete.
func (r *AccountRepository) UpdateProfile(ctx context.Context, username string, profile auth.Profile) error {
	result, err := r.db.Exec(ctx, `
		UPDATE accounts SET
			email = $2,
			first_name = $3,
			middle_name = $4,
			last_name = $5,
			preferred_name = $6,
			profile_complete = TRUE,
			updated_at = $7
		WHERE username = $1
	`,
		username,
		profile.Email,
		profile.FirstName,
		profile.MiddleName,
		profile.LastName,
		profile.PreferredName,
		time.Now(),
	)
	if err != nil {
		return oops.Code("ACCOUNT_UPDATE_PROFILE_FAILED").
			With("operation", "update profile").
			With("username", username).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// Delete removes an account. Deleting an absent account is a no-op.
func (r *AccountRepository) Delete(ctx context.Context, username string) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM accounts WHERE username = $1
	`, username)
	if err != nil {
		return oops.Code("ACCOUNT_DELETE_FAILED").
			With("operation", "delete account").
			With("username", username).
			Wrap(err)
	}
	return nil
}

// List returns account summaries in storage order.
func (r *AccountRepository) List(ctx context.Context) ([]auth.AccountSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT username, first_name, last_name, roles
		FROM accounts
		ORDER BY created_at
	`)
	if err != nil {
		return nil, oops.Code("ACCOUNT_LIST_FAILED").
			With("operation", "list accounts").
			Wrap(err)
	}
	defer rows.Close()

	var summaries []auth.AccountSummary
	for rows.Next() {
		var (
			summary   auth.AccountSummary
			firstName *string
			lastName  *string
			rolesStr  string
		)
		if err := rows.Scan(&summary.Username, &firstName, &lastName, &rolesStr); err != nil {
			return nil, oops.Code("ACCOUNT_LIST_FAILED").
				With("operation", "scan account row").
				Wrap(err)
		}
		if firstName != nil {
			summary.FirstName = *firstName
		}
		if lastName != nil {
			summary.LastName = *lastName
		}
		roles, err := auth.ParseRoles(rolesStr)
		if err != nil {
			return nil, oops.Code("ACCOUNT_LIST_FAILED").
				With("username", summary.Username).
				Wrap(err)
		}
		summary.Roles = roles
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ACCOUNT_LIST_FAILED").
			With("operation", "iterate account rows").
			Wrap(err)
	}
	return summaries, nil
}

// scanAccount scans a single row into an Account.
// Callers are responsible for handling pgx.ErrNoRows.
func (r *AccountRepository) scanAccount(row pgx.Row) (*auth.Account, error) {
	var (
		idStr           string
		username        string
		passwordHash    string
		rolesStr        string
		email           *string
		firstName       *string
		middleName      *string
		lastName        *string
		preferredName   *string
		otp             *string
		otpExpiresAt    *time.Time
		otpActive       bool
		profileComplete bool
		createdAt       time.Time
		updatedAt       time.Time
	)

	err := row.Scan(
		&idStr,
		&username,
		&passwordHash,
		&rolesStr,
		&email,
		&firstName,
		&middleName,
		&lastName,
		&preferredName,
		&otp,
		&otpExpiresAt,
		&otpActive,
		&profileComplete,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("ACCOUNT_CORRUPT_ID").
			With("id", idStr).
			Wrap(err)
	}

	roles, err := auth.ParseRoles(rolesStr)
	if err != nil {
		return nil, err
	}

	account := &auth.Account{
		ID:              id,
		Username:        username,
		PasswordHash:    passwordHash,
		Roles:           roles,
		MiddleName:      middleName,
		PreferredName:   preferredName,
		OTPActive:       otpActive,
		ProfileComplete: profileComplete,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}
	if email != nil {
		account.Email = *email
	}
	if firstName != nil {
		account.FirstName = *firstName
	}
	if lastName != nil {
		account.LastName = *lastName
	}
	if otp != nil {
		account.OTP = *otp
	}
	if otpExpiresAt != nil {
		account.OTPExpiresAt = *otpExpiresAt
	}

	return account, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
