// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EduAccess Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"math/big"
	"time"

	"github.com/samber/oops"
)

// One-time password configuration. Codes are always six digits, drawn
// uniformly from [100000, 999999], so a leading zero can never truncate
// the code.
const (
	otpMin    = 100000
	otpRange  = 900000
	OTPExpiry = 15 * time.Minute
)

// OTPIssuer generates and verifies numeric one-time passwords. It is
// stateless; the issued code and expiry are persisted on the account by
// the caller.
type OTPIssuer struct{}

// NewOTPIssuer creates a new OTPIssuer.
func NewOTPIssuer() *OTPIssuer {
	return &OTPIssuer{}
}

// Issue generates a six-digit code expiring OTPExpiry after now.
//
// Both the admin-initiated reset and the self-service forgot-password
// flow use the same expiry window.
func (i *OTPIssuer) Issue(now time.Time) (code string, expiresAt time.Time, err error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpRange))
	if err != nil {
		return "", time.Time{}, oops.Code("AUTH_OTP_GENERATE_FAILED").Wrap(err)
	}

	value := otpMin + n.Int64()
	return big.NewInt(value).String(), now.Add(OTPExpiry), nil
}

// Verify reports whether the submitted code matches the stored code and
// has not expired at now. The caller is responsible for checking that the
// account is actually in the OTP-pending state; a cleared OTP must never
// verify, which the empty-code guard below enforces as a second line.
func (i *OTPIssuer) Verify(storedCode string, storedExpiry time.Time, submitted string, now time.Time) bool {
	if storedCode == "" || submitted == "" {
		return false
	}
	if now.After(storedExpiry) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(storedCode), []byte(submitted)) == 1
}
