// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EduAccess Contributors

package console

import (
	"bytes"
	"context"

	"github.com/samber/oops"

	"github.com/eduaccess/eduaccess/internal/auth"
)

// hasCode reports whether err carries the given oops error code.
func hasCode(err error, code string) bool {
	oopsErr, ok := oops.AsOops(err)
	return ok && oopsErr.Code() == code
}

// userFlow presents the register / login / forgot-password menu.
func (c *Console) userFlow(ctx context.Context) {
	c.println("-------------------------------------")
	c.println("Welcome to the User Flow!")
	c.println("-------------------------------------")
	c.println("What would you like to do?")
	c.println("1. Register")
	c.println("2. Login")
	c.println("3. Forgot Password")

	choice, err := c.prompt("Enter your choice: ")
	if err != nil {
		return
	}

	switch choice {
	case "1":
		c.register(ctx)
	case "2":
		c.login(ctx)
	case "3":
		c.forgotPassword(ctx)
	default:
		c.println("Invalid choice.")
	}
}

// register runs invitation-gated registration.
func (c *Console) register(ctx context.Context) {
	c.println("-------------------------------------")
	c.println("User Registration")
	c.println("-------------------------------------")

	code, err := c.prompt("Enter invitation code: ")
	if err != nil {
		return
	}
	username, err := c.prompt("Enter Username: ")
	if err != nil {
		return
	}
	password, err := c.promptPassword("Enter Password: ")
	if err != nil {
		return
	}
	confirm, err := c.promptPassword("Confirm Password: ")
	if err != nil {
		auth.Wipe(password)
		return
	}

	if !bytes.Equal(password, confirm) {
		auth.Wipe(password)
		auth.Wipe(confirm)
		c.println("Passwords do not match. Registration failed.")
		return
	}
	auth.Wipe(confirm)

	// Register wipes the password buffer on every path.
	_, err = c.credentials.Register(ctx, code, username, password)
	if err != nil {
		switch {
		case hasCode(err, "AUTH_INVALID_INVITATION"):
			c.println("Invalid or used invitation code. Registration failed.")
		case hasCode(err, "AUTH_USERNAME_TAKEN"):
			c.println("Username already exists. Please choose another.")
		case hasCode(err, "AUTH_INVALID_USERNAME"):
			c.println("Username is invalid. It must be 3-30 characters, start with a letter, and contain only letters, numbers, and underscores.")
		case hasCode(err, "AUTH_EMPTY_PASSWORD"):
			c.println("Password cannot be empty. Registration failed.")
		default:
			c.reportError("Registration failed. Please try again.", err)
		}
		return
	}

	if c.metrics != nil {
		c.metrics.RegistrationsTotal.Inc()
	}

	c.println("-------------------------------------")
	c.println("Registration successful. Please log in to set up your profile.")
	c.println("-------------------------------------")
}

// login authenticates a user and routes into profile setup, the OTP
// reset path, or a role session.
func (c *Console) login(ctx context.Context) {
	c.println("-------------------------------------")
	c.println("User Login")
	c.println("-------------------------------------")

	username, err := c.prompt("Enter Username: ")
	if err != nil {
		return
	}
	password, err := c.promptPassword("Enter Password: ")
	if err != nil {
		return
	}

	result, err := c.credentials.Login(ctx, username, password)
	if err != nil {
		if c.metrics != nil {
			c.metrics.LoginsTotal.WithLabelValues("failure").Inc()
		}
		if hasCode(err, "AUTH_INVALID_CREDENTIALS") {
			c.println("Invalid credentials. Try again.")
			return
		}
		c.reportError("Login failed. Please try again.", err)
		return
	}

	if result.OTPPending {
		c.println("Your password has been reset. Please enter the one-time password provided to you.")
		c.otpReset(ctx, username)
		return
	}

	if c.metrics != nil {
		c.metrics.LoginsTotal.WithLabelValues("success").Inc()
	}
	c.println("Login successful.")

	if !result.Account.ProfileComplete {
		if !c.setupProfile(ctx, username) {
			return
		}
	}

	c.startSession(ctx, result.Account)
}

// otpReset collects a one-time password and a confirmed new password,
// re-prompting while the confirmation does not match.
func (c *Console) otpReset(ctx context.Context, username string) {
	otp, err := c.prompt("Enter OTP: ")
	if err != nil {
		return
	}

	for {
		newPassword, err := c.promptPassword("Enter new password: ")
		if err != nil {
			return
		}
		confirm, err := c.promptPassword("Confirm new password: ")
		if err != nil {
			auth.Wipe(newPassword)
			return
		}

		// CompleteOTPReset wipes both buffers on every path.
		err = c.credentials.CompleteOTPReset(ctx, username, otp, newPassword, confirm)
		switch {
		case err == nil:
			c.println("Password reset successful. You can now log in with your new password.")
			return
		case hasCode(err, "AUTH_PASSWORD_MISMATCH"):
			c.println("Passwords do not match. Please try again.")
		case hasCode(err, "AUTH_INVALID_OTP"):
			c.println("Invalid or expired OTP. Please contact an administrator.")
			return
		case hasCode(err, "AUTH_EMPTY_PASSWORD"):
			c.println("Password cannot be empty. Please try again.")
		default:
			c.reportError("Password reset failed. Please try again.", err)
			return
		}
	}
}

// forgotPassword starts a self-service reset. The confirmation message
// is the same whether or not the account exists.
func (c *Console) forgotPassword(ctx context.Context) {
	username, err := c.prompt("Enter your username: ")
	if err != nil {
		return
	}

	code, err := c.credentials.ForgotPassword(ctx, username)
	if err != nil {
		c.reportError("Password reset request failed. Please try again.", err)
		return
	}

	c.println("If an account with that username exists, a one-time password has been sent to its email address.")
	if code != "" {
		// Real delivery is out of scope; the code is shown in place of
		// the email.
		c.printf("(simulated email) Your OTP: %s\n", code)
		if c.metrics != nil {
			c.metrics.OTPResetsTotal.WithLabelValues("self").Inc()
		}
	}

	c.otpReset(ctx, username)
}

// setupProfile collects the required profile fields. Returns false if
// input ended before the profile was stored; the account stays gated
// until setup succeeds.
func (c *Console) setupProfile(ctx context.Context, username string) bool {
	c.println("Setting up your profile.")

	email, err := c.promptRequired("Enter Email: ")
	if err != nil {
		return false
	}
	firstName, err := c.promptRequired("Enter First Name: ")
	if err != nil {
		return false
	}
	middleName, err := c.prompt("Enter Middle Name (optional): ")
	if err != nil {
		return false
	}
	lastName, err := c.promptRequired("Enter Last Name: ")
	if err != nil {
		return false
	}
	preferredName, err := c.prompt("Enter Preferred Name (optional): ")
	if err != nil {
		return false
	}

	profile, err := auth.NewProfile(email, firstName, middleName, lastName, preferredName)
	if err != nil {
		c.reportError("Profile setup failed. Please try again.", err)
		return false
	}

	if err := c.credentials.SetupProfile(ctx, username, profile); err != nil {
		c.reportError("Profile setup failed. Please try again.", err)
		return false
	}

	c.println("Profile setup completed.")
	return true
}
