// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EduAccess Contributors

package console

import (
	"context"
	"errors"
	"strings"

	"github.com/eduaccess/eduaccess/internal/auth"
)

// adminFlow authenticates an administrator and enters the admin session.
// The admin service itself never re-checks credentials; this gate is the
// authorization boundary.
func (c *Console) adminFlow(ctx context.Context) {
	c.println("-------------------------------------")
	c.println("Admin Access")
	c.println("-------------------------------------")

	username, err := c.prompt("Enter Admin Username: ")
	if err != nil {
		return
	}
	password, err := c.promptPassword("Enter Admin Password: ")
	if err != nil {
		return
	}

	result, err := c.credentials.Login(ctx, username, password)
	if err != nil {
		if c.metrics != nil {
			c.metrics.LoginsTotal.WithLabelValues("failure").Inc()
		}
		if hasCode(err, "AUTH_INVALID_CREDENTIALS") {
			c.println("Invalid admin credentials. Try again.")
			return
		}
		c.reportError("Admin login failed. Please try again.", err)
		return
	}

	if result.OTPPending {
		c.println("Your password has been reset. Please enter the one-time password provided to you.")
		c.otpReset(ctx, username)
		return
	}

	if !auth.HasRole(result.Account.Roles, auth.RoleAdmin) {
		c.println("This account does not have admin access.")
		return
	}

	if c.metrics != nil {
		c.metrics.LoginsTotal.WithLabelValues("success").Inc()
	}
	c.println("Admin login successful.")

	if !result.Account.ProfileComplete {
		c.println("Your profile is not complete. Let's set it up now.")
		if !c.setupProfile(ctx, username) {
			return
		}
	}

	c.adminSession(ctx, username)
}

// adminSession runs the administrative menu.
func (c *Console) adminSession(ctx context.Context, username string) {
	for {
		c.println()
		c.println("Admin Menu:")
		c.println("I - Invite user")
		c.println("R - Reset user password")
		c.println("D - Delete user account")
		c.println("L - List user accounts")
		c.println("M - Modify user roles")
		c.println("Q - Logout")

		choice, err := c.prompt("Enter your choice: ")
		if err != nil {
			return
		}

		switch strings.ToUpper(choice) {
		case "I":
			c.inviteUser(ctx)
		case "R":
			c.resetUserPassword(ctx)
		case "D":
			c.deleteUserAccount(ctx)
		case "L":
			c.listUsers(ctx)
		case "M":
			c.modifyUserRoles(ctx)
		case "Q":
			c.println("Logging out...")
			return
		default:
			c.println("Invalid choice. Please try again.")
		}
	}
}

func (c *Console) inviteUser(ctx context.Context) {
	rolesInput, err := c.promptRequired("Enter roles for the invited user (comma-separated): ")
	if err != nil {
		return
	}

	roles, err := auth.ParseRoles(rolesInput)
	if err != nil {
		c.println("Unknown role. Valid roles are: admin, instructor, student.")
		return
	}

	code, err := c.admin.InviteUser(ctx, roles)
	if err != nil {
		c.reportError("Could not create invitation. Please try again.", err)
		return
	}

	if c.metrics != nil {
		c.metrics.InvitationsTotal.Inc()
	}
	c.printf("Generated invitation code: %s\n", code)
	c.println("Invitation created successfully.")
}

func (c *Console) resetUserPassword(ctx context.Context) {
	username, err := c.prompt("Enter user username to reset password: ")
	if err != nil {
		return
	}

	otp, err := c.admin.ResetUserPassword(ctx, username)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			c.println("User not found.")
			return
		}
		c.reportError("Could not reset password. Please try again.", err)
		return
	}

	if c.metrics != nil {
		c.metrics.OTPResetsTotal.WithLabelValues("admin").Inc()
	}
	c.printf("Password reset. One-time password: %s\n", otp)
	c.println("User will be prompted to change password on next login.")
}

func (c *Console) deleteUserAccount(ctx context.Context) {
	username, err := c.prompt("Enter user username to delete: ")
	if err != nil {
		return
	}

	confirm, err := c.prompt("Are you sure you want to delete this user? (Yes/No): ")
	if err != nil {
		return
	}
	if !strings.EqualFold(confirm, "yes") {
		c.println("Deletion cancelled.")
		return
	}

	if err := c.admin.DeleteUserAccount(ctx, username); err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			c.println("User not found.")
			return
		}
		c.reportError("Could not delete account. Please try again.", err)
		return
	}

	c.println("User account deleted.")
}

func (c *Console) listUsers(ctx context.Context) {
	users, err := c.admin.ListUsers(ctx)
	if err != nil {
		c.reportError("Could not list accounts. Please try again.", err)
		return
	}

	if len(users) == 0 {
		c.println("No accounts found.")
		return
	}

	c.println("User Accounts:")
	for _, u := range users {
		name := strings.TrimSpace(u.FirstName + " " + u.LastName)
		if name == "" {
			name = "(profile incomplete)"
		}
		c.printf("  %s  %s  [%s]\n", u.Username, name, auth.JoinRoles(u.Roles))
	}
}

func (c *Console) modifyUserRoles(ctx context.Context) {
	username, err := c.prompt("Enter user username to modify roles: ")
	if err != nil {
		return
	}

	rolesInput, err := c.promptRequired("Enter new roles (comma-separated): ")
	if err != nil {
		return
	}

	roles, err := auth.ParseRoles(rolesInput)
	if err != nil {
		c.println("Unknown role. Valid roles are: admin, instructor, student.")
		return
	}

	if err := c.admin.ModifyUserRoles(ctx, username, roles); err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			c.println("User not found.")
			return
		}
		c.reportError("Could not update roles. Please try again.", err)
		return
	}

	c.println("User roles updated.")
}
