// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EduAccess Contributors

package console

import (
	"context"
	"strconv"
	"strings"

	"github.com/eduaccess/eduaccess/internal/auth"
)

// startSession establishes a role-bound session for a freshly
// authenticated account. Single-role accounts bind immediately; an
// account with no roles has no usable session; multi-role accounts go
// through the selection menu.
func (c *Console) startSession(ctx context.Context, account *auth.Account) {
	session, err := auth.BindSession(account)
	if err != nil {
		c.println("No roles assigned to this account. Please contact an admin.")
		return
	}
	if session != nil {
		c.roleSession(ctx, session)
		return
	}

	c.chooseRoleLoop(ctx, account)
}

// chooseRoleLoop presents the 1-indexed role menu until the user binds a
// role and declines to switch, or backs out with 0. The loop has no
// iteration bound.
func (c *Console) chooseRoleLoop(ctx context.Context, account *auth.Account) {
	for {
		c.println("-------------------------------------")
		c.println("Role Selection")
		c.println("-------------------------------------")
		c.println("You have multiple roles. Please choose a role:")
		for i, role := range account.Roles {
			c.printf("%d. %s\n", i+1, role)
		}

		input, err := c.prompt("Enter your choice (or 0 to go back): ")
		if err != nil {
			return
		}
		choice, err := strconv.Atoi(input)
		if err != nil {
			c.println("Invalid choice. Please try again.")
			continue
		}

		session, err := auth.ChooseRole(account.Username, account.Roles, choice)
		if err != nil {
			c.println("Invalid choice. Please try again.")
			continue
		}
		if session == nil {
			c.println("Returning to main menu.")
			return
		}

		c.roleSession(ctx, session)

		switchRole, err := c.prompt("Do you want to switch to another role? (Y/N): ")
		if err != nil || !strings.EqualFold(switchRole, "y") {
			return
		}
	}
}

// roleSession runs the menu for the session's active role. The admin
// role short-circuits into the full administrative session.
func (c *Console) roleSession(ctx context.Context, session *auth.Session) {
	if session.IsAdmin() {
		c.adminSession(ctx, session.Username)
		return
	}

	for {
		c.println()
		c.println("-------------------------------------")
		c.printf("%s Menu:\n", titleRole(session.Role))
		c.println("-------------------------------------")
		switch session.Role {
		case auth.RoleStudent:
			c.println("1 - View Courses")
			c.println("2 - Submit Assignment")
		case auth.RoleInstructor:
			c.println("1 - Manage Courses")
			c.println("2 - Grade Assignments")
		}
		c.println("Q - Logout")

		choice, err := c.prompt("Enter your choice: ")
		if err != nil {
			return
		}

		switch strings.ToUpper(choice) {
		case "1", "2":
			c.println("This feature is not implemented yet.")
		case "Q":
			c.println("Logging out.")
			return
		default:
			c.println("Invalid choice. Please try again.")
		}
	}
}

func titleRole(role auth.Role) string {
	s := string(role)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
