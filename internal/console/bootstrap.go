// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EduAccess Contributors

package console

import (
	"bytes"
	"context"

	"github.com/samber/oops"

	"github.com/eduaccess/eduaccess/internal/auth"
)

// bootstrapAdmin runs the first-run setup: when the store holds no
// accounts at all, the first user becomes the administrator. No
// invitation is involved; there is nobody yet to issue one.
func (c *Console) bootstrapAdmin(ctx context.Context) error {
	c.println("-----------------------------------")
	c.println("   The credential store is empty   ")
	c.println("      Setting up Admin Access      ")
	c.println("-----------------------------------")

	username, err := c.promptRequired("Enter Admin Username: ")
	if err != nil {
		return err
	}

	for {
		password, err := c.promptPassword("Enter Admin Password: ")
		if err != nil {
			return err
		}
		confirm, err := c.promptPassword("Confirm Admin Password: ")
		if err != nil {
			auth.Wipe(password)
			return err
		}

		if !bytes.Equal(password, confirm) {
			auth.Wipe(password)
			auth.Wipe(confirm)
			c.println("! Passwords do not match. Please try again.")
			continue
		}
		auth.Wipe(confirm)

		hash, err := c.hasher.Hash(password)
		auth.Wipe(password)
		if err != nil {
			c.println("! Password rejected. Please try again.")
			continue
		}

		account, err := auth.NewAccount(username, hash, []auth.Role{auth.RoleAdmin})
		if err != nil {
			return err
		}
		if err := c.accounts.Create(ctx, account); err != nil {
			return oops.Code("CONSOLE_BOOTSTRAP_FAILED").
				With("operation", "create admin account").
				Wrap(err)
		}

		c.println("---------------------------------------------------")
		c.println(" Admin account created successfully. Please log in ")
		c.println("                 to continue.                      ")
		c.println("---------------------------------------------------")
		return nil
	}
}
