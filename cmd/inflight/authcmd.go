// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd007-auth R5.1-R5.4.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/petar-djukic/inflight/pkg/share"
)

// newLoginCmd creates the "login" command.
func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the inflight service",
		Long:  "Login opens the service's login page in your browser and waits for it to hand credentials back to a local callback. Credentials are stored under ~/.inflight.",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(nil)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			creds, err := client.Login(ctx)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			fmt.Printf("Logged in as %s\n", creds.Email)
			return nil
		},
	}
}

// newLogoutCmd creates the "logout" command.
func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(nil)
			if err != nil {
				return err
			}
			if err := client.Logout(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

// newStatusCmd creates the "status" command.
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the authenticated account and service reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(nil)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			if err := client.Health(ctx); err != nil {
				fmt.Printf("Service: unreachable (%v)\n", err)
			} else {
				fmt.Println("Service: ok")
			}

			creds, err := client.Status()
			if errors.Is(err, share.ErrNotLoggedIn) {
				fmt.Println("Not logged in. Run 'inflight login'.")
				return nil
			}
			if err != nil {
				return err
			}

			printJSON(creds)
			return nil
		},
	}
}
