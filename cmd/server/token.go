package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage session tokens",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "issue <user-id>",
			Short: "Create a session token for a user",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := bootstrap(cmd.Context())
				if err != nil {
					return err
				}
				defer a.Close()
				if a.cfg.Session.Driver == "memory" {
					a.logger.Warn("memory sessions end with this process; the token is only useful for testing")
				}
				token, err := a.files.Connect(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			},
		},
		&cobra.Command{
			Use:   "revoke <token>",
			Short: "Invalidate a session token",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := bootstrap(cmd.Context())
				if err != nil {
					return err
				}
				defer a.Close()
				return a.files.Disconnect(cmd.Context(), args[0])
			},
		},
	)
	return cmd
}
