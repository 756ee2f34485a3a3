package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change repository settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.openRepo()
			if err != nil {
				return err
			}
			ident, err := r.Identity.Identity()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "user.name=%s\n", ident.Name)
			fmt.Fprintf(out, "user.email=%s\n", ident.Email)
			fmt.Fprintf(out, "core.compression=%d\n", r.Config.Core.Compression)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "user <name> <email>",
		Short: "Set the identity recorded in new commits",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.openRepo()
			if err != nil {
				return err
			}
			return r.SetUser(args[0], args[1])
		},
	})

	return cmd
}
