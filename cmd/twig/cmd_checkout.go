package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckoutCmd(c *cli) *cobra.Command {
	var createBranch bool

	cmd := &cobra.Command{
		Use:   "checkout [-b] <branch>",
		Short: "Switch branches",
		Long: "Point HEAD at another branch. The working directory is not changed:\n" +
			"files stay as they are and the next commit snapshots them.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]

			r, err := c.openRepo()
			if err != nil {
				return err
			}

			if createBranch {
				if err := r.CreateBranch(target); err != nil {
					return err
				}
			}

			if err := r.SwitchBranch(target); err != nil {
				return err
			}

			if createBranch {
				fmt.Fprintf(cmd.OutOrStdout(), "switched to new branch '%s'\n", target)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "switched to branch '%s'\n", target)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&createBranch, "branch", "b", false, "create and switch to a new branch")

	return cmd
}
