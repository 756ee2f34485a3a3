package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBranchCmd(c *cli) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "branch [name]",
		Short: "List or create branches",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.openRepo()
			if err != nil {
				return err
			}

			// Create mode.
			if len(args) == 1 {
				return r.CreateBranch(args[0])
			}

			// List mode.
			branches, err := r.ListBranches(all)
			if err != nil {
				return err
			}

			styles := outputStyles(isTTY(cmd.OutOrStdout()))
			out := cmd.OutOrStdout()
			for _, b := range branches {
				switch {
				case b.Current:
					fmt.Fprintf(out, "* %s\n", styles.current.Render(b.Name))
				case b.Remote:
					fmt.Fprintf(out, "  %s\n", styles.remote.Render("remotes/"+b.Name))
				default:
					fmt.Fprintf(out, "  %s\n", b.Name)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "also list remote-tracking branches")

	return cmd
}
