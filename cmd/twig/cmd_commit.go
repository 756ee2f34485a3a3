package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newCommitCmd(c *cli) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "commit -m <message>",
		Short: "Record the working directory on the current branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return errors.New("commit message is required (-m)")
			}

			r, err := c.openRepo()
			if err != nil {
				return err
			}

			msg := withTrailingNewline(message)
			h, err := r.Commit(msg)
			if err != nil {
				return err
			}

			branch, err := r.CurrentBranch()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", branch, h.Short(), firstLine(msg))
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")

	return cmd
}
