package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/odvcencio/twig/pkg/repo"
)

func newLogCmd(c *cli) *cobra.Command {
	var oneline bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show commit history of the current branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.openRepo()
			if err != nil {
				return err
			}

			headHash, err := r.HeadCommit()
			if errors.Is(err, repo.ErrRefNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "no commits yet")
				return nil
			}
			if err != nil {
				return fmt.Errorf("cannot resolve HEAD: %w", err)
			}
			branch, err := r.CurrentBranch()
			if err != nil {
				return err
			}

			entries, err := r.Log(headHash, limit)
			if err != nil {
				return err
			}

			styles := outputStyles(isTTY(cmd.OutOrStdout()))
			out := cmd.OutOrStdout()
			for _, entry := range entries {
				h, co := entry.Hash, entry.Commit
				decoration := ""
				if h == headHash {
					decoration = " (HEAD -> " + branch + ")"
				}

				if oneline {
					fmt.Fprintf(out, "%s%s %s\n", styles.hash.Render(h.Short()), decoration, firstLine(co.Message))
					continue
				}
				fmt.Fprintf(out, "%s%s\n", styles.hash.Render("commit "+string(h)), decoration)
				fmt.Fprintf(out, "Author: %s <%s>\n", co.AuthorName, co.AuthorEmail)
				fmt.Fprintf(out, "Date:   %s\n", time.Unix(co.Timestamp, 0).UTC().Format("2006-01-02 15:04:05 -0700"))
				fmt.Fprintln(out)
				for _, line := range strings.Split(strings.TrimRight(co.Message, "\n"), "\n") {
					fmt.Fprintf(out, "    %s\n", line)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "compact one-line format")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of commits to show (0 for all)")

	return cmd
}
