package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/twig/pkg/object"
)

func newTagCmd(c *cli) *cobra.Command {
	var deleteTag, force bool

	cmd := &cobra.Command{
		Use:   "tag [-d] [-f] [name [commit]]",
		Short: "List, create, or delete lightweight tags",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.openRepo()
			if err != nil {
				return err
			}

			if deleteTag {
				if len(args) != 1 {
					return fmt.Errorf("tag -d takes exactly one tag name")
				}
				if err := r.DeleteTag(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted tag '%s'\n", args[0])
				return nil
			}

			// Create mode.
			if len(args) > 0 {
				var target object.Hash
				if len(args) == 2 {
					target, err = object.ParseHash(args[1])
				} else {
					target, err = r.HeadCommit()
				}
				if err != nil {
					return err
				}
				return r.CreateTag(args[0], target, force)
			}

			// List mode.
			names, err := r.TagNames()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&deleteTag, "delete", "d", false, "delete the named tag")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing tag")

	return cmd
}
