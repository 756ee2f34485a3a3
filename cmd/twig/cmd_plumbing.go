package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/odvcencio/twig/pkg/object"
	"github.com/odvcencio/twig/pkg/repo"
)

func newCatFileCmd(c *cli) *cobra.Command {
	var showType, showSize bool

	cmd := &cobra.Command{
		Use:   "cat-file [-t | -s] <object>",
		Short: "Print an object's content, kind, or size",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if showType && showSize {
				return errors.New("-t and -s are mutually exclusive")
			}
			r, err := c.openRepo()
			if err != nil {
				return err
			}
			h, err := object.ParseHash(args[0])
			if err != nil {
				return err
			}

			rd, err := r.Store.Open(h)
			if err != nil {
				return err
			}
			defer rd.Close()

			out := cmd.OutOrStdout()
			switch {
			case showType:
				fmt.Fprintln(out, rd.Type)
			case showSize:
				fmt.Fprintln(out, rd.Size)
			case rd.Type == object.TypeTree:
				data, err := io.ReadAll(rd)
				if err != nil {
					return fmt.Errorf("cat-file %s: %w", h, err)
				}
				tr, err := object.UnmarshalTree(data)
				if err != nil {
					return fmt.Errorf("cat-file %s: %w", h, err)
				}
				return printTree(out, tr.Entries, false)
			default:
				if _, err := io.Copy(out, rd); err != nil {
					return fmt.Errorf("cat-file %s: %w", h, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showType, "type", "t", false, "print the object kind")
	cmd.Flags().BoolVarP(&showSize, "size", "s", false, "print the payload size")

	return cmd
}

func newHashObjectCmd(c *cli) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "hash-object [-w] <file>",
		Short: "Compute a file's blob id, optionally storing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			info, err := f.Stat()
			if err != nil {
				return err
			}
			if !info.Mode().IsRegular() {
				return fmt.Errorf("hash-object %s: not a regular file", args[0])
			}

			var h object.Hash
			if write {
				r, err := c.openRepo()
				if err != nil {
					return err
				}
				h, err = r.Store.WriteStream(object.TypeBlob, info.Size(), f)
				if err != nil {
					return err
				}
			} else {
				h, err = object.HashReader(object.TypeBlob, info.Size(), f)
				if err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the blob into the object store")

	return cmd
}

func newLsTreeCmd(c *cli) *cobra.Command {
	var nameOnly bool

	cmd := &cobra.Command{
		Use:   "ls-tree [--name-only] <tree-or-commit>",
		Short: "List the entries of a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.openRepo()
			if err != nil {
				return err
			}
			h, err := object.ParseHash(args[0])
			if err != nil {
				return err
			}
			tree, err := treeOf(r, h)
			if err != nil {
				return err
			}
			entries, err := r.ReadTreeEntries(tree)
			if err != nil {
				return err
			}
			return printTree(cmd.OutOrStdout(), entries, nameOnly)
		},
	}

	cmd.Flags().BoolVar(&nameOnly, "name-only", false, "list only entry names")

	return cmd
}

// treeOf returns h if it names a tree, or the tree of h if it names a
// commit.
func treeOf(r *repo.Repo, h object.Hash) (object.Hash, error) {
	rd, err := r.Store.Open(h)
	if err != nil {
		return "", err
	}
	kind := rd.Type
	rd.Close()

	switch kind {
	case object.TypeTree:
		return h, nil
	case object.TypeCommit:
		c, err := r.Store.ReadCommit(h)
		if err != nil {
			return "", err
		}
		return c.TreeHash, nil
	default:
		return "", fmt.Errorf("%s is a %s, not a tree", h, kind)
	}
}

func printTree(w io.Writer, entries []object.TreeEntry, nameOnly bool) error {
	for _, e := range entries {
		if nameOnly {
			fmt.Fprintln(w, e.Name)
			continue
		}
		kind, err := e.Type()
		if err != nil {
			return fmt.Errorf("entry %q: %w", e.Name, err)
		}
		fmt.Fprintf(w, "%06o %s %s    %s\n", e.Mode, kind, e.Hash, e.Name)
	}
	return nil
}

func newWriteTreeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "write-tree",
		Short: "Snapshot the working directory as a tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.openRepo()
			if err != nil {
				return err
			}
			h, err := r.WriteTree()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}

func newCommitTreeCmd(c *cli) *cobra.Command {
	var message, parent string

	cmd := &cobra.Command{
		Use:   "commit-tree <tree> [-p <parent>] -m <message>",
		Short: "Create a commit object from a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return errors.New("commit message is required (-m)")
			}
			r, err := c.openRepo()
			if err != nil {
				return err
			}
			h, err := r.CommitTree(object.Hash(args[0]), object.Hash(parent), withTrailingNewline(message))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVarP(&parent, "parent", "p", "", "parent commit id")

	return cmd
}
