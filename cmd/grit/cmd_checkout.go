package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <branch|commit>",
		Short: "Switch the working tree to a branch or commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			if err := r.Checkout(args[0]); err != nil {
				return err
			}

			if branch, err := r.CurrentBranch(); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Switched to branch %s\n", branch)
			} else if head, err := r.Head(); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "HEAD is now at %s\n", head)
			}
			return nil
		},
	}
}
