package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCmd() *cobra.Command {
	var hard bool

	cmd := &cobra.Command{
		Use:   "reset [commit] | reset <path>...",
		Short: "Reset the branch to a commit, or unstage paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}

			// Arguments that do not name a commit are treated as paths to
			// unstage.
			if len(args) > 0 {
				if _, err := r.ResolveRef(args[0]); err != nil {
					return r.ResetFiles(args)
				}
			}

			target := "HEAD"
			if len(args) == 1 {
				target = args[0]
			} else if len(args) > 1 {
				return fmt.Errorf("reset: expected one commit or a list of paths")
			}
			return r.Reset(target, hard)
		},
	}

	cmd.Flags().BoolVar(&hard, "hard", false, "also rewrite the working tree")

	return cmd
}
