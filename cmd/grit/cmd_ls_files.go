package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLsFilesCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "ls-files",
		Short: "List staged files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}

			entries, err := r.ListFiles()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, e := range entries {
				if debug {
					fmt.Fprintln(out, e.DebugString())
					fmt.Fprintln(out)
					continue
				}
				fmt.Fprintln(out, e)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "show every index entry field")

	return cmd
}
