package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gritvcs/grit/pkg/object"
)

func newCatFileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat-file <hash>",
		Short: "Pretty-print a stored object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}

			h, err := object.ParseHash(args[0])
			if err != nil {
				return err
			}
			obj, err := r.Store.Read(h)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch o := obj.(type) {
			case *object.Blob:
				_, err = out.Write(o.Data)
				return err
			case *object.Tree:
				for _, e := range o.Entries {
					kind := "blob"
					if object.IsDirMode(e.Mode) {
						kind = "tree"
					}
					fmt.Fprintf(out, "%06o %s %s\t%s\n", e.Mode, kind, e.Hash, e.Path)
				}
			case *object.Commit:
				fmt.Fprintf(out, "tree %s\n", o.TreeHash)
				for _, p := range o.Parents {
					fmt.Fprintf(out, "parent %s\n", p)
				}
				fmt.Fprintf(out, "author %s\n", o.Author)
				fmt.Fprintf(out, "committer %s\n", o.Committer)
				fmt.Fprintln(out)
				fmt.Fprintln(out, o.Message)
			}
			return nil
		},
	}
}
