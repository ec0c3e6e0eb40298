package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gritvcs/grit/pkg/repo"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show working tree status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}

			statuses, err := r.Status()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if branch, err := r.CurrentBranch(); err == nil {
				fmt.Fprintf(out, "On branch %s\n", branch)
			} else if head, err := r.Head(); err == nil {
				fmt.Fprintf(out, "HEAD detached at %s\n", head)
			}
			if _, ok, err := r.LastCommitHash(); err == nil && !ok {
				fmt.Fprintln(out, "No commits yet")
			}

			var stagedLines, unstagedLines, untrackedLines []string
			for _, s := range statuses {
				if s.Status == repo.StatusUnchanged {
					continue
				}
				line := formatStatusLine(s)
				switch s.Stage {
				case repo.StageCommit:
					stagedLines = append(stagedLines, line)
				case repo.StageNotCommit:
					unstagedLines = append(unstagedLines, line)
				case repo.StageUntracked:
					untrackedLines = append(untrackedLines, "\t"+s.Path)
				}
			}

			printSection(out, "Changes to be committed:", stagedLines)
			printSection(out, "Changes not staged for commit:", unstagedLines)
			printSection(out, "Untracked files:", untrackedLines)

			if len(stagedLines)+len(unstagedLines)+len(untrackedLines) == 0 {
				fmt.Fprintln(out, "nothing to commit, working tree clean")
			}
			return nil
		},
	}
}

func formatStatusLine(s repo.FileStatus) string {
	if s.Status == repo.StatusMoved {
		return fmt.Sprintf("\t%s:\t%s -> %s", s.Status, s.MovedFrom, s.Path)
	}
	return fmt.Sprintf("\t%s:\t%s", s.Status, s.Path)
}

func printSection(out io.Writer, header string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, header)
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
}
