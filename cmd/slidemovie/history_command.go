package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"slidemovie/internal/journal"
)

func newHistoryCommand(cmdCtx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent build runs for a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, proj, err := cmdCtx.resolveProject("")
			if err != nil {
				return err
			}

			j, err := journal.Open(proj.JournalPath())
			if err != nil {
				return err
			}
			defer j.Close()

			entries, err := j.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No build runs recorded for project %s yet\n", proj.Name)
				return nil
			}

			fmt.Fprintln(out, renderRunTable(entries))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
