package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"slidemovie/internal/status"
)

func newStatusCommand(cmdCtx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show per-slide build state for a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, proj, err := cmdCtx.resolveProject("")
			if err != nil {
				return err
			}
			store, err := cmdCtx.openStore(proj)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(store.Slides) == 0 {
				fmt.Fprintf(out, "No build state recorded for project %s yet\n", proj.Name)
				return nil
			}

			fmt.Fprintln(out, renderSlideTable(store))

			if store.FinalMovie.Status == status.StatusGenerated {
				fmt.Fprintf(out, "Final movie: %s\n", store.FinalMovie.FileName)
			} else {
				fmt.Fprintln(out, "Final movie: not assembled")
			}
			return nil
		},
	}
	return cmd
}

func statusOrMissing(s status.ArtifactStatus) status.ArtifactStatus {
	if s == "" {
		return status.StatusMissing
	}
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
