package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"slidemovie/internal/deps"
)

func newDoctorCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the external tools the pipeline depends on",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderToolTable(statuses))

			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				return fmt.Errorf("%d required tools are missing", len(missing))
			}
			fmt.Fprintln(out, "All required tools are available")
			return nil
		},
	}
}
