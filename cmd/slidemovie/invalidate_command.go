package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"slidemovie/internal/status"
)

func newInvalidateCommand(cmdCtx *commandContext) *cobra.Command {
	var kindFlag string

	cmd := &cobra.Command{
		Use:   "invalidate <slide-id>",
		Short: "Mark a slide's artifacts stale so the next build regenerates them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, proj, err := cmdCtx.resolveProject("")
			if err != nil {
				return err
			}
			store, err := cmdCtx.openStore(proj)
			if err != nil {
				return err
			}

			slideID := strings.TrimSpace(args[0])
			var kinds []status.Kind
			if kindFlag == "all" {
				kinds = status.Kinds()
			} else {
				kind, ok := status.ParseKind(kindFlag)
				if !ok {
					return fmt.Errorf("unknown kind %q (expected audio, image, video, or all)", kindFlag)
				}
				kinds = []status.Kind{kind}
			}

			for _, kind := range kinds {
				if err := store.Invalidate(slideID, kind); err != nil {
					return err
				}
			}
			if err := store.Save(proj.StatusPath); err != nil {
				return err
			}

			names := make([]string, len(kinds))
			for i, kind := range kinds {
				names[i] = string(kind)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %s stale for slide %s\n", strings.Join(names, ", "), slideID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&kindFlag, "kind", "k", "all", "Artifact kind to invalidate (audio, image, video, all)")
	return cmd
}
