package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"slidemovie/internal/fingerprint"
	"slidemovie/internal/script"
	"slidemovie/internal/services/deck"
	"slidemovie/internal/status"
)

func newDeckCommand(cmdCtx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Regenerate only the slide deck from the script",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, proj, err := cmdCtx.resolveProject("")
			if err != nil {
				return err
			}

			if _, err := script.EnsureIDs(proj.ScriptPath, proj.Name); err != nil {
				return err
			}
			slides, err := script.ParseFile(proj.ScriptPath)
			if err != nil {
				return err
			}
			if len(slides) == 0 {
				return fmt.Errorf("script %s contains no slides", proj.ScriptPath)
			}

			store, err := cmdCtx.openStore(proj)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			converter := deck.NewCLI(deck.WithBinary(cfg.PandocBinary()))
			if err := converter.Convert(runCtx, proj.ScriptPath, proj.DeckPath, proj.SourceDir); err != nil {
				return err
			}

			scriptHash, err := fingerprint.File(proj.ScriptPath)
			if err != nil {
				return err
			}
			deckHash, err := fingerprint.File(proj.DeckPath)
			if err != nil {
				return err
			}
			store.DeckTask = status.TaskRecord{
				Status:     status.StatusGenerated,
				SourceHash: scriptHash,
				FileName:   filepath.Base(proj.DeckPath),
			}
			store.PptxHash = deckHash
			if err := store.Save(proj.StatusPath); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deck written to %s (%d slides)\n", proj.DeckPath, len(slides))
			return nil
		},
	}
	return cmd
}
