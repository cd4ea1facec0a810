package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"slidemovie/internal/build"
	"slidemovie/internal/deps"
	"slidemovie/internal/journal"
	"slidemovie/internal/logging"
	"slidemovie/internal/project"
	"slidemovie/internal/report"
	"slidemovie/internal/services/deck"
	"slidemovie/internal/services/media"
	"slidemovie/internal/services/raster"
	"slidemovie/internal/services/tts"
)

func newBuildCommand(cmdCtx *commandContext) *cobra.Command {
	var outputName string
	var voiceFlag string
	var modelFlag string
	var providerFlag string
	var workersFlag int
	var showSkip bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Run the incremental pipeline and assemble the movie",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, proj, err := cmdCtx.resolveProject(strings.TrimSpace(outputName))
			if err != nil {
				return err
			}

			if voiceFlag != "" {
				cfg.TTS.Voice = voiceFlag
			}
			if modelFlag != "" {
				cfg.TTS.Model = modelFlag
			}
			if providerFlag != "" {
				cfg.TTS.Provider = providerFlag
			}
			if workersFlag > 0 {
				cfg.TTS.Workers = workersFlag
			}
			if showSkip {
				cfg.Build.ShowSkip = true
			}

			if missing := deps.MissingRequired(deps.CheckBinaries(deps.Requirements(cfg))); len(missing) > 0 {
				names := make([]string, 0, len(missing))
				for _, s := range missing {
					names = append(names, s.Command)
				}
				return fmt.Errorf("missing required tools: %s (run `slidemovie doctor` for details)", strings.Join(names, ", "))
			}

			logger, err := cmdCtx.newLogger()
			if err != nil {
				return err
			}

			lock := project.NewLock(proj)
			if err := lock.Acquire(); err != nil {
				return err
			}
			defer lock.Release()

			store, err := cmdCtx.openStore(proj)
			if err != nil {
				return err
			}

			collaborators := build.Collaborators{
				TTS:    tts.NewCLI(tts.WithBinary(cfg.TTS.Binary), tts.WithAPIKey(cfg.TTS.APIKey)),
				Deck:   deck.NewCLI(deck.WithBinary(cfg.PandocBinary())),
				Raster: raster.NewCLI(raster.WithSofficeBinary(cfg.SofficeBinary())),
				Media:  media.NewCLI(media.FormatFromConfig(cfg)),
			}
			executor := build.NewExecutor(cfg, proj, store, collaborators, logging.WithComponent(logger, "build"))

			runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			startedAt := time.Now()
			result, runErr := executor.Run(runCtx)
			finishedAt := time.Now()

			recordRun(logger, proj, result, startedAt, finishedAt, runErr)

			if runErr != nil {
				return runErr
			}

			rows := report.Rows(store)
			if err := report.WriteCSV(proj.ReportPath, rows); err != nil {
				logger.Warn("could not write duration report", "path", proj.ReportPath, "error", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Build complete: %d slides, %d regenerated, %d reused, %d skipped\n",
				result.Slides, result.Regenerated, result.Reused, result.Skipped)
			if result.MovieRebuilt {
				fmt.Fprintf(out, "Movie written to %s (total %s)\n", result.MoviePath, formatSeconds(report.TotalSec(rows)))
			} else {
				fmt.Fprintf(out, "Movie already up to date at %s\n", result.MoviePath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputName, "output", "o", "", "Final movie filename without extension (defaults to the project name)")
	cmd.Flags().StringVar(&voiceFlag, "voice", "", "Override the TTS voice for this run")
	cmd.Flags().StringVar(&modelFlag, "model", "", "Override the TTS model for this run")
	cmd.Flags().StringVar(&providerFlag, "provider", "", "Override the TTS provider for this run")
	cmd.Flags().IntVar(&workersFlag, "workers", 0, "Number of parallel narration workers")
	cmd.Flags().BoolVar(&showSkip, "show-skip", false, "Log artifacts that were reused or skipped")
	return cmd
}

// recordRun appends the run to the project journal. Journal failures
// are logged and never fail the build. The insert runs under its own
// context: the run context is already cancelled when the build was
// interrupted, and interrupted runs belong in the history too.
func recordRun(logger *slog.Logger, proj *project.Project, result *build.Result, startedAt, finishedAt time.Time, runErr error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	j, err := journal.Open(proj.JournalPath())
	if err != nil {
		logger.Warn("could not open build journal", "error", err)
		return
	}
	defer j.Close()

	entry := journal.Entry{
		StartedAt:   startedAt,
		FinishedAt:  finishedAt,
		Slides:      result.Slides,
		Regenerated: result.Regenerated,
		Reused:      result.Reused,
		Skipped:     result.Skipped,
		MovieBuilt:  result.MovieRebuilt,
		Outcome:     "success",
	}
	if runErr != nil {
		entry.Outcome = "failed"
		entry.ErrorDetail = runErr.Error()
	}
	if err := j.Record(ctx, entry); err != nil {
		logger.Warn("could not record build run", "error", err)
	}
}

func formatSeconds(sec float64) string {
	d := time.Duration(sec * float64(time.Second))
	return d.Round(time.Second).String()
}
