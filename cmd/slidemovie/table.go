package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"slidemovie/internal/deps"
	"slidemovie/internal/journal"
	"slidemovie/internal/report"
	"slidemovie/internal/status"
)

// newTableWriter applies the shared rounded style and right-aligns the
// given 1-based numeric columns.
func newTableWriter(header table.Row, numericColumns ...int) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(header)

	configs := make([]table.ColumnConfig, 0, len(numericColumns))
	for _, column := range numericColumns {
		configs = append(configs, table.ColumnConfig{
			Number:      column,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)
	return tw
}

// renderSlideTable lists each slide's three artifact states and its
// clip length, in position order.
func renderSlideTable(store *status.Store) string {
	tw := newTableWriter(table.Row{"#", "Slide", "Title", "Audio", "Image", "Video", "Length"}, 1, 7)
	for _, row := range report.Rows(store) {
		slide := store.Slides[row.SlideID]
		tw.AppendRow(table.Row{
			row.SlideIndex,
			row.SlideID,
			truncate(row.Title, 40),
			string(statusOrMissing(slide.Audio.Status)),
			string(statusOrMissing(slide.Image.Status)),
			string(statusOrMissing(slide.Video.Status)),
			formatSeconds(row.VideoSec),
		})
	}
	return tw.Render()
}

// renderDurationTable lists narration and clip lengths per slide.
func renderDurationTable(rows []report.Row) string {
	tw := newTableWriter(table.Row{"#", "Slide", "Title", "Audio (s)", "Video (s)"}, 1, 4, 5)
	for _, row := range rows {
		tw.AppendRow(table.Row{
			row.SlideIndex,
			row.SlideID,
			truncate(row.Title, 40),
			fmt.Sprintf("%.2f", row.AudioSec),
			fmt.Sprintf("%.2f", row.VideoSec),
		})
	}
	return tw.Render()
}

// renderRunTable lists recent build runs, newest first.
func renderRunTable(entries []journal.Entry) string {
	tw := newTableWriter(table.Row{"Started", "Took", "Slides", "Regen", "Reused", "Movie", "Outcome"}, 2, 3, 4, 5)
	for _, entry := range entries {
		tw.AppendRow(table.Row{
			entry.StartedAt.Local().Format(time.DateTime),
			entry.FinishedAt.Sub(entry.StartedAt).Round(time.Second).String(),
			entry.Slides,
			entry.Regenerated,
			entry.Reused,
			yesNo(entry.MovieBuilt),
			entry.Outcome,
		})
	}
	return tw.Render()
}

// renderToolTable lists external tool availability for doctor.
func renderToolTable(statuses []deps.Status) string {
	tw := newTableWriter(table.Row{"Tool", "Command", "State", "Detail"})
	for _, s := range statuses {
		state := "ok"
		detail := s.Description
		if !s.Available {
			state = "missing"
			if s.Detail != "" {
				detail = s.Detail
			}
		}
		tw.AppendRow(table.Row{s.Name, s.Command, state, detail})
	}
	return tw.Render()
}
