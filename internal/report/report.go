package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"

	"slidemovie/internal/fileutil"
	"slidemovie/internal/status"
)

// Row is one slide's line in the duration report.
type Row struct {
	SlideIndex  int
	SlideID     string
	Title       string
	AudioSec    float64
	VideoSec    float64
	AudioStatus status.ArtifactStatus
	VideoStatus status.ArtifactStatus
}

// Rows extracts report lines from the store in slide position order.
func Rows(store *status.Store) []Row {
	rows := make([]Row, 0, len(store.Slides))
	for id, slide := range store.Slides {
		rows = append(rows, Row{
			SlideIndex:  slide.SlideIndex,
			SlideID:     id,
			Title:       slide.Title,
			AudioSec:    slide.Audio.DurationSec,
			VideoSec:    slide.Video.DurationSec,
			AudioStatus: slide.Audio.Status,
			VideoStatus: slide.Video.Status,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].SlideIndex != rows[j].SlideIndex {
			return rows[i].SlideIndex < rows[j].SlideIndex
		}
		return rows[i].SlideID < rows[j].SlideID
	})
	return rows
}

// TotalSec sums the clip durations across rows.
func TotalSec(rows []Row) float64 {
	var total float64
	for _, row := range rows {
		total += row.VideoSec
	}
	return total
}

// WriteCSV renders the duration report to path atomically.
func WriteCSV(path string, rows []Row) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"index", "slide_id", "title", "audio_sec", "video_sec"}); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			fmt.Sprintf("%d", row.SlideIndex),
			row.SlideID,
			row.Title,
			fmt.Sprintf("%.2f", row.AudioSec),
			fmt.Sprintf("%.2f", row.VideoSec),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write report row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}

	return fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644)
}
