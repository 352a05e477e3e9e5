package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"nytf/internal/dataset"
)

// CSVWriter writes feature frames to CSV files.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a CSV writer.
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteOptions configures CSV output.
type WriteOptions struct {
	// BOMPrefix writes a UTF-8 BOM so Excel opens the file correctly.
	BOMPrefix bool
}

// WriteFrame writes the frame to filePath, one header row plus one row per
// record. NaN values come out as empty cells, which downstream tooling
// reads back as missing.
func (w *CSVWriter) WriteFrame(filePath string, frame *dataset.Frame, opts WriteOptions) error {
	w.logger.Info("writing feature frame",
		slog.String("path", filePath),
		slog.Int("rows", frame.Len()),
		slog.Int("columns", len(frame.Columns())))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	if opts.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	columns := frame.Columns()
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(columns))
	for i := 0; i < frame.Len(); i++ {
		for j, v := range frame.Row(i) {
			row[j] = formatCell(v)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	return writer.Error()
}

// formatCell renders a float64 cell, mapping NaN to an empty (missing)
// cell.
func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
