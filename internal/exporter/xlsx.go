package exporter

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"nytf/internal/dataset"
)

const featureSheet = "Features"

// XLSXWriter writes feature frames to Excel workbooks for manual review.
type XLSXWriter struct {
	logger *slog.Logger
}

// NewXLSXWriter creates an XLSX writer.
func NewXLSXWriter(logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{logger: logger}
}

// WriteFrame writes the frame to an xlsx workbook with a single sheet.
// NaN cells are left empty.
func (w *XLSXWriter) WriteFrame(filePath string, frame *dataset.Frame) error {
	w.logger.Info("writing feature workbook",
		slog.String("path", filePath),
		slog.Int("rows", frame.Len()))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(featureSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	columns := frame.Columns()
	for j, name := range columns {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(featureSheet, cell, name); err != nil {
			return fmt.Errorf("write header %s: %w", name, err)
		}
	}

	for i := 0; i < frame.Len(); i++ {
		for j, v := range frame.Row(i) {
			if math.IsNaN(v) {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return fmt.Errorf("cell %d,%d: %w", i, j, err)
			}
			if err := f.SetCellValue(featureSheet, cell, v); err != nil {
				return fmt.Errorf("write cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
