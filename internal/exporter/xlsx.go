// Package exporter renders merged schedules as spreadsheet files.
package exporter

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"examsched/pkg/contracts/domain"
)

// SheetName is the single sheet every exported workbook carries.
const SheetName = "Exam Schedule"

// ScheduleHeaders is the header row of every export, in column order.
var ScheduleHeaders = []string{"Roll No", "Student Name", "Exam Date", "Subject", "Paper Code", "Paper ID"}

// scheduleRecord flattens a row into export cell values.
func scheduleRecord(row domain.ScheduleRow) []string {
	return []string{row.RollNo, row.StudentName, row.ExamDate, row.SubjectName, row.PaperCode, row.PaperID}
}

// buildWorkbook fills a new workbook with the header row and one data row
// per schedule row. Plain cell values, no styling.
func buildWorkbook(rows []domain.ScheduleRow) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for col, header := range ScheduleHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(SheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, row := range rows {
		for col, value := range scheduleRecord(row) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("failed to compute cell: %w", err)
			}
			if err := f.SetCellValue(SheetName, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", i, err)
			}
		}
	}

	return f, nil
}

// WriteScheduleXLSX writes the merged schedule to an xlsx file at path.
func WriteScheduleXLSX(path string, rows []domain.ScheduleRow) error {
	slog.Info("writing schedule workbook",
		slog.String("path", path),
		slog.Int("row_count", len(rows)))

	f, err := buildWorkbook(rows)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// ScheduleXLSXBytes renders the merged schedule as an in-memory xlsx
// workbook, for download responses.
func ScheduleXLSXBytes(rows []domain.ScheduleRow) (*bytes.Buffer, error) {
	f, err := buildWorkbook(rows)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf, nil
}
