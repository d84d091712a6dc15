// Package export builds the attendance downloads: today's attendance as CSV
// and a date-range report as CSV or an XLSX workbook.
package export

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"accessdash/internal/format"
	"accessdash/internal/model"
)

// Column order of each export.
var (
	AttendanceFields = []string{"subject_name", "first_entry", "last_entry", "total_entries", "camera_name"}
	ReportFields     = []string{"date", "subject_name", "first_entry", "last_entry", "entries_count"}
)

// Content types of the produced files.
const (
	ContentTypeCSV  = "text/csv"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ErrMissingDates is returned when a report bound is empty.
var ErrMissingDates = errors.New("export: start and end dates are required")

// Source is the part of the API client exports read from.
type Source interface {
	AttendanceToday(ctx context.Context) ([]model.AttendanceRecord, error)
	AttendanceReport(ctx context.Context, start, end string) ([]model.ReportRow, error)
}

// File is a finished download.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

// AttendanceFilename names today's export, date as YYYY-MM-DD.
func AttendanceFilename(date string) string {
	return "attendance_" + date + ".csv"
}

// ReportFilename names a date-range export with the given extension.
func ReportFilename(start, end, ext string) string {
	return "attendance_report_" + start + "_to_" + end + "." + ext
}

// Attendance exports today's attendance. date labels the file.
func Attendance(ctx context.Context, src Source, date string) (File, error) {
	records, err := src.AttendanceToday(ctx)
	if err != nil {
		return File{}, fmt.Errorf("fetch attendance: %w", err)
	}
	body, err := format.ToCSV(records, AttendanceFields)
	if err != nil {
		return File{}, err
	}
	return File{Name: AttendanceFilename(date), ContentType: ContentTypeCSV, Body: []byte(body)}, nil
}

func fetchReport(ctx context.Context, src Source, start, end string) ([]model.ReportRow, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return nil, ErrMissingDates
	}
	rows, err := src.AttendanceReport(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch report: %w", err)
	}
	return rows, nil
}

// ReportCSV exports the date-range report as CSV.
func ReportCSV(ctx context.Context, src Source, start, end string) (File, error) {
	rows, err := fetchReport(ctx, src, start, end)
	if err != nil {
		return File{}, err
	}
	body, err := format.ToCSV(rows, ReportFields)
	if err != nil {
		return File{}, err
	}
	return File{Name: ReportFilename(start, end, "csv"), ContentType: ContentTypeCSV, Body: []byte(body)}, nil
}

// ReportXLSX exports the date-range report as a single-sheet workbook with a
// bold header row. Entry counts stay numeric.
func ReportXLSX(ctx context.Context, src Source, start, end string) (File, error) {
	rows, err := fetchReport(ctx, src, start, end)
	if err != nil {
		return File{}, err
	}
	body, err := Workbook(rows)
	if err != nil {
		return File{}, err
	}
	return File{Name: ReportFilename(start, end, "xlsx"), ContentType: ContentTypeXLSX, Body: body}, nil
}

// ReportSheet is the worksheet name of the report workbook.
const ReportSheet = "Report"

// Workbook renders report rows into XLSX bytes.
func Workbook(rows []model.ReportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), ReportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for i, h := range ReportFields {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(ReportSheet, cell, h); err != nil {
			return nil, fmt.Errorf("set header: %w", err)
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(ReportFields), 1)
	if err := f.SetCellStyle(ReportSheet, "A1", last, bold); err != nil {
		return nil, fmt.Errorf("apply header style: %w", err)
	}

	for r, row := range rows {
		for c, field := range ReportFields {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(ReportSheet, cell, row.FieldValue(field)); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}
	if err := f.SetColWidth(ReportSheet, "A", "E", 22); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
