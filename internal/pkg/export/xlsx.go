package export

import (
	"bytes"
	"fmt"

	excelize "github.com/xuri/excelize/v2"

	"github.com/cmlabs-hris/teams-worktime/internal/domain/attendance"
)

const (
	recordsSheet = "Records"
	summarySheet = "Summary"
)

// recordHeaders defines the column layout of the records sheet.
var recordHeaders = []string{
	"Date", "Rest", "Clock In", "Clock Out", "Remark", "Remark 2",
	"Work Hours", "Effective Workday", "Missing Clock", "Insufficient",
}

var recordWidths = []float64{12, 6, 20, 20, 12, 16, 11, 17, 14, 12}

// Report is the content of one attendance workbook.
type Report struct {
	EmCode    string
	Months    []string
	Threshold float64
	FetchedAt string
	Records   []attendance.RecordResponse
	Summary   attendance.AttendanceSummary
	Monthly   []attendance.ChartPoint
}

// WriteToBuffer renders the report as an XLSX workbook.
func WriteToBuffer(report Report) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", recordsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	if err := writeHeaders(f, recordsSheet, recordHeaders, headerStyle); err != nil {
		return nil, fmt.Errorf("write headers: %w", err)
	}
	if err := writeRecords(f, report.Records); err != nil {
		return nil, fmt.Errorf("write rows: %w", err)
	}
	if err := setWidths(f, recordsSheet, recordWidths); err != nil {
		return nil, fmt.Errorf("column widths: %w", err)
	}
	if err := writeSummary(f, report, headerStyle); err != nil {
		return nil, fmt.Errorf("write summary: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write to buffer: %w", err)
	}
	return buf, nil
}

func writeHeaders(f *excelize.File, sheet string, headers []string, style int) error {
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(sheet, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func yesNo(b bool) string {
	if b {
		return "Y"
	}
	return ""
}

func writeRecords(f *excelize.File, records []attendance.RecordResponse) error {
	for i, r := range records {
		row := i + 2 // row 1 is headers
		values := []interface{}{
			r.Date,
			r.IsRest,
			optional(r.ClockIn),
			optional(r.ClockOut),
			optional(r.Remark),
			optional(r.Remark2),
			r.WorkHours,
			r.EffectiveWorkday,
			yesNo(r.MissingClock),
			yesNo(r.Insufficient),
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(recordsSheet, cell, &values); err != nil {
			return fmt.Errorf("record %s: %w", r.Date, err)
		}
	}
	return nil
}

func writeSummary(f *excelize.File, report Report, headerStyle int) error {
	avg := interface{}("")
	if report.Summary.AvgHours != nil {
		avg = *report.Summary.AvgHours
	}

	rows := [][]interface{}{
		{"Employee", report.EmCode},
		{"Months", fmt.Sprintf("%d", len(report.Months))},
		{"Fetched At", report.FetchedAt},
		{"Threshold", report.Threshold},
		{"Valid Days", report.Summary.ValidDays},
		{"Valid Hours", report.Summary.ValidHours},
		{"Average Hours", avg},
	}
	for i, values := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &values); err != nil {
			return err
		}
	}

	start := len(rows) + 2
	cell, err := excelize.CoordinatesToCellName(1, start)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(summarySheet, cell, &[]interface{}{"Month", "Average Hours"}); err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(2, start)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, cell, end, headerStyle); err != nil {
		return err
	}

	for i, p := range report.Monthly {
		cell, err := excelize.CoordinatesToCellName(1, start+1+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &[]interface{}{p.Label, p.Value}); err != nil {
			return err
		}
	}

	return setWidths(f, summarySheet, []float64{16, 22})
}

func setWidths(f *excelize.File, sheet string, widths []float64) error {
	for col, w := range widths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, w); err != nil {
			return err
		}
	}
	return nil
}
