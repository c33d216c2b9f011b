package attendance

import (
	"strconv"

	"github.com/cmlabs-hris/teams-worktime/internal/domain/attendance"
)

// remark2Of stringifies the first resultList item. JSON null yields nil.
func remark2Of(items []any) *string {
	if len(items) == 0 {
		return nil
	}

	var s string
	switch v := items[0].(type) {
	case nil:
		return nil
	case string:
		s = v
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		s = strconv.Itoa(v)
	case bool:
		s = strconv.FormatBool(v)
	default:
		return nil
	}
	return &s
}

func monthOf(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

// NormalizeEntry converts one raw calendar entry into a fully derived record.
func NormalizeEntry(entry attendance.RawCalendarEntry) attendance.AttendanceRecord {
	record := attendance.AttendanceRecord{
		Date:     entry.Date,
		Month:    monthOf(entry.Date),
		IsRest:   entry.IsRest,
		ClockIn:  entry.ClockIn,
		ClockOut: entry.ClockOut,
		Remark:   entry.Remark,
		Remark2:  remark2Of(entry.ResultItems),
	}

	hours := ComputeWorkHours(record.ClockIn, record.ClockOut, record.IsRest)
	record.WorkHours = hours.WorkHours
	record.MissingClock = hours.MissingClock
	record.EffectiveWorkday = ClassifyWorkday(record)

	return record
}

// BuildRecords normalizes entries, keeps those of targetMonth and drops
// repeated dates after their first occurrence. Input order is preserved.
func BuildRecords(entries []attendance.RawCalendarEntry, targetMonth string) []attendance.AttendanceRecord {
	records := make([]attendance.AttendanceRecord, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))

	for _, entry := range entries {
		record := NormalizeEntry(entry)
		if record.Month != targetMonth {
			continue
		}
		if _, dup := seen[record.Date]; dup {
			continue
		}
		seen[record.Date] = struct{}{}
		records = append(records, record)
	}

	return records
}
