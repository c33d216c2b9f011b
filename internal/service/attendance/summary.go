package attendance

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/teams-worktime/internal/domain/attendance"
)

func today() string {
	return time.Now().Format(attendance.DateLayout)
}

// Summarize aggregates records dated before the current local day.
func Summarize(records []attendance.AttendanceRecord) attendance.AttendanceSummary {
	return SummarizeAsOf(records, today())
}

// SummarizeAsOf aggregates records dated strictly before asOf ("YYYY-MM-DD").
// Intraday data is incomplete, so the asOf day itself is excluded.
func SummarizeAsOf(records []attendance.AttendanceRecord, asOf string) attendance.AttendanceSummary {
	var summary attendance.AttendanceSummary

	for _, r := range records {
		if r.Date >= asOf {
			continue
		}
		summary.ValidDays += r.EffectiveWorkday
		summary.ValidHours += r.WorkHours
	}

	if summary.ValidDays > 0 {
		avg := round2(summary.ValidHours / summary.ValidDays)
		summary.AvgHours = &avg
	}

	return summary
}

// FilterMonth returns the records of one month, in input order.
func FilterMonth(records []attendance.AttendanceRecord, month string) []attendance.AttendanceRecord {
	filtered := make([]attendance.AttendanceRecord, 0)
	for _, r := range records {
		if r.Month == month {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// FilterMonths keeps records whose month is in months, sorted by date.
func FilterMonths(records []attendance.AttendanceRecord, months []string) []attendance.AttendanceRecord {
	wanted := make(map[string]struct{}, len(months))
	for _, m := range months {
		wanted[m] = struct{}{}
	}

	filtered := make([]attendance.AttendanceRecord, 0)
	for _, r := range records {
		if _, ok := wanted[r.Month]; ok {
			filtered = append(filtered, r)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Date < filtered[j].Date
	})
	return filtered
}
