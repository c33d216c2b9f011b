package attendance

import (
	"sort"

	"github.com/cmlabs-hris/teams-worktime/internal/domain/attendance"
)

// MonthlyAverage is MonthlyAverageAsOf with today's date.
func MonthlyAverage(records []attendance.AttendanceRecord, months []string) []attendance.ChartPoint {
	return MonthlyAverageAsOf(records, months, today())
}

// MonthlyAverageAsOf emits one point per requested month, in order. Months
// without eligible data get a zero value.
func MonthlyAverageAsOf(records []attendance.AttendanceRecord, months []string, asOf string) []attendance.ChartPoint {
	points := make([]attendance.ChartPoint, 0, len(months))
	for _, month := range months {
		summary := SummarizeAsOf(FilterMonth(records, month), asOf)

		value := 0.0
		if summary.AvgHours != nil {
			value = *summary.AvgHours
		}
		points = append(points, attendance.ChartPoint{Label: month, Value: value})
	}
	return points
}

// DailyAverage is DailyAverageAsOf with today's date.
func DailyAverage(records []attendance.AttendanceRecord, month string) []attendance.ChartPoint {
	return DailyAverageAsOf(records, month, today())
}

// DailyAverageAsOf returns hours per full-day equivalent for each credited
// day of month before asOf, sorted by date.
func DailyAverageAsOf(records []attendance.AttendanceRecord, month string, asOf string) []attendance.ChartPoint {
	days := make([]attendance.AttendanceRecord, 0)
	for _, r := range records {
		if r.Month != month || r.Date >= asOf || r.EffectiveWorkday <= 0 {
			continue
		}
		days = append(days, r)
	}

	sort.SliceStable(days, func(i, j int) bool {
		return days[i].Date < days[j].Date
	})

	points := make([]attendance.ChartPoint, 0, len(days))
	for _, r := range days {
		label := r.Date
		if len(r.Date) >= 10 {
			label = r.Date[8:10]
		}
		points = append(points, attendance.ChartPoint{
			Label:     label,
			Value:     round2(r.WorkHours / r.EffectiveWorkday),
			Date:      r.Date,
			IsHalfDay: r.EffectiveWorkday == 0.5,
		})
	}
	return points
}
