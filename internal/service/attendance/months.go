package attendance

import (
	"time"

	"github.com/cmlabs-hris/teams-worktime/internal/domain/attendance"
)

func parseMonth(month string) (time.Time, bool) {
	t, err := time.Parse(attendance.MonthLayout, month)
	return t, err == nil
}

// NextMonth returns the month after "YYYY-MM". Malformed input is returned unchanged.
func NextMonth(month string) string {
	t, ok := parseMonth(month)
	if !ok {
		return month
	}
	return t.AddDate(0, 1, 0).Format(attendance.MonthLayout)
}

func RecentMonths(n int) []string {
	return RecentMonthsFrom(time.Now(), n)
}

// RecentMonthsFrom lists n months ending with the month of now, ascending.
func RecentMonthsFrom(now time.Time, n int) []string {
	if n <= 0 {
		return []string{}
	}

	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	months := make([]string, n)
	for i := 0; i < n; i++ {
		months[n-1-i] = first.AddDate(0, -i, 0).Format(attendance.MonthLayout)
	}
	return months
}

// MonthsBetween lists the months from start to end inclusive. It is empty
// when either bound is malformed or end precedes start.
func MonthsBetween(start, end string) []string {
	s, okStart := parseMonth(start)
	e, okEnd := parseMonth(end)
	if !okStart || !okEnd || e.Before(s) {
		return []string{}
	}

	months := make([]string, 0)
	for t := s; !t.After(e); t = t.AddDate(0, 1, 0) {
		months = append(months, t.Format(attendance.MonthLayout))
	}
	return months
}

// monthSpan counts the months of the inclusive range start..end, zero when
// either bound is malformed or end precedes start.
func monthSpan(start, end string) int {
	s, okStart := parseMonth(start)
	e, okEnd := parseMonth(end)
	if !okStart || !okEnd {
		return 0
	}
	span := (e.Year()-s.Year())*12 + int(e.Month()-s.Month()) + 1
	if span < 0 {
		return 0
	}
	return span
}
