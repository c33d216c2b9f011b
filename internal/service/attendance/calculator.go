package attendance

import (
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/teams-worktime/internal/domain/attendance"
)

// Layouts accepted for clock timestamps, most common first.
var clockLayouts = []string{
	attendance.DateTimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	attendance.DateLayout,
}

func parseClock(value *string) (time.Time, bool) {
	if value == nil {
		return time.Time{}, false
	}
	s := strings.TrimSpace(*value)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range clockLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ComputeWorkHours returns the hours between clock-in and clock-out.
// Rest days never count as missing a clock.
func ComputeWorkHours(clockIn, clockOut *string, isRest int) attendance.WorkHoursResult {
	if isRest != 0 {
		return attendance.WorkHoursResult{}
	}

	in, okIn := parseClock(clockIn)
	out, okOut := parseClock(clockOut)
	if !okIn || !okOut {
		return attendance.WorkHoursResult{MissingClock: true}
	}

	ms := out.Sub(in).Milliseconds()
	return attendance.WorkHoursResult{
		WorkHours: float64(ms) / 3_600_000,
	}
}

// workdayRule is one arm of the effective-workday table. Rules are checked in order.
type workdayRule struct {
	name   string
	match  func(r attendance.AttendanceRecord) bool
	credit func(r attendance.AttendanceRecord) float64
}

func remarkIs(r attendance.AttendanceRecord, values ...string) bool {
	if r.Remark == nil {
		return false
	}
	for _, v := range values {
		if *r.Remark == v {
			return true
		}
	}
	return false
}

func fixedCredit(v float64) func(attendance.AttendanceRecord) float64 {
	return func(attendance.AttendanceRecord) float64 { return v }
}

var workdayRules = []workdayRule{
	{
		name:   "rest",
		match:  func(r attendance.AttendanceRecord) bool { return r.IsRest != 0 },
		credit: fixedCredit(0),
	},
	{
		name: "attended",
		match: func(r attendance.AttendanceRecord) bool {
			return r.Remark == nil || *r.Remark == "" ||
				remarkIs(r, attendance.RemarkLate, attendance.RemarkEarlyLeave)
		},
		credit: fixedCredit(1),
	},
	{
		name: "leave",
		match: func(r attendance.AttendanceRecord) bool {
			return remarkIs(r, attendance.RemarkSickLeave, attendance.RemarkAnnualLeave, attendance.RemarkCompLeave)
		},
		credit: func(r attendance.AttendanceRecord) float64 {
			if r.WorkHours > 0 {
				return 0.5
			}
			return 0
		},
	},
	{
		name: "half-day",
		match: func(r attendance.AttendanceRecord) bool {
			return r.Remark2 != nil && strings.Contains(*r.Remark2, attendance.HalfDayMarker)
		},
		credit: fixedCredit(0.5),
	},
}

// ClassifyWorkday returns the effective workday credit of a record: 0, 0.5 or 1.
func ClassifyWorkday(r attendance.AttendanceRecord) float64 {
	for _, rule := range workdayRules {
		if rule.match(r) {
			return rule.credit(r)
		}
	}
	return 0
}

// IsInsufficient reports whether a worked day stays at or below threshold hours.
func IsInsufficient(r attendance.AttendanceRecord, threshold float64) bool {
	if r.IsRest != 0 || r.MissingClock {
		return false
	}
	return r.WorkHours <= threshold
}

func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
