package attendance

import (
	"time"
)

// Remark values reported by the Teams calendar in the "exp" field.
const (
	RemarkLate        = "迟到"
	RemarkEarlyLeave  = "早退"
	RemarkSickLeave   = "病假"
	RemarkAnnualLeave = "年假"
	RemarkCompLeave   = "调休假"

	// HalfDayMarker appears inside the first resultList item for half-day entries.
	HalfDayMarker = "半天"
)

const (
	DefaultInsufficientThreshold = 10.5
	DateLayout                   = "2006-01-02"
	MonthLayout                  = "2006-01"
	DateTimeLayout               = "2006-01-02 15:04:05"
)

// RawCalendarEntry is one day of the upstream calendarList payload.
type RawCalendarEntry struct {
	Date        string  `json:"attDate"`
	IsRest      int     `json:"isrest"`
	ClockIn     *string `json:"firstDate,omitempty"`
	ClockOut    *string `json:"endDate,omitempty"`
	Remark      *string `json:"exp,omitempty"`
	ResultItems []any   `json:"resultList,omitempty"`
}

// AttendanceRecord is the normalized, derived view of one calendar day.
type AttendanceRecord struct {
	Date             string  `json:"date"`
	Month            string  `json:"month"`
	IsRest           int     `json:"isRest"`
	ClockIn          *string `json:"clockIn"`
	ClockOut         *string `json:"clockOut"`
	Remark           *string `json:"remark"`
	Remark2          *string `json:"remark2"`
	WorkHours        float64 `json:"workHours"`
	EffectiveWorkday float64 `json:"effectiveWorkday"`
	MissingClock     bool    `json:"missingClock"`
}

type AttendanceSummary struct {
	ValidDays  float64  `json:"validDays"`
	ValidHours float64  `json:"validHours"`
	AvgHours   *float64 `json:"avgHours"`
}

type ChartPoint struct {
	Label     string  `json:"label"`
	Value     float64 `json:"value"`
	Date      string  `json:"date,omitempty"`
	IsHalfDay bool    `json:"isHalfDay,omitempty"`
}

type WorkHoursResult struct {
	WorkHours    float64
	MissingClock bool
}

type ThresholdResult struct {
	Value      float64 `json:"value"`
	Normalized string  `json:"normalized"`
	Valid      bool    `json:"valid"`
}

// Credentials authenticate calls against the Teams attendance API.
type Credentials struct {
	EmCode        string
	Authorization string
}

// Snapshot is the last synced record set of one employee.
type Snapshot struct {
	ID        string
	EmCode    string
	Records   []AttendanceRecord
	FetchedAt time.Time
	CreatedAt time.Time
}

type Settings struct {
	EmCode             string
	TeamsAuthorization *string
	Threshold          *string
	UpdatedAt          time.Time
}

func (s Settings) HasCredentials() bool {
	return s.TeamsAuthorization != nil && *s.TeamsAuthorization != ""
}
