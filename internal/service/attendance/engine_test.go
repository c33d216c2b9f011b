package attendance

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/teams-worktime/internal/domain/attendance"
)

func strPtr(s string) *string { return &s }

func TestComputeWorkHours(t *testing.T) {
	tests := []struct {
		name        string
		clockIn     *string
		clockOut    *string
		isRest      int
		wantHours   float64
		wantMissing bool
	}{
		{"full day", strPtr("2026-01-05 09:00:00"), strPtr("2026-01-05 18:00:00"), 0, 9, false},
		{"half hour precision", strPtr("2026-01-05 09:00:00"), strPtr("2026-01-05 19:30:00"), 0, 10.5, false},
		{"negative is kept", strPtr("2026-01-05 18:00:00"), strPtr("2026-01-05 09:00:00"), 0, -9, false},
		{"iso layout", strPtr("2026-01-05T08:00:00"), strPtr("2026-01-05T10:00:00"), 0, 2, false},
		{"missing clock out", strPtr("2026-01-05 09:00:00"), nil, 0, 0, true},
		{"missing clock in", nil, strPtr("2026-01-05 18:00:00"), 0, 0, true},
		{"empty string", strPtr(""), strPtr("2026-01-05 18:00:00"), 0, 0, true},
		{"unparseable", strPtr("garbage"), strPtr("2026-01-05 18:00:00"), 0, 0, true},
		{"rest with clocks", strPtr("2026-01-05 09:00:00"), strPtr("2026-01-05 18:00:00"), 1, 0, false},
		{"rest without clocks", nil, nil, 2, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeWorkHours(tt.clockIn, tt.clockOut, tt.isRest)
			assert.InDelta(t, tt.wantHours, got.WorkHours, 1e-9)
			assert.Equal(t, tt.wantMissing, got.MissingClock)
		})
	}
}

func TestClassifyWorkday(t *testing.T) {
	tests := []struct {
		name   string
		record attendance.AttendanceRecord
		want   float64
	}{
		{"rest day", attendance.AttendanceRecord{IsRest: 1, WorkHours: 8}, 0},
		{"no remark", attendance.AttendanceRecord{}, 1},
		{"empty remark", attendance.AttendanceRecord{Remark: strPtr("")}, 1},
		{"late", attendance.AttendanceRecord{Remark: strPtr(attendance.RemarkLate)}, 1},
		{"early leave", attendance.AttendanceRecord{Remark: strPtr(attendance.RemarkEarlyLeave)}, 1},
		{"sick leave with work", attendance.AttendanceRecord{Remark: strPtr(attendance.RemarkSickLeave), WorkHours: 4}, 0.5},
		{"sick leave without work", attendance.AttendanceRecord{Remark: strPtr(attendance.RemarkSickLeave)}, 0},
		{"annual leave with work", attendance.AttendanceRecord{Remark: strPtr(attendance.RemarkAnnualLeave), WorkHours: 3}, 0.5},
		{"comp leave without work", attendance.AttendanceRecord{Remark: strPtr(attendance.RemarkCompLeave)}, 0},
		{"leave beats half-day remark2", attendance.AttendanceRecord{Remark: strPtr(attendance.RemarkSickLeave), Remark2: strPtr("上午半天")}, 0},
		{"other remark with half-day", attendance.AttendanceRecord{Remark: strPtr("other"), Remark2: strPtr("下午半天假")}, 0.5},
		{"other remark", attendance.AttendanceRecord{Remark: strPtr("other")}, 0},
		{"other remark, unrelated remark2", attendance.AttendanceRecord{Remark: strPtr("other"), Remark2: strPtr("出差")}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyWorkday(tt.record))
		})
	}
}

func TestNormalizeEntryRestDay(t *testing.T) {
	r := NormalizeEntry(attendance.RawCalendarEntry{
		Date:     "2026-01-03",
		IsRest:   1,
		ClockIn:  strPtr("2026-01-03 09:00:00"),
		ClockOut: strPtr("2026-01-03 12:00:00"),
	})

	assert.Equal(t, "2026-01", r.Month)
	assert.Zero(t, r.WorkHours)
	assert.False(t, r.MissingClock)
	assert.Zero(t, r.EffectiveWorkday)
	assert.False(t, IsInsufficient(r, attendance.DefaultInsufficientThreshold))
}

func TestNormalizeEntryRemark2(t *testing.T) {
	tests := []struct {
		name  string
		items []any
		want  *string
	}{
		{"none", nil, nil},
		{"empty", []any{}, nil},
		{"string", []any{"半天", "x"}, strPtr("半天")},
		{"number", []any{float64(3)}, strPtr("3")},
		{"fraction", []any{1.5}, strPtr("1.5")},
		{"null", []any{nil}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NormalizeEntry(attendance.RawCalendarEntry{Date: "2026-01-05", ResultItems: tt.items})
			assert.Equal(t, tt.want, r.Remark2)
		})
	}
}

func TestBuildRecords(t *testing.T) {
	entries := []attendance.RawCalendarEntry{
		{Date: "2026-01-02", ClockIn: strPtr("2026-01-02 09:00:00"), ClockOut: strPtr("2026-01-02 18:00:00")},
		{Date: "2026-01-01", ClockIn: strPtr("2026-01-01 09:00:00"), ClockOut: strPtr("2026-01-01 19:00:00")},
		{Date: "2026-01-01", ClockIn: strPtr("2026-01-01 08:00:00"), ClockOut: strPtr("2026-01-01 20:00:00")},
		{Date: "2026-02-01", ClockIn: strPtr("2026-02-01 09:00:00"), ClockOut: strPtr("2026-02-01 18:00:00")},
	}

	records := BuildRecords(entries, "2026-01")

	require.Len(t, records, 2)
	assert.Equal(t, "2026-01-02", records[0].Date, "input order is kept")
	assert.Equal(t, "2026-01-01", records[1].Date)
	assert.InDelta(t, 10.0, records[1].WorkHours, 1e-9, "first duplicate wins")
	for _, r := range records {
		assert.Equal(t, "2026-01", r.Month)
	}
}

func TestBuildRecordsEmpty(t *testing.T) {
	records := BuildRecords(nil, "2026-01")
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestBuildRecordsIsDeterministic(t *testing.T) {
	entries := []attendance.RawCalendarEntry{
		{Date: "2026-01-05", Remark: strPtr(attendance.RemarkSickLeave), ClockIn: strPtr("2026-01-05 09:00:00"), ClockOut: strPtr("2026-01-05 13:00:00")},
		{Date: "2026-01-06"},
	}
	assert.Equal(t, BuildRecords(entries, "2026-01"), BuildRecords(entries, "2026-01"))
}

func TestSummarizeAsOf(t *testing.T) {
	records := []attendance.AttendanceRecord{
		{Date: "2026-01-05", Month: "2026-01", WorkHours: 9, EffectiveWorkday: 1},
		{Date: "2026-01-06", Month: "2026-01", WorkHours: 4, EffectiveWorkday: 1},
	}

	summary := SummarizeAsOf(records, "2026-01-06")

	assert.Equal(t, 1.0, summary.ValidDays)
	assert.Equal(t, 9.0, summary.ValidHours)
	require.NotNil(t, summary.AvgHours)
	assert.Equal(t, 9.0, *summary.AvgHours)
}

func TestSummarizeExcludesToday(t *testing.T) {
	now := time.Now()
	yesterday := now.AddDate(0, 0, -1).Format(attendance.DateLayout)
	todayDate := now.Format(attendance.DateLayout)

	summary := Summarize([]attendance.AttendanceRecord{
		{Date: yesterday, WorkHours: 9, EffectiveWorkday: 1},
		{Date: todayDate, WorkHours: 2, EffectiveWorkday: 1},
	})

	assert.Equal(t, 1.0, summary.ValidDays)
	assert.Equal(t, 9.0, summary.ValidHours)
	require.NotNil(t, summary.AvgHours)
	assert.Equal(t, 9.0, *summary.AvgHours)
}

func TestSummarizeNoCredit(t *testing.T) {
	summary := SummarizeAsOf([]attendance.AttendanceRecord{
		{Date: "2026-01-03", IsRest: 1},
	}, "2026-02-01")

	assert.Zero(t, summary.ValidDays)
	assert.Nil(t, summary.AvgHours)
}

func TestSummarizeRounding(t *testing.T) {
	summary := SummarizeAsOf([]attendance.AttendanceRecord{
		{Date: "2026-01-05", WorkHours: 10, EffectiveWorkday: 1},
		{Date: "2026-01-06", WorkHours: 10, EffectiveWorkday: 1},
		{Date: "2026-01-07", WorkHours: 12, EffectiveWorkday: 1},
	}, "2026-02-01")

	require.NotNil(t, summary.AvgHours)
	assert.Equal(t, 10.67, *summary.AvgHours)
}

func TestMonthlyAverageAsOf(t *testing.T) {
	records := []attendance.AttendanceRecord{
		{Date: "2026-01-05", Month: "2026-01", WorkHours: 9, EffectiveWorkday: 1},
		{Date: "2026-01-06", Month: "2026-01", WorkHours: 11, EffectiveWorkday: 1},
		{Date: "2026-03-02", Month: "2026-03", WorkHours: 5, EffectiveWorkday: 0.5},
	}

	points := MonthlyAverageAsOf(records, []string{"2026-03", "2026-02", "2026-01"}, "2026-04-01")

	require.Len(t, points, 3)
	assert.Equal(t, attendance.ChartPoint{Label: "2026-03", Value: 10}, points[0])
	assert.Equal(t, attendance.ChartPoint{Label: "2026-02", Value: 0}, points[1])
	assert.Equal(t, attendance.ChartPoint{Label: "2026-01", Value: 10}, points[2])
}

func TestMonthlyAverageUsesToday(t *testing.T) {
	points := MonthlyAverage([]attendance.AttendanceRecord{
		{Date: "2020-01-06", Month: "2020-01", WorkHours: 9, EffectiveWorkday: 1},
		{Date: "2020-01-07", Month: "2020-01", WorkHours: 11, EffectiveWorkday: 1},
	}, []string{"2020-01", "2020-02"})

	assert.Equal(t, []attendance.ChartPoint{
		{Label: "2020-01", Value: 10},
		{Label: "2020-02", Value: 0},
	}, points)
}

func TestDailyAverageUsesToday(t *testing.T) {
	todayDate := time.Now().Format(attendance.DateLayout)
	month := todayDate[:7]

	points := DailyAverage([]attendance.AttendanceRecord{
		{Date: "2020-01-06", Month: "2020-01", WorkHours: 4.5, EffectiveWorkday: 0.5},
		{Date: todayDate, Month: month, WorkHours: 3, EffectiveWorkday: 1},
	}, "2020-01")

	assert.Equal(t, []attendance.ChartPoint{
		{Label: "06", Value: 9, Date: "2020-01-06", IsHalfDay: true},
	}, points)
	assert.Empty(t, DailyAverage([]attendance.AttendanceRecord{
		{Date: todayDate, Month: month, WorkHours: 3, EffectiveWorkday: 1},
	}, month), "today is still in progress")
}

func TestDailyAverageAsOf(t *testing.T) {
	records := []attendance.AttendanceRecord{
		{Date: "2026-01-07", Month: "2026-01", WorkHours: 10, EffectiveWorkday: 1},
		{Date: "2026-01-05", Month: "2026-01", WorkHours: 5, EffectiveWorkday: 0.5},
		{Date: "2026-01-06", Month: "2026-01", WorkHours: 0, EffectiveWorkday: 0},
		{Date: "2026-01-08", Month: "2026-01", WorkHours: 3, EffectiveWorkday: 1},
		{Date: "2026-02-02", Month: "2026-02", WorkHours: 9, EffectiveWorkday: 1},
	}

	points := DailyAverageAsOf(records, "2026-01", "2026-01-08")

	require.Len(t, points, 2)
	assert.Equal(t, attendance.ChartPoint{Label: "05", Value: 10, Date: "2026-01-05", IsHalfDay: true}, points[0])
	assert.Equal(t, attendance.ChartPoint{Label: "07", Value: 10, Date: "2026-01-07"}, points[1])
}

func TestIsInsufficient(t *testing.T) {
	assert.True(t, IsInsufficient(attendance.AttendanceRecord{WorkHours: 10.5}, 10.5), "boundary is inclusive")
	assert.True(t, IsInsufficient(attendance.AttendanceRecord{WorkHours: 8}, 10.5))
	assert.False(t, IsInsufficient(attendance.AttendanceRecord{WorkHours: 10.51}, 10.5))
	assert.False(t, IsInsufficient(attendance.AttendanceRecord{MissingClock: true}, 10.5))
	assert.False(t, IsInsufficient(attendance.AttendanceRecord{IsRest: 1}, 10.5))
}

func TestParseThreshold(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		fallback string
		want     attendance.ThresholdResult
	}{
		{"valid", " 9.5 ", "10.5", attendance.ThresholdResult{Value: 9.5, Normalized: "9.5", Valid: true}},
		{"empty uses fallback", "", "10.5", attendance.ThresholdResult{Value: 10.5, Normalized: "10.5"}},
		{"zero uses fallback", "0", "8", attendance.ThresholdResult{Value: 8, Normalized: "8"}},
		{"bad fallback uses default", "-1", "abc", attendance.ThresholdResult{Value: 10.5, Normalized: "10.5"}},
		{"infinite", "Inf", "", attendance.ThresholdResult{Value: 10.5, Normalized: "10.5"}},
		{"nan", "NaN", "7", attendance.ThresholdResult{Value: 7, Normalized: "7"}},
		{"trailing junk", "9h", "11", attendance.ThresholdResult{Value: 11, Normalized: "11"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseThreshold(tt.input, tt.fallback))
		})
	}
}

func TestFormatHours(t *testing.T) {
	assert.Equal(t, "9.00", FormatHours(9))
	assert.Equal(t, "10.67", FormatHours(10.666))
	assert.Equal(t, "-1.50", FormatHours(-1.5))
}

func TestMonthHelpers(t *testing.T) {
	assert.Equal(t, "2026-02", NextMonth("2026-01"))
	assert.Equal(t, "2027-01", NextMonth("2026-12"))
	assert.Equal(t, "bad", NextMonth("bad"))

	now := time.Date(2026, time.March, 31, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"2025-12", "2026-01", "2026-02", "2026-03"}, RecentMonthsFrom(now, 4))
	assert.Empty(t, RecentMonthsFrom(now, 0))
	assert.Len(t, RecentMonths(12), 12)

	assert.Equal(t, []string{"2025-11", "2025-12", "2026-01"}, MonthsBetween("2025-11", "2026-01"))
	assert.Equal(t, []string{"2026-01"}, MonthsBetween("2026-01", "2026-01"))
	assert.Empty(t, MonthsBetween("2026-02", "2026-01"))
	assert.Empty(t, MonthsBetween("2026-13", "2026-01"))

	assert.Equal(t, 3, monthSpan("2025-11", "2026-01"))
	assert.Equal(t, 1, monthSpan("2026-01", "2026-01"))
	assert.Equal(t, 119988, monthSpan("0001-01", "9999-12"))
	assert.Zero(t, monthSpan("2026-02", "2026-01"))
	assert.Zero(t, monthSpan("bad", "2026-01"))
}

func TestRecordJSONRoundTrip(t *testing.T) {
	records := BuildRecords([]attendance.RawCalendarEntry{
		{Date: "2026-01-05", ClockIn: strPtr("2026-01-05 09:00:00"), ClockOut: strPtr("2026-01-05 18:15:00"), Remark: strPtr(attendance.RemarkLate)},
		{Date: "2026-01-06", Remark: strPtr(attendance.RemarkAnnualLeave), ResultItems: []any{"全天"}},
		{Date: "2026-01-04", IsRest: 1},
	}, "2026-01")

	data, err := json.Marshal(records)
	require.NoError(t, err)

	var decoded []attendance.AttendanceRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, records, decoded)
}

func TestRawEntryDecoding(t *testing.T) {
	payload := `[{"attDate":"2026-01-05","isrest":0,"firstDate":"2026-01-05 09:00:00","endDate":null,"exp":"迟到","resultList":["半天",2]}]`

	var entries []attendance.RawCalendarEntry
	require.NoError(t, json.Unmarshal([]byte(payload), &entries))
	require.Len(t, entries, 1)

	r := NormalizeEntry(entries[0])
	assert.True(t, r.MissingClock)
	assert.Equal(t, strPtr("半天"), r.Remark2)
	assert.Equal(t, 1.0, r.EffectiveWorkday)
}
