package attendance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/teams-worktime/internal/domain/attendance"
	"github.com/cmlabs-hris/teams-worktime/internal/pkg/export"
	"github.com/cmlabs-hris/teams-worktime/internal/pkg/jwt"
	"github.com/cmlabs-hris/teams-worktime/internal/pkg/metrics"
	"github.com/cmlabs-hris/teams-worktime/internal/pkg/teams"
	"github.com/cmlabs-hris/teams-worktime/internal/pkg/validator"
)

const (
	TriggerAPI  = "api"
	TriggerCron = "cron"

	defaultRangeMonths = 12
	emptyHoursText     = "--"
)

// Options tunes the attendance service. Zero values fall back to defaults.
type Options struct {
	LookbackMonths   int
	Concurrency      int
	DefaultThreshold string
	Location         *time.Location
	Clock            func() time.Time
	Notifier         attendance.SyncNotifier
}

type AttendanceServiceImpl struct {
	snapshots attendance.SnapshotRepository
	settings  attendance.SettingsRepository
	client    attendance.CalendarClient
	opts      Options
}

func NewAttendanceService(
	snapshotRepo attendance.SnapshotRepository,
	settingsRepo attendance.SettingsRepository,
	client attendance.CalendarClient,
	opts Options,
) attendance.AttendanceService {
	if opts.LookbackMonths <= 0 {
		opts.LookbackMonths = defaultRangeMonths
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 3
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &AttendanceServiceImpl{
		snapshots: snapshotRepo,
		settings:  settingsRepo,
		client:    client,
		opts:      opts,
	}
}

func (s *AttendanceServiceImpl) now() time.Time {
	return s.opts.Clock().In(s.opts.Location)
}

func (s *AttendanceServiceImpl) today() string {
	return s.now().Format(attendance.DateLayout)
}

// Sync implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Sync(ctx context.Context, req attendance.SyncRequest) (attendance.SyncResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.SyncResponse{}, err
	}

	emCode, err := jwt.EmCodeFromContext(ctx)
	if err != nil {
		return attendance.SyncResponse{}, err
	}

	return s.sync(ctx, emCode, req.Months, TriggerAPI)
}

// SyncEmployee implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) SyncEmployee(ctx context.Context, emCode string, months int) (attendance.SyncResponse, error) {
	return s.sync(ctx, emCode, months, TriggerCron)
}

func (s *AttendanceServiceImpl) sync(ctx context.Context, emCode string, months int, trigger string) (resp attendance.SyncResponse, err error) {
	defer func() {
		status := "success"
		if err != nil {
			status = "failure"
		}
		metrics.Syncs.WithLabelValues(trigger, status).Inc()
	}()

	if months <= 0 {
		months = s.opts.LookbackMonths
	}

	creds, err := s.credentials(ctx, emCode)
	if err != nil {
		return attendance.SyncResponse{}, err
	}

	cycles := RecentMonthsFrom(s.now(), months)
	records, err := s.fetchRecords(ctx, creds, cycles)
	if err != nil {
		return attendance.SyncResponse{}, err
	}

	snapshot, err := s.snapshots.Replace(ctx, attendance.Snapshot{
		EmCode:    emCode,
		Records:   records,
		FetchedAt: s.now(),
	})
	if err != nil {
		return attendance.SyncResponse{}, fmt.Errorf("failed to store snapshot: %w", err)
	}

	metrics.SyncedRecords.Set(float64(len(records)))
	slog.Info("Attendance synced", "em_code", emCode, "trigger", trigger, "months", len(cycles), "records", len(records))

	resp = attendance.SyncResponse{
		EmCode:      emCode,
		Months:      cycles,
		RecordCount: len(records),
		FetchedAt:   s.formatTime(snapshot.FetchedAt),
	}
	if s.opts.Notifier != nil {
		s.opts.Notifier.SnapshotSynced(emCode, resp)
	}
	return resp, nil
}

func (s *AttendanceServiceImpl) credentials(ctx context.Context, emCode string) (attendance.Credentials, error) {
	settings, err := s.settings.Get(ctx, emCode)
	if err != nil {
		if errors.Is(err, attendance.ErrSettingsNotFound) {
			return attendance.Credentials{}, attendance.ErrCredentialsMissing
		}
		return attendance.Credentials{}, fmt.Errorf("failed to load settings: %w", err)
	}
	if !settings.HasCredentials() {
		return attendance.Credentials{}, attendance.ErrCredentialsMissing
	}

	return attendance.Credentials{EmCode: emCode, Authorization: *settings.TeamsAuthorization}, nil
}

// fetchRecords downloads every cycle plus the one after the last, then builds
// each cycle from its own entries merged with the next cycle's entries. The
// upstream cycle window straddles month boundaries.
func (s *AttendanceServiceImpl) fetchRecords(ctx context.Context, creds attendance.Credentials, cycles []string) ([]attendance.AttendanceRecord, error) {
	if len(cycles) == 0 {
		return []attendance.AttendanceRecord{}, nil
	}

	fetchCycles := append(append([]string{}, cycles...), NextMonth(cycles[len(cycles)-1]))
	responses := make([][]attendance.RawCalendarEntry, len(fetchCycles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)

	for i, cycle := range fetchCycles {
		g.Go(func() error {
			entries, err := s.client.FetchCalendar(gctx, creds, cycle)
			if err != nil {
				return translateUpstreamError(err)
			}
			responses[i] = entries
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		slog.Error("Attendance fetch failed", "em_code", creds.EmCode, "error", err)
		return nil, err
	}

	records := make([]attendance.AttendanceRecord, 0)
	for i, cycle := range cycles {
		merged := make([]attendance.RawCalendarEntry, 0, len(responses[i])+len(responses[i+1]))
		merged = append(merged, responses[i]...)
		merged = append(merged, responses[i+1]...)
		records = append(records, BuildRecords(merged, cycle)...)
	}

	return records, nil
}

func translateUpstreamError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case teams.IsUnauthorized(err):
		return fmt.Errorf("%w: %v", attendance.ErrUpstreamRejected, err)
	default:
		return fmt.Errorf("%w: %v", attendance.ErrUpstreamUnavailable, err)
	}
}

// resolveMonths turns a filter into an ascending month list. Without a
// filter the last twelve months are used.
func (s *AttendanceServiceImpl) resolveMonths(filter attendance.RecordFilter) ([]string, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	if filter.Month != nil {
		return []string{*filter.Month}, nil
	}

	current := s.now().Format(attendance.MonthLayout)
	var start, end string

	switch {
	case filter.StartMonth != nil && filter.EndMonth != nil:
		start, end = *filter.StartMonth, *filter.EndMonth
	case filter.StartMonth != nil:
		start, end = *filter.StartMonth, current
	case filter.EndMonth != nil:
		end = *filter.EndMonth
		start = end
		for i := 1; i < defaultRangeMonths; i++ {
			start = previousMonth(start)
		}
	default:
		recent := RecentMonthsFrom(s.now(), defaultRangeMonths)
		start, end = recent[0], recent[len(recent)-1]
	}

	if monthSpan(start, end) > attendance.MaxSyncMonths {
		field := "end_month"
		if filter.EndMonth == nil {
			field = "start_month"
		}
		return nil, validator.ValidationErrors{{
			Field:   field,
			Message: fmt.Sprintf("range must not exceed %d months", attendance.MaxSyncMonths),
		}}
	}

	months := MonthsBetween(start, end)
	if len(months) == 0 {
		return nil, attendance.ErrInvalidMonthRange
	}
	return months, nil
}

func previousMonth(month string) string {
	t, ok := parseMonth(month)
	if !ok {
		return month
	}
	return t.AddDate(0, -1, 0).Format(attendance.MonthLayout)
}

type snapshotView struct {
	emCode    string
	snapshot  attendance.Snapshot
	threshold float64
}

func (s *AttendanceServiceImpl) loadSnapshot(ctx context.Context) (snapshotView, error) {
	emCode, err := jwt.EmCodeFromContext(ctx)
	if err != nil {
		return snapshotView{}, err
	}

	snapshot, err := s.snapshots.Get(ctx, emCode)
	if err != nil {
		return snapshotView{}, err
	}

	threshold, err := s.threshold(ctx, emCode)
	if err != nil {
		return snapshotView{}, err
	}

	return snapshotView{emCode: emCode, snapshot: snapshot, threshold: threshold}, nil
}

func (s *AttendanceServiceImpl) threshold(ctx context.Context, emCode string) (float64, error) {
	stored := ""
	settings, err := s.settings.Get(ctx, emCode)
	switch {
	case err == nil:
		if settings.Threshold != nil {
			stored = *settings.Threshold
		}
	case errors.Is(err, attendance.ErrSettingsNotFound):
	default:
		return 0, fmt.Errorf("failed to load settings: %w", err)
	}

	return ParseThreshold(stored, s.opts.DefaultThreshold).Value, nil
}

func (s *AttendanceServiceImpl) formatTime(t time.Time) string {
	return t.In(s.opts.Location).Format(attendance.DateTimeLayout)
}

func (s *AttendanceServiceImpl) recordResponses(records []attendance.AttendanceRecord, threshold float64) []attendance.RecordResponse {
	result := make([]attendance.RecordResponse, 0, len(records))
	for _, r := range records {
		result = append(result, attendance.RecordResponse{
			AttendanceRecord: r,
			Insufficient:     IsInsufficient(r, threshold),
			WorkHoursText:    FormatHours(r.WorkHours),
		})
	}
	return result
}

// ListRecords implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListRecords(ctx context.Context, filter attendance.RecordFilter) (attendance.ListRecordsResponse, error) {
	months, err := s.resolveMonths(filter)
	if err != nil {
		return attendance.ListRecordsResponse{}, err
	}

	view, err := s.loadSnapshot(ctx)
	if err != nil {
		return attendance.ListRecordsResponse{}, err
	}

	records := FilterMonths(view.snapshot.Records, months)

	return attendance.ListRecordsResponse{
		EmCode:    view.emCode,
		Months:    months,
		Threshold: view.threshold,
		FetchedAt: s.formatTime(view.snapshot.FetchedAt),
		Records:   s.recordResponses(records, view.threshold),
	}, nil
}

// GetSummary implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetSummary(ctx context.Context, filter attendance.RecordFilter) (attendance.SummaryResponse, error) {
	months, err := s.resolveMonths(filter)
	if err != nil {
		return attendance.SummaryResponse{}, err
	}

	view, err := s.loadSnapshot(ctx)
	if err != nil {
		return attendance.SummaryResponse{}, err
	}

	summary := SummarizeAsOf(FilterMonths(view.snapshot.Records, months), s.today())

	avgText := emptyHoursText
	if summary.AvgHours != nil {
		avgText = FormatHours(*summary.AvgHours)
	}

	return attendance.SummaryResponse{
		EmCode:       view.emCode,
		Months:       months,
		ValidDays:    summary.ValidDays,
		ValidHours:   round2(summary.ValidHours),
		AvgHours:     summary.AvgHours,
		AvgHoursText: avgText,
		FetchedAt:    s.formatTime(view.snapshot.FetchedAt),
	}, nil
}

func chartPoints(points []attendance.ChartPoint, threshold float64, shortLabel func(string) string) []attendance.ChartPointResponse {
	result := make([]attendance.ChartPointResponse, 0, len(points))
	for _, p := range points {
		result = append(result, attendance.ChartPointResponse{
			ChartPoint:     p,
			ShortLabel:     shortLabel(p.Label),
			MeetsThreshold: p.Value >= threshold,
		})
	}
	return result
}

// shortMonth trims "2026-01" to "26-01".
func shortMonth(label string) string {
	if len(label) > 2 {
		return label[2:]
	}
	return label
}

// GetMonthlyChart implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMonthlyChart(ctx context.Context, filter attendance.RecordFilter) (attendance.ChartResponse, error) {
	months, err := s.resolveMonths(filter)
	if err != nil {
		return attendance.ChartResponse{}, err
	}

	view, err := s.loadSnapshot(ctx)
	if err != nil {
		return attendance.ChartResponse{}, err
	}

	points := MonthlyAverageAsOf(view.snapshot.Records, months, s.today())

	return attendance.ChartResponse{
		Mode:      "year",
		Months:    months,
		Threshold: view.threshold,
		Points:    chartPoints(points, view.threshold, shortMonth),
	}, nil
}

// GetDailyChart implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetDailyChart(ctx context.Context, month string) (attendance.ChartResponse, error) {
	if !validator.IsValidMonth(month) {
		return attendance.ChartResponse{}, validator.ValidationErrors{
			{Field: "month", Message: "month must be in YYYY-MM format"},
		}
	}

	view, err := s.loadSnapshot(ctx)
	if err != nil {
		return attendance.ChartResponse{}, err
	}

	points := DailyAverageAsOf(view.snapshot.Records, month, s.today())

	return attendance.ChartResponse{
		Mode:      "month",
		Months:    []string{month},
		Threshold: view.threshold,
		Points:    chartPoints(points, view.threshold, func(label string) string { return label }),
	}, nil
}

// Export implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Export(ctx context.Context, filter attendance.RecordFilter) (*bytes.Buffer, string, error) {
	months, err := s.resolveMonths(filter)
	if err != nil {
		return nil, "", err
	}

	view, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, "", err
	}

	records := FilterMonths(view.snapshot.Records, months)

	buf, err := export.WriteToBuffer(export.Report{
		EmCode:    view.emCode,
		Months:    months,
		Threshold: view.threshold,
		FetchedAt: s.formatTime(view.snapshot.FetchedAt),
		Records:   s.recordResponses(records, view.threshold),
		Summary:   SummarizeAsOf(records, s.today()),
		Monthly:   MonthlyAverageAsOf(view.snapshot.Records, months, s.today()),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to render export: %w", err)
	}

	filename := fmt.Sprintf("attendance_%s_%s_%s.xlsx", view.emCode, months[0], months[len(months)-1])
	return buf, filename, nil
}
