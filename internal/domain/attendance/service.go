package attendance

import (
	"bytes"
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// Sync fetches recent months for the authenticated employee and replaces the snapshot
	Sync(ctx context.Context, req SyncRequest) (SyncResponse, error)

	// SyncEmployee is Sync for an explicit employee, used by background jobs
	SyncEmployee(ctx context.Context, emCode string, months int) (SyncResponse, error)

	// ListRecords returns snapshot records for a month or month range
	ListRecords(ctx context.Context, filter RecordFilter) (ListRecordsResponse, error)

	// GetSummary aggregates records for a month or month range
	GetSummary(ctx context.Context, filter RecordFilter) (SummaryResponse, error)

	// GetMonthlyChart returns one average point per month of the range
	GetMonthlyChart(ctx context.Context, filter RecordFilter) (ChartResponse, error)

	// GetDailyChart returns per-day normalized hours for one month
	GetDailyChart(ctx context.Context, month string) (ChartResponse, error)

	// Export renders records for a month or range as an XLSX workbook
	Export(ctx context.Context, filter RecordFilter) (*bytes.Buffer, string, error)
}

// SettingsService manages stored credentials and the insufficiency threshold
type SettingsService interface {
	GetSettings(ctx context.Context) (SettingsResponse, error)
	UpdateCredentials(ctx context.Context, req UpdateCredentialsRequest) (SettingsResponse, error)
	UpdateThreshold(ctx context.Context, req UpdateThresholdRequest) (ThresholdResult, error)
}

// CalendarClient fetches one cycle of raw calendar entries from upstream.
type CalendarClient interface {
	FetchCalendar(ctx context.Context, creds Credentials, cycle string) ([]RawCalendarEntry, error)
}

// SyncNotifier is told about every successful snapshot replacement.
type SyncNotifier interface {
	SnapshotSynced(emCode string, resp SyncResponse)
}
