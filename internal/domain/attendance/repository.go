package attendance

import (
	"context"
)

// SnapshotRepository stores the last synced record set per employee.
type SnapshotRepository interface {
	// Get returns ErrSnapshotNotFound when nothing was synced for emCode
	Get(ctx context.Context, emCode string) (Snapshot, error)

	// Replace discards any previous snapshot of the employee and stores the new one
	Replace(ctx context.Context, snapshot Snapshot) (Snapshot, error)
}

// SettingsRepository stores per-employee credentials and threshold text.
type SettingsRepository interface {
	// Get returns ErrSettingsNotFound when the employee has no settings row
	Get(ctx context.Context, emCode string) (Settings, error)

	UpsertCredentials(ctx context.Context, emCode string, authorization string) error
	UpsertThreshold(ctx context.Context, emCode string, threshold string) error

	// ListWithCredentials is used by the scheduled refresh
	ListWithCredentials(ctx context.Context) ([]Settings, error)
}
