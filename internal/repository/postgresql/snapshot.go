package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/teams-worktime/internal/domain/attendance"
	"github.com/cmlabs-hris/teams-worktime/internal/pkg/database"
)

type snapshotRepository struct {
	db *database.DB
}

// Get implements attendance.SnapshotRepository.
func (s *snapshotRepository) Get(ctx context.Context, emCode string) (attendance.Snapshot, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT id, em_code, records, fetched_at, created_at
		FROM attendance_snapshots
		WHERE em_code = $1
	`

	var snapshot attendance.Snapshot
	var raw []byte
	err := q.QueryRow(ctx, query, emCode).Scan(
		&snapshot.ID, &snapshot.EmCode, &raw, &snapshot.FetchedAt, &snapshot.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Snapshot{}, attendance.ErrSnapshotNotFound
		}
		return attendance.Snapshot{}, fmt.Errorf("failed to get snapshot: %w", err)
	}

	if err := json.Unmarshal(raw, &snapshot.Records); err != nil {
		return attendance.Snapshot{}, fmt.Errorf("failed to decode snapshot records: %w", err)
	}
	if snapshot.Records == nil {
		snapshot.Records = []attendance.AttendanceRecord{}
	}

	return snapshot, nil
}

// Replace implements attendance.SnapshotRepository.
func (s *snapshotRepository) Replace(ctx context.Context, snapshot attendance.Snapshot) (attendance.Snapshot, error) {
	records := snapshot.Records
	if records == nil {
		records = []attendance.AttendanceRecord{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return attendance.Snapshot{}, fmt.Errorf("failed to encode snapshot records: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Snapshot{}, fmt.Errorf("failed to generate snapshot id: %w", err)
	}

	stored := snapshot
	stored.ID = id.String()
	stored.Records = records

	err = WithTransaction(ctx, s.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, s.db)

		if _, err := q.Exec(ctx, `DELETE FROM attendance_snapshots WHERE em_code = $1`, snapshot.EmCode); err != nil {
			return fmt.Errorf("failed to delete previous snapshot: %w", err)
		}

		query := `
			INSERT INTO attendance_snapshots (id, em_code, records, fetched_at)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at
		`
		if err := q.QueryRow(ctx, query, stored.ID, stored.EmCode, raw, stored.FetchedAt).Scan(&stored.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.Snapshot{}, err
	}

	return stored, nil
}

func NewSnapshotRepository(db *database.DB) attendance.SnapshotRepository {
	return &snapshotRepository{db: db}
}
