package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/teams-worktime/internal/domain/attendance"
	"github.com/cmlabs-hris/teams-worktime/internal/repository/postgresql"
)

func strPtr(s string) *string { return &s }

func TestSnapshotRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewSnapshotRepository(setup.DB)
	ctx := context.Background()

	t.Run("missing snapshot", func(t *testing.T) {
		_, err := repo.Get(ctx, "E404")
		assert.ErrorIs(t, err, attendance.ErrSnapshotNotFound)
	})

	t.Run("replace keeps only the latest", func(t *testing.T) {
		fetchedAt := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
		records := []attendance.AttendanceRecord{
			{Date: "2026-01-05", Month: "2026-01", ClockIn: strPtr("2026-01-05 09:00:00"), ClockOut: strPtr("2026-01-05 18:30:00"), WorkHours: 9.5, EffectiveWorkday: 1},
			{Date: "2026-01-04", Month: "2026-01", IsRest: 1, Remark2: strPtr("休息")},
		}

		_, err := repo.Replace(ctx, attendance.Snapshot{EmCode: "E1001", Records: records[:1], FetchedAt: fetchedAt.Add(-time.Hour)})
		require.NoError(t, err)

		stored, err := repo.Replace(ctx, attendance.Snapshot{EmCode: "E1001", Records: records, FetchedAt: fetchedAt})
		require.NoError(t, err)
		assert.NotEmpty(t, stored.ID)

		got, err := repo.Get(ctx, "E1001")
		require.NoError(t, err)
		assert.Equal(t, stored.ID, got.ID)
		assert.Equal(t, records, got.Records)
		assert.True(t, fetchedAt.Equal(got.FetchedAt))
	})

	t.Run("snapshots are per employee", func(t *testing.T) {
		_, err := repo.Replace(ctx, attendance.Snapshot{EmCode: "E2002", FetchedAt: time.Now()})
		require.NoError(t, err)

		got, err := repo.Get(ctx, "E2002")
		require.NoError(t, err)
		assert.Empty(t, got.Records)

		other, err := repo.Get(ctx, "E1001")
		require.NoError(t, err)
		assert.Len(t, other.Records, 2)
	})
}

func TestSettingsRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewSettingsRepository(setup.DB)
	ctx := context.Background()

	_, err := repo.Get(ctx, "E1001")
	assert.ErrorIs(t, err, attendance.ErrSettingsNotFound)

	require.NoError(t, repo.UpsertThreshold(ctx, "E1001", "9.5"))
	require.NoError(t, repo.UpsertCredentials(ctx, "E1001", "token-1"))
	require.NoError(t, repo.UpsertCredentials(ctx, "E1001", "token-2"))
	require.NoError(t, repo.UpsertThreshold(ctx, "E3003", "11"))

	got, err := repo.Get(ctx, "E1001")
	require.NoError(t, err)
	require.NotNil(t, got.TeamsAuthorization)
	assert.Equal(t, "token-2", *got.TeamsAuthorization)
	require.NotNil(t, got.Threshold)
	assert.Equal(t, "9.5", *got.Threshold)

	list, err := repo.ListWithCredentials(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "E1001", list[0].EmCode)
}

func TestWithTransactionRollsBack(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewSettingsRepository(setup.DB)
	ctx := context.Background()

	boom := errors.New("boom")
	err := postgresql.WithTransaction(ctx, setup.DB, func(ctx context.Context) error {
		if err := repo.UpsertThreshold(ctx, "E5005", "8"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = repo.Get(ctx, "E5005")
	assert.ErrorIs(t, err, attendance.ErrSettingsNotFound)
}
