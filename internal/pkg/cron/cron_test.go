package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/teams-worktime/internal/domain/attendance"
)

func TestAddJobValidatesSpec(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	require.NoError(t, s.AddJob("ok", "0 30 6 * * *", func(context.Context) error { return nil }))
	assert.Error(t, s.AddJob("bad", "every morning", func(context.Context) error { return nil }))
	assert.Len(t, s.Jobs(), 1)
}

func TestRunOnce(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	calls := 0
	require.NoError(t, s.AddJob("a", "@hourly", func(context.Context) error { calls++; return nil }))
	require.NoError(t, s.AddJob("b", "@daily", func(context.Context) error { calls++; return errors.New("ignored") }))

	s.RunOnce(context.Background())
	assert.Equal(t, 2, calls)
}

type stubSettings struct {
	attendance.SettingsRepository
	items []attendance.Settings
}

func (s stubSettings) ListWithCredentials(context.Context) ([]attendance.Settings, error) {
	return s.items, nil
}

type stubAttendance struct {
	attendance.AttendanceService
	synced []string
	months []int
}

func (s *stubAttendance) SyncEmployee(_ context.Context, emCode string, months int) (attendance.SyncResponse, error) {
	s.synced = append(s.synced, emCode)
	s.months = append(s.months, months)
	if emCode == "E-broken" {
		return attendance.SyncResponse{}, attendance.ErrUpstreamRejected
	}
	return attendance.SyncResponse{EmCode: emCode}, nil
}

func TestRefreshSnapshots(t *testing.T) {
	svc := &stubAttendance{}
	jobs := NewAttendanceJobs(stubSettings{items: []attendance.Settings{
		{EmCode: "E1001"}, {EmCode: "E-broken"}, {EmCode: "E3003"},
	}}, svc, 6)

	err := jobs.RefreshSnapshots(context.Background())

	assert.ErrorIs(t, err, attendance.ErrUpstreamRejected)
	assert.Equal(t, []string{"E1001", "E-broken", "E3003"}, svc.synced)
	assert.Equal(t, []int{6, 6, 6}, svc.months)
}

func TestRegisterJobs(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()
	jobs := NewAttendanceJobs(stubSettings{}, &stubAttendance{}, 12)

	require.NoError(t, jobs.RegisterJobs(s, ""))
	assert.Empty(t, s.Jobs())

	require.NoError(t, jobs.RegisterJobs(s, "0 30 6 * * *"))
	require.Len(t, s.Jobs(), 1)
	assert.Equal(t, RefreshJobName, s.Jobs()[0].Name)
	assert.Equal(t, "0 30 6 * * *", s.Jobs()[0].Spec)
}
