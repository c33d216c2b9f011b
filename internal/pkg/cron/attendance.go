package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/teams-worktime/internal/domain/attendance"
)

const RefreshJobName = "refresh_attendance_snapshots"

type AttendanceJobs struct {
	settingsRepo   attendance.SettingsRepository
	attendanceSvc  attendance.AttendanceService
	lookbackMonths int
}

func NewAttendanceJobs(
	settingsRepo attendance.SettingsRepository,
	attendanceSvc attendance.AttendanceService,
	lookbackMonths int,
) *AttendanceJobs {
	return &AttendanceJobs{
		settingsRepo:   settingsRepo,
		attendanceSvc:  attendanceSvc,
		lookbackMonths: lookbackMonths,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, spec string) error {
	if spec == "" {
		slog.Info("Cron: attendance refresh disabled")
		return nil
	}
	return scheduler.AddJob(RefreshJobName, spec, j.RefreshSnapshots)
}

// RefreshSnapshots re-syncs every employee with stored credentials. One
// failing employee does not stop the others.
func (j *AttendanceJobs) RefreshSnapshots(ctx context.Context) error {
	slog.Info("Cron: Starting attendance refresh job")

	settings, err := j.settingsRepo.ListWithCredentials(ctx)
	if err != nil {
		return fmt.Errorf("failed to list credentials: %w", err)
	}

	if len(settings) == 0 {
		slog.Info("Cron: No employees with credentials")
		return nil
	}

	var errs []error
	refreshed := 0
	for _, s := range settings {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, err := j.attendanceSvc.SyncEmployee(ctx, s.EmCode, j.lookbackMonths)
		if err != nil {
			slog.Warn("Cron: attendance refresh failed", "em_code", s.EmCode, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.EmCode, err))
			continue
		}
		refreshed++
		slog.Debug("Cron: attendance refreshed", "em_code", s.EmCode, "records", resp.RecordCount)
	}

	slog.Info("Cron: Attendance refresh finished", "refreshed", refreshed, "failed", len(errs))
	return errors.Join(errs...)
}
