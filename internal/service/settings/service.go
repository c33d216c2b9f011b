package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/teams-worktime/internal/domain/attendance"
	"github.com/cmlabs-hris/teams-worktime/internal/pkg/jwt"
	engine "github.com/cmlabs-hris/teams-worktime/internal/service/attendance"
)

// CacheInvalidator drops cached upstream responses of an employee.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, emCode string) error
}

type SettingsServiceImpl struct {
	settings         attendance.SettingsRepository
	snapshots        attendance.SnapshotRepository
	cache            CacheInvalidator
	defaultThreshold string
	location         *time.Location
}

// NewSettingsService creates the settings service. cache may be nil.
func NewSettingsService(
	settingsRepo attendance.SettingsRepository,
	snapshotRepo attendance.SnapshotRepository,
	cache CacheInvalidator,
	defaultThreshold string,
	location *time.Location,
) attendance.SettingsService {
	if location == nil {
		location = time.Local
	}
	return &SettingsServiceImpl{
		settings:         settingsRepo,
		snapshots:        snapshotRepo,
		cache:            cache,
		defaultThreshold: defaultThreshold,
		location:         location,
	}
}

func (s *SettingsServiceImpl) load(ctx context.Context, emCode string) (attendance.Settings, error) {
	settings, err := s.settings.Get(ctx, emCode)
	if err != nil {
		if errors.Is(err, attendance.ErrSettingsNotFound) {
			return attendance.Settings{EmCode: emCode}, nil
		}
		return attendance.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

func storedThreshold(settings attendance.Settings) string {
	if settings.Threshold == nil {
		return ""
	}
	return *settings.Threshold
}

// GetSettings implements attendance.SettingsService.
func (s *SettingsServiceImpl) GetSettings(ctx context.Context) (attendance.SettingsResponse, error) {
	emCode, err := jwt.EmCodeFromContext(ctx)
	if err != nil {
		return attendance.SettingsResponse{}, err
	}

	settings, err := s.load(ctx, emCode)
	if err != nil {
		return attendance.SettingsResponse{}, err
	}

	threshold := engine.ParseThreshold(storedThreshold(settings), s.defaultThreshold)

	resp := attendance.SettingsResponse{
		EmCode:         emCode,
		HasCredentials: settings.HasCredentials(),
		Threshold:      threshold.Normalized,
		ThresholdValue: threshold.Value,
		ThresholdValid: threshold.Valid,
	}

	snapshot, err := s.snapshots.Get(ctx, emCode)
	switch {
	case err == nil:
		fetchedAt := snapshot.FetchedAt.In(s.location).Format(attendance.DateTimeLayout)
		resp.FetchedAt = &fetchedAt
	case errors.Is(err, attendance.ErrSnapshotNotFound):
	default:
		return attendance.SettingsResponse{}, fmt.Errorf("failed to load snapshot: %w", err)
	}

	return resp, nil
}

// UpdateCredentials implements attendance.SettingsService.
func (s *SettingsServiceImpl) UpdateCredentials(ctx context.Context, req attendance.UpdateCredentialsRequest) (attendance.SettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.SettingsResponse{}, err
	}

	emCode, err := jwt.EmCodeFromContext(ctx)
	if err != nil {
		return attendance.SettingsResponse{}, err
	}

	if err := s.settings.UpsertCredentials(ctx, emCode, req.TeamsAuthorization); err != nil {
		return attendance.SettingsResponse{}, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, emCode); err != nil {
			slog.Warn("Failed to invalidate calendar cache", "em_code", emCode, "error", err)
		}
	}

	slog.Info("Teams credentials updated", "em_code", emCode)
	return s.GetSettings(ctx)
}

// UpdateThreshold implements attendance.SettingsService. Invalid input keeps
// the stored value and is reported through Valid.
func (s *SettingsServiceImpl) UpdateThreshold(ctx context.Context, req attendance.UpdateThresholdRequest) (attendance.ThresholdResult, error) {
	emCode, err := jwt.EmCodeFromContext(ctx)
	if err != nil {
		return attendance.ThresholdResult{}, err
	}

	settings, err := s.load(ctx, emCode)
	if err != nil {
		return attendance.ThresholdResult{}, err
	}

	fallback := engine.ParseThreshold(storedThreshold(settings), s.defaultThreshold).Normalized
	result := engine.ParseThreshold(req.Threshold, fallback)

	if err := s.settings.UpsertThreshold(ctx, emCode, result.Normalized); err != nil {
		return attendance.ThresholdResult{}, err
	}

	return result, nil
}
