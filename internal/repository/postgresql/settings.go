package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/teams-worktime/internal/domain/attendance"
	"github.com/cmlabs-hris/teams-worktime/internal/pkg/database"
)

type settingsRepository struct {
	db *database.DB
}

// Get implements attendance.SettingsRepository.
func (s *settingsRepository) Get(ctx context.Context, emCode string) (attendance.Settings, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT em_code, teams_authorization, threshold, updated_at
		FROM attendance_settings
		WHERE em_code = $1
	`

	var settings attendance.Settings
	err := q.QueryRow(ctx, query, emCode).Scan(
		&settings.EmCode, &settings.TeamsAuthorization, &settings.Threshold, &settings.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Settings{}, attendance.ErrSettingsNotFound
		}
		return attendance.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}

	return settings, nil
}

// UpsertCredentials implements attendance.SettingsRepository.
func (s *settingsRepository) UpsertCredentials(ctx context.Context, emCode string, authorization string) error {
	q := GetQuerier(ctx, s.db)

	query := `
		INSERT INTO attendance_settings (em_code, teams_authorization, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (em_code) DO UPDATE
		SET teams_authorization = EXCLUDED.teams_authorization,
		    updated_at = NOW()
	`

	if _, err := q.Exec(ctx, query, emCode, authorization); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

// UpsertThreshold implements attendance.SettingsRepository.
func (s *settingsRepository) UpsertThreshold(ctx context.Context, emCode string, threshold string) error {
	q := GetQuerier(ctx, s.db)

	query := `
		INSERT INTO attendance_settings (em_code, threshold, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (em_code) DO UPDATE
		SET threshold = EXCLUDED.threshold,
		    updated_at = NOW()
	`

	if _, err := q.Exec(ctx, query, emCode, threshold); err != nil {
		return fmt.Errorf("failed to save threshold: %w", err)
	}
	return nil
}

// ListWithCredentials implements attendance.SettingsRepository.
func (s *settingsRepository) ListWithCredentials(ctx context.Context) ([]attendance.Settings, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT em_code, teams_authorization, threshold, updated_at
		FROM attendance_settings
		WHERE teams_authorization IS NOT NULL AND teams_authorization <> ''
		ORDER BY em_code
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	var result []attendance.Settings
	for rows.Next() {
		var settings attendance.Settings
		if err := rows.Scan(&settings.EmCode, &settings.TeamsAuthorization, &settings.Threshold, &settings.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan settings: %w", err)
		}
		result = append(result, settings)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settings: %w", err)
	}

	return result, nil
}

func NewSettingsRepository(db *database.DB) attendance.SettingsRepository {
	return &settingsRepository{db: db}
}
