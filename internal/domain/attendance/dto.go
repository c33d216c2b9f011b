package attendance

import (
	"github.com/cmlabs-hris/teams-worktime/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

const MaxSyncMonths = 24

type SyncRequest struct {
	Months int `json:"months"`
}

func (r *SyncRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Months < 0 || r.Months > MaxSyncMonths {
		errs = append(errs, validator.ValidationError{
			Field:   "months",
			Message: "months must be between 1 and 24",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SyncResponse struct {
	EmCode      string   `json:"em_code"`
	Months      []string `json:"months"`
	RecordCount int      `json:"record_count"`
	FetchedAt   string   `json:"fetched_at"`
}

// RecordFilter selects either a single month or an inclusive month range.
type RecordFilter struct {
	Month      *string `json:"month,omitempty"`       // YYYY-MM
	StartMonth *string `json:"start_month,omitempty"` // YYYY-MM
	EndMonth   *string `json:"end_month,omitempty"`   // YYYY-MM
}

func (f *RecordFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Month != nil && !validator.IsValidMonth(*f.Month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be in YYYY-MM format",
		})
	}

	if f.StartMonth != nil && !validator.IsValidMonth(*f.StartMonth) {
		errs = append(errs, validator.ValidationError{
			Field:   "start_month",
			Message: "start_month must be in YYYY-MM format",
		})
	}

	if f.EndMonth != nil && !validator.IsValidMonth(*f.EndMonth) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_month",
			Message: "end_month must be in YYYY-MM format",
		})
	}

	if len(errs) == 0 && f.StartMonth != nil && f.EndMonth != nil && *f.EndMonth < *f.StartMonth {
		errs = append(errs, validator.ValidationError{
			Field:   "end_month",
			Message: ErrInvalidMonthRange.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// RecordResponse decorates a record with display flags.
type RecordResponse struct {
	AttendanceRecord
	Insufficient  bool   `json:"insufficient"`
	WorkHoursText string `json:"work_hours_text"`
}

type ListRecordsResponse struct {
	EmCode    string           `json:"em_code"`
	Months    []string         `json:"months"`
	Threshold float64          `json:"threshold"`
	FetchedAt string           `json:"fetched_at"`
	Records   []RecordResponse `json:"records"`
}

type SummaryResponse struct {
	EmCode       string   `json:"em_code"`
	Months       []string `json:"months"`
	ValidDays    float64  `json:"valid_days"`
	ValidHours   float64  `json:"valid_hours"`
	AvgHours     *float64 `json:"avg_hours"`
	AvgHoursText string   `json:"avg_hours_text"`
	FetchedAt    string   `json:"fetched_at"`
}

type ChartPointResponse struct {
	ChartPoint
	ShortLabel     string `json:"short_label,omitempty"`
	MeetsThreshold bool   `json:"meets_threshold"`
}

type ChartResponse struct {
	Mode      string               `json:"mode"` // year, month
	Months    []string             `json:"months"`
	Threshold float64              `json:"threshold"`
	Points    []ChartPointResponse `json:"points"`
}

// ========================================
// SETTINGS DTOs
// ========================================

type UpdateCredentialsRequest struct {
	TeamsAuthorization string `json:"teams_authorization"`
}

func (r *UpdateCredentialsRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.TeamsAuthorization) {
		errs = append(errs, validator.ValidationError{
			Field:   "teams_authorization",
			Message: "teams_authorization is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateThresholdRequest struct {
	Threshold string `json:"threshold"`
}

type SettingsResponse struct {
	EmCode         string  `json:"em_code"`
	HasCredentials bool    `json:"has_credentials"`
	Threshold      string  `json:"threshold"`
	ThresholdValue float64 `json:"threshold_value"`
	ThresholdValid bool    `json:"threshold_valid"`
	FetchedAt      *string `json:"fetched_at,omitempty"`
}
