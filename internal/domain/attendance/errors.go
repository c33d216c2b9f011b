package attendance

import "errors"

// Attendance domain errors
var (
	ErrSnapshotNotFound   = errors.New("no attendance data has been synced yet")
	ErrSettingsNotFound   = errors.New("attendance settings not found")
	ErrCredentialsMissing = errors.New("teams authorization is not configured")
	ErrInvalidMonthRange  = errors.New("end month must not be earlier than start month")

	// Upstream errors
	ErrUpstreamRejected    = errors.New("teams attendance request was rejected")
	ErrUpstreamUnavailable = errors.New("teams attendance service is unavailable")
)
