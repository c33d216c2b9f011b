package attendance

import (
	"math"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/teams-worktime/internal/domain/attendance"
)

func parsePositive(input string) (float64, string, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, trimmed, false
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) || v <= 0 {
		return 0, trimmed, false
	}
	return v, trimmed, true
}

// ParseThreshold validates a user supplied threshold. On invalid input it
// falls back to fallback, then to the default threshold; Valid is false in
// both fallback cases.
func ParseThreshold(input, fallback string) attendance.ThresholdResult {
	if v, normalized, ok := parsePositive(input); ok {
		return attendance.ThresholdResult{Value: v, Normalized: normalized, Valid: true}
	}

	if v, normalized, ok := parsePositive(fallback); ok {
		return attendance.ThresholdResult{Value: v, Normalized: normalized}
	}

	return attendance.ThresholdResult{
		Value:      attendance.DefaultInsufficientThreshold,
		Normalized: strconv.FormatFloat(attendance.DefaultInsufficientThreshold, 'f', -1, 64),
	}
}

// FormatHours renders hours with two decimals.
func FormatHours(v float64) string {
	return strconv.FormatFloat(round2(v), 'f', 2, 64)
}
