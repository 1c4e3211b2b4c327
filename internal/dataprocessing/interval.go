package dataprocessing

import (
	"time"

	"incidentcli/pkg/contracts/domain"
)

// ComputeInterval clips the incident window to the business window.
//
// Impact is the overlap of the two windows, never negative. Availability is
// the business duration minus impact. The business duration close - open is
// not clamped: a close before open yields a negative availability, which
// FormatDuration renders as 00:00. Missing values contribute zero.
//
// An incident ending before it starts marks the interval irregular.
func ComputeInterval(opens, closes, start, end domain.NullDuration) domain.Interval {
	if start.Valid && end.Valid && end.Duration < start.Duration {
		return domain.Interval{Irregular: true}
	}

	var business time.Duration
	if opens.Valid && closes.Valid {
		business = closes.Duration - opens.Duration
	}

	var impact time.Duration
	if opens.Valid && closes.Valid && start.Valid && end.Valid {
		effStart := max(start.Duration, opens.Duration)
		effEnd := min(end.Duration, closes.Duration)
		if d := effEnd - effStart; d > 0 {
			impact = d
		}
	}

	return domain.Interval{
		Impact:       impact,
		Availability: business - impact,
	}
}
