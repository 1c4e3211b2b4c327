package dataprocessing

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/xuri/excelize/v2"

	"incidentcli/pkg/contracts/domain"
)

const clockLayout = "15:04"

// endOfDay is how a closing time of midnight is written in the source sheets.
var endOfDay = map[string]bool{"24:00": true, "24:00:00": true}

// time-only layouts dateparse does not cover
var clockLayouts = []string{"15:04:05", "3:04 PM", "3:04:05 PM", "3:04PM"}

// ParseTime converts a cell value into a time of day truncated to the minute.
// Unparseable or unsupported values yield an invalid NullDuration; it never
// panics or returns an error.
func ParseTime(value any) domain.NullDuration {
	switch v := value.(type) {
	case nil:
		return domain.NullDuration{}
	case string:
		return parseTimeString(v)
	case time.Time:
		if v.IsZero() {
			return domain.NullDuration{}
		}
		return clockOf(v)
	case time.Duration:
		// time-of-day value as produced by readers that keep durations
		if v < 0 {
			return domain.NullDuration{}
		}
		return domain.NullDuration{Duration: v.Truncate(time.Minute), Valid: true}
	case float64:
		return parseSerial(v)
	default:
		return domain.NullDuration{}
	}
}

func parseTimeString(s string) domain.NullDuration {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.NullDuration{}
	}
	if t, err := time.Parse(clockLayout, s); err == nil {
		return clockOf(t)
	}
	if endOfDay[s] {
		return domain.Minutes(24 * 60)
	}
	// cells without a time number format come through as the raw serial;
	// whole numbers such as "930" are not times
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f == math.Trunc(f) {
			return domain.NullDuration{}
		}
		return parseSerial(f)
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, strings.ToUpper(s)); err == nil {
			return clockOf(t)
		}
	}
	t, ok := parseAny(s)
	if !ok {
		return domain.NullDuration{}
	}
	return clockOf(t)
}

// parseAny wraps dateparse.ParseAny, which can panic on some malformed input.
// Ambiguous slash dates are read day first, as the source sheets write them.
func parseAny(s string) (t time.Time, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	t, err := dateparse.ParseAny(s,
		dateparse.PreferMonthFirst(false),
		dateparse.RetryAmbiguousDateWithSwap(true))
	return t, err == nil
}

// parseSerial handles Excel serial date-times: a bare fraction is a time of
// day, an integer part carries the date which is discarded.
func parseSerial(f float64) domain.NullDuration {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return domain.NullDuration{}
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return domain.NullDuration{}
	}
	// round to the nearest second first; serials carry float noise
	return clockOf(t.Round(time.Second))
}

func clockOf(t time.Time) domain.NullDuration {
	return domain.Minutes(t.Hour()*60 + t.Minute())
}
