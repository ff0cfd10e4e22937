package history

import (
	"strings"
	"time"

	"github.com/flanksource/commons/logger"
	datemath "github.com/jszwedko/go-datemath"
)

// isoMillis is the canonical timestamp layout for everything this package
// compares: UTC, millisecond precision, lexicographic order == chronological.
const isoMillis = "2006-01-02T15:04:05.000Z"

// Boundary selects which edge of a civil day a bare date resolves to.
type Boundary int

const (
	StartOfDay Boundary = iota
	EndOfDay
)

// NormalizeDate resolves a date argument to an absolute UTC instant in
// isoMillis form.
//
// Inputs that already carry a time component are returned unchanged. A bare
// calendar date (or datemath expression such as "now-7d") is interpreted as a
// civil date in timezone — the host zone when empty — and resolved to
// 00:00:00.000 or 23:59:59.999 of that day. Resolution never fails the query:
// an unknown timezone or unparseable date degrades to a plain UTC
// interpretation.
func NormalizeDate(date string, boundary Boundary, timezone string) string {
	if strings.Contains(date, "T") {
		return date
	}

	if timezone == "UTC" {
		return utcFallback(date, boundary)
	}

	loc := time.Local
	if timezone != "" {
		var err error
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			logger.Warnf("Unknown timezone %q, falling back to UTC: %v", timezone, err)
			return utcFallback(date, boundary)
		}
	}

	expr, err := datemath.Parse(date)
	if err != nil {
		logger.Warnf("Failed to parse date %q, falling back to UTC: %v", date, err)
		return utcFallback(date, boundary)
	}

	t := expr.Time(
		datemath.WithLocation(loc),
		datemath.WithRoundUp(boundary == EndOfDay),
	)
	return t.UTC().Format(isoMillis)
}

// utcFallback appends the boundary time directly, no offset arithmetic.
func utcFallback(date string, boundary Boundary) string {
	if boundary == EndOfDay {
		return date + "T23:59:59.999Z"
	}
	return date + "T00:00:00.000Z"
}

// normalizeRange applies NormalizeDate to an optional start/end pair.
func normalizeRange(startDate, endDate, timezone string) (string, string) {
	var start, end string
	if startDate != "" {
		start = NormalizeDate(startDate, StartOfDay, timezone)
	}
	if endDate != "" {
		end = NormalizeDate(endDate, EndOfDay, timezone)
	}
	return start, end
}
