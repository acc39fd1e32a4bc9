package adapter

import (
	"regexp"
	"strconv"
	"strings"
)

var isoDurationPattern = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)(?:[.,]\d+)?S)?)?$`)

// ParseDurationSeconds parses colon-delimited (H:MM:SS, MM:SS, SS) and ISO-8601
// (PT#H#M#S) durations into whole seconds. Fractions are truncated. It reports
// false for empty, malformed or zero durations.
func ParseDurationSeconds(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	var seconds int64
	var ok bool
	if strings.HasPrefix(strings.ToUpper(s), "P") {
		seconds, ok = parseISODuration(strings.ToUpper(s))
	} else {
		seconds, ok = parseClockDuration(s)
	}
	if !ok || seconds <= 0 {
		return 0, false
	}
	return seconds, true
}

func parseISODuration(s string) (int64, bool) {
	m := isoDurationPattern.FindStringSubmatch(s)
	if m == nil || s == "P" || s == "PT" {
		return 0, false
	}

	var total int64
	for i, unit := range []int64{86400, 3600, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.ParseInt(m[i+1], 10, 64)
		if err != nil {
			return 0, false
		}
		total += n * unit
	}
	return total, true
}

func parseClockDuration(s string) (int64, bool) {
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, false
	}

	// Fractional seconds only appear on the last component
	last := parts[len(parts)-1]
	if dot := strings.IndexAny(last, ".,"); dot >= 0 {
		last = last[:dot]
	}
	parts[len(parts)-1] = last

	var total int64
	for _, part := range parts {
		if part == "" {
			return 0, false
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil || n < 0 {
			return 0, false
		}
		total = total*60 + n
	}
	return total, true
}
