package deploy

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrNoTimestamp is returned by ParseTimestamp for empty input
var ErrNoTimestamp = errors.New("no timestamp")

// MalformedTimestampError reports a non-empty timestamp that is not ISO-8601
type MalformedTimestampError struct {
	Value string
}

func (e *MalformedTimestampError) Error() string {
	return fmt.Sprintf("malformed timestamp %q", e.Value)
}

// isoTimestamp matches extended (2024-01-01T12:30:00+00:00) and basic (20240101T123000+0000) forms.
// Groups: 1-3 date, 4-6 clock, 7 fraction, 8 offset. Time of day may stop after the hour or minute.
var isoTimestamp = regexp.MustCompile(
	`^(\d{4})-?(\d{2})-?(\d{2})` +
		`(?:[T ](\d{2})(?::?(\d{2})(?::?(\d{2})(?:[.,](\d+))?)?)?` +
		`(Z|[+-]\d{2}(?::?\d{2}(?::?\d{2})?)?)?)?$`)

// ParseTimestamp parses an ISO-8601 timestamp and normalizes it to UTC.
// A trailing "Z" and "+00:00" are equivalent. Values without an offset are taken as UTC.
// Fractional seconds are kept.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, ErrNoTimestamp
	}
	malformed := &MalformedTimestampError{Value: s}

	m := isoTimestamp.FindStringSubmatchIndex(s)
	if m == nil || !consistentSeparators(s, m) {
		return time.Time{}, malformed
	}
	group := func(i int) string {
		if m[2*i] < 0 {
			return ""
		}
		return s[m[2*i]:m[2*i+1]]
	}

	year, month, day := atoi(group(1)), atoi(group(2)), atoi(group(3))
	hour, minute, second := atoi(group(4)), atoi(group(5)), atoi(group(6))
	loc, ok := parseOffset(group(8))
	if !ok || month < 1 || month > 12 || hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, malformed
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, fractionNanos(group(7)), loc)
	if t.Day() != day {
		// time.Date normalizes out-of-range days such as February 30
		return time.Time{}, malformed
	}
	return t.UTC(), nil
}

// consistentSeparators rejects dates and clocks that mix the basic and extended forms
func consistentSeparators(s string, m []int) bool {
	if dateLen := m[7] - m[2]; dateLen != 8 && dateLen != 10 {
		return false
	}
	if m[8] < 0 {
		return true
	}
	clockEnd := m[9]
	for _, g := range []int{5, 6} {
		if m[2*g+1] > 0 {
			clockEnd = m[2*g+1]
		}
	}
	clock := s[m[8]:clockEnd]
	colons := strings.Count(clock, ":")
	return colons == 0 || colons == (len(clock)-colons)/2-1
}

// parseOffset handles "", "Z", ±HH, ±HHMM, ±HH:MM and ±HH:MM:SS
func parseOffset(z string) (*time.Location, bool) {
	if z == "" || z == "Z" {
		return time.UTC, true
	}
	digits := strings.ReplaceAll(z[1:], ":", "")
	hours := atoi(digits[0:2])
	var minutes, seconds int
	if len(digits) >= 4 {
		minutes = atoi(digits[2:4])
	}
	if len(digits) == 6 {
		seconds = atoi(digits[4:6])
	}
	if hours > 23 || minutes > 59 || seconds > 59 {
		return nil, false
	}
	offset := hours*3600 + minutes*60 + seconds
	if z[0] == '-' {
		offset = -offset
	}
	return time.FixedZone("", offset), true
}

// fractionNanos converts fractional-second digits to nanoseconds, dropping anything past 9 digits
func fractionNanos(frac string) int {
	if len(frac) > 9 {
		frac = frac[:9]
	}
	if frac == "" {
		return 0
	}
	return atoi(frac + strings.Repeat("0", 9-len(frac)))
}

// atoi parses digits already validated by isoTimestamp; empty is zero
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
