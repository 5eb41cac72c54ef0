package command

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Duration grammar errors.
var (
	ErrDurationEmpty    = errors.New("duration: empty")
	ErrDurationNumber   = errors.New("duration: expected number")
	ErrDurationUnit     = errors.New("duration: unknown unit")
	ErrDurationOverflow = errors.New("duration: value out of range")
)

const (
	day   = 24 * time.Hour
	week  = 7 * day
	month = 2_630_016 * time.Second  // 30.44 days
	year  = 31_557_600 * time.Second // 365.25 days
)

var durationUnits = map[string]time.Duration{
	"nanos": time.Nanosecond, "nsec": time.Nanosecond, "ns": time.Nanosecond,
	"usec": time.Microsecond, "us": time.Microsecond, "µs": time.Microsecond,
	"millis": time.Millisecond, "msec": time.Millisecond, "ms": time.Millisecond,
	"seconds": time.Second, "second": time.Second, "secs": time.Second, "sec": time.Second, "s": time.Second,
	"minutes": time.Minute, "minute": time.Minute, "mins": time.Minute, "min": time.Minute, "m": time.Minute,
	"hours": time.Hour, "hour": time.Hour, "hrs": time.Hour, "hr": time.Hour, "h": time.Hour,
	"days": day, "day": day, "d": day,
	"weeks": week, "week": week, "w": week,
	"months": month, "month": month, "M": month,
	"years": year, "year": year, "y": year,
}

// ParseDuration parses a human-readable duration such as "3s", "1h 27m 13s"
// or "2weeks 1day". Components are a decimal number followed by a unit and
// are summed. Whitespace between components is optional.
func ParseDuration(s string) (time.Duration, error) {
	var (
		total time.Duration
		parts int
		i     int
	)

	for {
		i = skipSpace(s, i)
		if i >= len(s) {
			break
		}

		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if start == i {
			return 0, fmt.Errorf("%w at %q", ErrDurationNumber, s[start:])
		}
		n, err := parseUint(s[start:i])
		if err != nil {
			return 0, err
		}

		i = skipSpace(s, i)
		ustart := i
		for i < len(s) && isUnitByte(s[i]) {
			i++
		}
		name := s[ustart:i]
		unit, ok := durationUnits[name]
		if !ok {
			return 0, fmt.Errorf("%w %q", ErrDurationUnit, name)
		}

		if n > uint64(math.MaxInt64/int64(unit)) {
			return 0, ErrDurationOverflow
		}
		d := time.Duration(n) * unit
		if total > math.MaxInt64-d {
			return 0, ErrDurationOverflow
		}
		total += d
		parts++
	}

	if parts == 0 {
		return 0, ErrDurationEmpty
	}
	return total, nil
}

func parseUint(digits string) (uint64, error) {
	var n uint64
	for i := 0; i < len(digits); i++ {
		if n > (math.MaxUint64-9)/10 {
			return 0, ErrDurationOverflow
		}
		n = n*10 + uint64(digits[i]-'0')
	}
	return n, nil
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

// isUnitByte accepts ASCII letters and the two bytes of the UTF-8 micro sign.
func isUnitByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == 0xc2 || b == 0xb5
}
