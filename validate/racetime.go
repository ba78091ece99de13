package validate

import (
	"errors"
	"regexp"
	"strconv"
	"time"
)

// ErrRaceTime is returned for elapsed-time strings in neither Go duration
// nor [H:]MM:SS[.ffffff] form.
var ErrRaceTime = errors.New("invalid time format, use MM:SS.mmm")

var raceTimePattern = regexp.MustCompile(`^(?:(\d{1,2}):)?(\d{1,2}):(\d{1,2})(?:[.,](\d{1,6}))?$`)

// ParseRaceTime parses an elapsed race time. It accepts a standard duration
// string ("1m32.5s") or a clock-style [H:]MM:SS[.ffffff] value, with the
// fractional part right-padded to microseconds.
func ParseRaceTime(s string) (time.Duration, error) {
	trimmed := regexp.MustCompile(`\s+`).ReplaceAllString(s, "")
	if d, err := time.ParseDuration(trimmed); err == nil {
		return d, nil
	}

	m := raceTimePattern.FindStringSubmatch(trimmed)
	if m == nil {
		return 0, ErrRaceTime
	}

	hours := 0
	if m[1] != "" {
		hours, _ = strconv.Atoi(m[1])
	}
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])

	frac := m[4]
	micros := 0
	if frac != "" {
		for len(frac) < 6 {
			frac += "0"
		}
		micros, _ = strconv.Atoi(frac)
	}

	d := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(micros)*time.Microsecond
	return d, nil
}
