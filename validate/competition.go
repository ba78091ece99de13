package validate

import (
	"errors"
	"time"
)

// Scheduling windows. Competitions are historical records: never in the
// future and at most ten years back. Results tolerate up to a year of
// forward drift for pre-entered cards.
const (
	MaxCompetitionAge = 3650 * 24 * time.Hour
	MaxResultLead     = 365 * 24 * time.Hour
)

var (
	ErrCompetitionInFuture = errors.New("competition cannot be scheduled in the future; choose a date and time no later than now")
	ErrCompetitionTooOld   = errors.New("competition cannot be scheduled more than 10 years ago")

	ErrResultTooFarAhead = errors.New("results cannot be added for competitions scheduled more than a year ahead")
	ErrResultTooOld      = errors.New("results cannot be added for competitions held more than 10 years ago")
)

// CheckCompetitionSchedule rejects a competition strictly after now, or more
// than ten years before it. Both boundaries themselves are acceptable.
func CheckCompetitionSchedule(at, now time.Time) error {
	if at.After(now) {
		return ErrCompetitionInFuture
	}
	if at.Before(now.Add(-MaxCompetitionAge)) {
		return ErrCompetitionTooOld
	}
	return nil
}

// CheckResultWindow rejects recording a result for a competition more than a
// year ahead or more than ten years back.
func CheckResultWindow(at, now time.Time) error {
	if at.After(now.Add(MaxResultLead)) {
		return ErrResultTooFarAhead
	}
	if at.Before(now.Add(-MaxCompetitionAge)) {
		return ErrResultTooOld
	}
	return nil
}
