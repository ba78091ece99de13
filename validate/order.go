package validate

import (
	"fmt"
	"time"
)

// Neighbor is the already-recorded result closest to a candidate position:
// the nearest smaller position (better placed) or nearest larger one
// (worse placed) within the same competition.
type Neighbor struct {
	Position int
	Time     time.Duration
}

// CheckRunningOrder enforces that finishing order is monotonic in elapsed
// time: the candidate may not be faster than the better-placed neighbor nor
// slower than the worse-placed one. Comparisons are strict, so equal times
// at either boundary pass.
func CheckRunningOrder(position int, elapsed time.Duration, better, worse *Neighbor) error {
	if better != nil && elapsed < better.Time {
		return fmt.Errorf("time for position %d cannot be less than the time for position %d", position, better.Position)
	}
	if worse != nil && elapsed > worse.Time {
		return fmt.Errorf("time for position %d cannot be greater than the time for position %d", position, worse.Position)
	}
	return nil
}
