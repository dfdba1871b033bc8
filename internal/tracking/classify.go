// Package tracking derives what the dashboard shows from a snapshot of
// instruments: date urgency, filtered views, summary metrics and the
// "needs attention today" list. Every function here is pure; "now" is always
// passed in.
package tracking

import (
	"math"
	"time"
)

// DefaultHorizonDays is the forward window for "expiring soon".
const DefaultHorizonDays = 7

const day = 24 * time.Hour

// Clock supplies the evaluation instant.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

type Urgency string

const (
	UrgencyExpired      Urgency = "expired"
	UrgencyExpiringSoon Urgency = "expiring_soon"
	UrgencyNormal       Urgency = "normal"
)

// IsExpired reports whether due is strictly before now.
func IsExpired(due, now time.Time) bool {
	return due.Before(now)
}

// DaysUntil is the number of days from now to due, rounded up.
func DaysUntil(due, now time.Time) int {
	return int(math.Ceil(float64(due.Sub(now)) / float64(day)))
}

// IsExpiringSoon reports whether due falls strictly in the future and within
// horizonDays, counting partial days as whole ones.
func IsExpiringSoon(due, now time.Time, horizonDays int) bool {
	d := DaysUntil(due, now)
	return d > 0 && d <= horizonDays
}

func Classify(due, now time.Time, horizonDays int) Urgency {
	switch {
	case IsExpired(due, now):
		return UrgencyExpired
	case IsExpiringSoon(due, now, horizonDays):
		return UrgencyExpiringSoon
	default:
		return UrgencyNormal
	}
}
