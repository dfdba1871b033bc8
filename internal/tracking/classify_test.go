package tracking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"dueline/internal/tracking"
)

func TestIsExpiredBoundary(t *testing.T) {
	assert.True(t, tracking.IsExpired(t0.Add(-time.Second), t0))
	assert.False(t, tracking.IsExpired(t0, t0), "due equal to now is not expired")
	assert.False(t, tracking.IsExpired(t0.Add(time.Second), t0))
}

func TestIsExpiringSoonBoundary(t *testing.T) {
	cases := []struct {
		name string
		due  time.Time
		want bool
	}{
		{"past", t0.Add(-time.Hour), false},
		{"exactly now", t0, false},
		{"one second ahead", t0.Add(time.Second), true},
		{"six days 23 hours rounds up to seven", t0.Add(6*24*time.Hour + 23*time.Hour), true},
		{"exactly seven days", t0.Add(7 * 24 * time.Hour), true},
		{"seven days and a second", t0.Add(7*24*time.Hour + time.Second), false},
		{"thirty days", t0.Add(30 * 24 * time.Hour), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tracking.IsExpiringSoon(tc.due, t0, tracking.DefaultHorizonDays))
		})
	}
}

func TestIsExpiringSoonCustomHorizon(t *testing.T) {
	assert.False(t, tracking.IsExpiringSoon(t0.Add(3*24*time.Hour), t0, 2))
	assert.True(t, tracking.IsExpiringSoon(t0.Add(3*24*time.Hour), t0, 3))
	assert.False(t, tracking.IsExpiringSoon(t0.Add(time.Hour), t0, 0))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, tracking.UrgencyExpired, tracking.Classify(t0.Add(-time.Second), t0, 7))
	assert.Equal(t, tracking.UrgencyExpiringSoon, tracking.Classify(t0.Add(2*24*time.Hour), t0, 7))
	assert.Equal(t, tracking.UrgencyNormal, tracking.Classify(t0, t0, 7))
	assert.Equal(t, tracking.UrgencyNormal, tracking.Classify(t0.Add(60*24*time.Hour), t0, 7))
}

func TestDaysUntil(t *testing.T) {
	assert.Equal(t, 1, tracking.DaysUntil(t0.Add(time.Minute), t0))
	assert.Equal(t, 0, tracking.DaysUntil(t0, t0))
	assert.Equal(t, 0, tracking.DaysUntil(t0.Add(-time.Hour), t0))
	assert.Equal(t, -1, tracking.DaysUntil(t0.Add(-25*time.Hour), t0))
}

func TestFixedClock(t *testing.T) {
	var c tracking.Clock = tracking.FixedClock(t0)
	assert.True(t, c.Now().Equal(t0))
}
