package tracking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"dueline/internal/domain"
	"dueline/internal/tracking"
)

func TestComputeEmptyCollection(t *testing.T) {
	m := tracking.Compute(nil, t0, tracking.DefaultHorizonDays)
	assert.Equal(t, 0, m.Total)
	assert.Equal(t, 0, m.Completion)
}

func TestCompletionPercent(t *testing.T) {
	assert.Equal(t, 0, tracking.CompletionPercent(0, 0))
	assert.Equal(t, 25, tracking.CompletionPercent(1, 4))
	assert.Equal(t, 33, tracking.CompletionPercent(1, 3))
	assert.Equal(t, 67, tracking.CompletionPercent(2, 3))
	assert.Equal(t, 50, tracking.CompletionPercent(1, 2))
	// 1/8 = 12.5 rounds half up.
	assert.Equal(t, 13, tracking.CompletionPercent(1, 8))
	assert.Equal(t, 100, tracking.CompletionPercent(5, 5))
}

func TestComputeFourWithOneSigned(t *testing.T) {
	ins := []domain.Instrument{
		instrument("1", withStatus(domain.StatusSigned)),
		instrument("2"),
		instrument("3", withStatus(domain.StatusInProgress)),
		instrument("4", withStatus(domain.StatusExpired)),
	}
	m := tracking.Compute(ins, t0, tracking.DefaultHorizonDays)
	assert.Equal(t, 4, m.Total)
	assert.Equal(t, 1, m.Signed)
	assert.Equal(t, 1, m.Pending)
	assert.Equal(t, 1, m.InProgress)
	assert.Equal(t, 25, m.Completion)
	assert.Equal(t, 1, m.ByStatus[domain.StatusExpired])
	// Status "expired" alone does not count: the expired card is date-based.
	assert.Equal(t, 0, m.Expired)
}

func TestComputeDateBasedExpiry(t *testing.T) {
	ins := []domain.Instrument{
		instrument("signed-but-overdue", withStatus(domain.StatusSigned), withDue(t0.Add(-time.Hour))),
		instrument("soon", withDue(t0.Add(3*24*time.Hour))),
		instrument("later", withDue(t0.Add(30*24*time.Hour))),
	}
	m := tracking.Compute(ins, t0, tracking.DefaultHorizonDays)
	assert.Equal(t, 1, m.Expired)
	assert.Equal(t, 1, m.ExpiringSoon)
}
