package tracking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dueline/internal/domain"
	"dueline/internal/tracking"
)

func reasons(sel tracking.Selection) map[string]tracking.Reason {
	out := make(map[string]tracking.Reason, len(sel.Items))
	for _, it := range sel.Items {
		out[it.Instrument.ID] = it.Reason
	}
	return out
}

func TestSelectPrioritiesOrdersByCategory(t *testing.T) {
	ins := []domain.Instrument{
		instrument("high", withPriority(domain.PriorityHigh)),
		instrument("soon", withDue(t0.Add(2*24*time.Hour))),
		instrument("calm", withPriority(domain.PriorityLow)),
		instrument("late", withDue(t0.Add(-48*time.Hour))),
		instrument("soon2", withDue(t0.Add(5*24*time.Hour))),
	}
	sel := tracking.SelectPriorities(ins, t0, tracking.DefaultHorizonDays)
	require.True(t, sel.Computed)
	var got []string
	for _, it := range sel.Items {
		got = append(got, it.Instrument.ID)
	}
	assert.Equal(t, []string{"late", "soon", "soon2", "high"}, got)
}

func TestSelectPrioritiesKeepsEarliestReason(t *testing.T) {
	both := instrument("both",
		withPriority(domain.PriorityHigh),
		withStatus(domain.StatusPending),
		withDue(t0.Add(-time.Minute)),
	)
	sel := tracking.SelectPriorities([]domain.Instrument{both}, t0, tracking.DefaultHorizonDays)
	require.Len(t, sel.Items, 1)
	assert.Equal(t, tracking.ReasonExpired, sel.Items[0].Reason)
}

func TestSelectPrioritiesHighPriorityNeedsPending(t *testing.T) {
	ins := []domain.Instrument{
		instrument("a", withPriority(domain.PriorityHigh), withStatus(domain.StatusInProgress)),
		instrument("b", withPriority(domain.PriorityHigh), withStatus(domain.StatusSigned)),
	}
	sel := tracking.SelectPriorities(ins, t0, tracking.DefaultHorizonDays)
	assert.True(t, sel.Empty())
}

func TestSelectionDistinguishesEmptyFromNotComputed(t *testing.T) {
	var notComputed tracking.Selection
	assert.False(t, notComputed.Empty())

	sel := tracking.SelectPriorities(nil, t0, tracking.DefaultHorizonDays)
	assert.True(t, sel.Empty())
	assert.NotNil(t, sel.Items)
}

func TestDashboardScenario(t *testing.T) {
	a := instrument("A", withStatus(domain.StatusSigned), withDue(t0.Add(-5*24*time.Hour)))
	b := instrument("B", withStatus(domain.StatusPending), withDue(t0.Add(3*24*time.Hour)))
	c := instrument("C", withStatus(domain.StatusPending), withDue(t0.Add(30*24*time.Hour)), withPriority(domain.PriorityHigh))
	all := []domain.Instrument{a, b, c}

	m := tracking.Compute(all, t0, tracking.DefaultHorizonDays)
	assert.Equal(t, 3, m.Total)
	assert.Equal(t, 1, m.Signed)
	assert.Equal(t, 2, m.Pending)
	assert.Equal(t, 1, m.Expired)
	assert.Equal(t, 1, m.ExpiringSoon)
	assert.Equal(t, 33, m.Completion)

	sel := tracking.SelectPriorities(all, t0, tracking.DefaultHorizonDays)
	require.Len(t, sel.Items, 3)
	assert.Equal(t, "A", sel.Items[0].Instrument.ID)
	assert.Equal(t, tracking.ReasonExpired, sel.Items[0].Reason)
	assert.Equal(t, "B", sel.Items[1].Instrument.ID)
	assert.Equal(t, tracking.ReasonExpiringSoon, sel.Items[1].Reason)
	assert.Equal(t, "C", sel.Items[2].Instrument.ID)
	assert.Equal(t, tracking.ReasonHighPriority, sel.Items[2].Reason)
	assert.Len(t, reasons(sel), 3)
}
