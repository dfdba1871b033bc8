package tracking

import (
	"math"
	"time"

	"dueline/internal/domain"
)

// Metrics summarizes a collection for the dashboard cards.
type Metrics struct {
	Total        int                             `json:"total"`
	Signed       int                             `json:"signed"`
	Pending      int                             `json:"pending"`
	InProgress   int                             `json:"in_progress"`
	Expired      int                             `json:"expired"`
	ExpiringSoon int                             `json:"expiring_soon"`
	Completion   int                             `json:"completion_percent"`
	ByStatus     map[domain.InstrumentStatus]int `json:"by_status"`
}

// Compute aggregates instruments in a single pass. Expired and ExpiringSoon
// use the due date, not the status field.
func Compute(instruments []domain.Instrument, now time.Time, horizonDays int) Metrics {
	m := Metrics{ByStatus: make(map[domain.InstrumentStatus]int, len(domain.Statuses))}
	for _, in := range instruments {
		m.Total++
		m.ByStatus[in.Status]++
		switch in.Status {
		case domain.StatusSigned:
			m.Signed++
		case domain.StatusPending:
			m.Pending++
		case domain.StatusInProgress:
			m.InProgress++
		}
		if IsExpired(in.DueDate, now) {
			m.Expired++
		}
		if IsExpiringSoon(in.DueDate, now, horizonDays) {
			m.ExpiringSoon++
		}
	}
	m.Completion = CompletionPercent(m.Signed, m.Total)
	return m
}

// CompletionPercent rounds signed/total*100 half up; zero total yields 0.
func CompletionPercent(signed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Floor(float64(signed)*100/float64(total) + 0.5))
}
