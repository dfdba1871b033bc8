package tracking

import (
	"time"

	"dueline/internal/domain"
)

type Reason string

const (
	ReasonExpired      Reason = "Vencido"
	ReasonExpiringSoon Reason = "Vence em breve"
	ReasonHighPriority Reason = "Alta prioridade"
)

type PriorityItem struct {
	Instrument domain.Instrument `json:"instrument"`
	Reason     Reason            `json:"reason"`
}

// Selection is the result of SelectPriorities. The zero value means nothing
// was computed; a computed selection may still be empty.
type Selection struct {
	Items    []PriorityItem `json:"items"`
	Computed bool           `json:"computed"`
}

func (s Selection) Empty() bool {
	return s.Computed && len(s.Items) == 0
}

// SelectPriorities lists instruments needing attention: expired first, then
// expiring soon, then high-priority pending ones. An instrument keeps only
// the reason of the first category it appears in.
func SelectPriorities(instruments []domain.Instrument, now time.Time, horizonDays int) Selection {
	categories := []struct {
		reason Reason
		match  func(domain.Instrument) bool
	}{
		{ReasonExpired, func(in domain.Instrument) bool { return IsExpired(in.DueDate, now) }},
		{ReasonExpiringSoon, func(in domain.Instrument) bool { return IsExpiringSoon(in.DueDate, now, horizonDays) }},
		{ReasonHighPriority, func(in domain.Instrument) bool {
			return in.Priority == domain.PriorityHigh && in.Status == domain.StatusPending
		}},
	}
	sel := Selection{Items: []PriorityItem{}, Computed: true}
	seen := make(map[string]bool)
	for _, c := range categories {
		for _, in := range instruments {
			if seen[in.ID] || !c.match(in) {
				continue
			}
			seen[in.ID] = true
			sel.Items = append(sel.Items, PriorityItem{Instrument: in, Reason: c.reason})
		}
	}
	return sel
}
