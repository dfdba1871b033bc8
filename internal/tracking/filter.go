package tracking

import (
	"slices"
	"strings"
	"time"

	"dueline/internal/domain"
)

// Filter narrows an instrument collection. Criteria combine with AND; values
// inside one criterion combine with OR. Empty criteria impose nothing.
type Filter struct {
	Status      []domain.InstrumentStatus `json:"status,omitempty"`
	Entity      []string                  `json:"entity,omitempty"`
	Responsible []string                  `json:"responsible,omitempty"`
	Search      string                    `json:"search,omitempty"`
	// DueFrom and DueTo bound the due date inclusively when set.
	DueFrom time.Time `json:"due_from,omitempty"`
	DueTo   time.Time `json:"due_to,omitempty"`
}

func (f Filter) IsZero() bool {
	return len(f.Status) == 0 && len(f.Entity) == 0 && len(f.Responsible) == 0 &&
		strings.TrimSpace(f.Search) == "" && f.DueFrom.IsZero() && f.DueTo.IsZero()
}

// Apply returns the instruments matching f in their original order.
func (f Filter) Apply(instruments []domain.Instrument) []domain.Instrument {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]domain.Instrument, 0, len(instruments))
	for _, in := range instruments {
		if f.match(in, term) {
			out = append(out, in)
		}
	}
	return out
}

func (f Filter) Match(in domain.Instrument) bool {
	return f.match(in, strings.ToLower(strings.TrimSpace(f.Search)))
}

func (f Filter) match(in domain.Instrument, term string) bool {
	if len(f.Status) > 0 && !slices.Contains(f.Status, in.Status) {
		return false
	}
	if len(f.Entity) > 0 && !slices.ContainsFunc(in.Entities, func(e domain.Entity) bool {
		return slices.Contains(f.Entity, e.ID)
	}) {
		return false
	}
	if len(f.Responsible) > 0 && !slices.ContainsFunc(in.Responsibles, func(r domain.InstrumentResponsible) bool {
		return slices.Contains(f.Responsible, r.ID)
	}) {
		return false
	}
	if !f.DueFrom.IsZero() && in.DueDate.Before(f.DueFrom) {
		return false
	}
	if !f.DueTo.IsZero() && in.DueDate.After(f.DueTo) {
		return false
	}
	if term != "" && !strings.Contains(strings.ToLower(SearchText(in)), term) {
		return false
	}
	return true
}

// SearchText is the text free-text search runs against: title, description,
// entity names, responsible names and tags separated by single spaces.
func SearchText(in domain.Instrument) string {
	parts := make([]string, 0, 2+len(in.Entities)+len(in.Responsibles)+len(in.Tags))
	parts = append(parts, in.Title, in.Description)
	for _, e := range in.Entities {
		parts = append(parts, e.Name)
	}
	for _, r := range in.Responsibles {
		parts = append(parts, r.Name)
	}
	parts = append(parts, in.Tags...)
	return strings.Join(parts, " ")
}
