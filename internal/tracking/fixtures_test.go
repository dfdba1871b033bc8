package tracking_test

import (
	"time"

	"dueline/internal/domain"
)

var t0 = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type opt func(*domain.Instrument)

func instrument(id string, opts ...opt) domain.Instrument {
	in := domain.Instrument{
		ID:       id,
		Title:    "Instrumento " + id,
		Status:   domain.StatusPending,
		Priority: domain.PriorityMedium,
		SentDate: t0.Add(-30 * 24 * time.Hour),
		DueDate:  t0.Add(90 * 24 * time.Hour),
		TypeID:   "1",
	}
	for _, o := range opts {
		o(&in)
	}
	return in
}

func withStatus(s domain.InstrumentStatus) opt {
	return func(in *domain.Instrument) { in.Status = s }
}

func withPriority(p domain.Priority) opt {
	return func(in *domain.Instrument) { in.Priority = p }
}

func withDue(d time.Time) opt {
	return func(in *domain.Instrument) { in.DueDate = d }
}

func withTitle(title string) opt {
	return func(in *domain.Instrument) { in.Title = title }
}

func withDescription(desc string) opt {
	return func(in *domain.Instrument) { in.Description = desc }
}

func withTags(tags ...string) opt {
	return func(in *domain.Instrument) { in.Tags = tags }
}

func withEntities(ents ...domain.Entity) opt {
	return func(in *domain.Instrument) { in.Entities = ents }
}

func withResponsibles(rs ...domain.RosterResponsible) opt {
	return func(in *domain.Instrument) {
		for _, r := range rs {
			in.Responsibles = append(in.Responsibles, r.Assign())
		}
	}
}

func ids(ins []domain.Instrument) []string {
	out := make([]string, 0, len(ins))
	for _, in := range ins {
		out = append(out, in.ID)
	}
	return out
}
