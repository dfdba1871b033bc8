// Package events appends movements, the audit trail of every instrument.
package events

import (
	"context"
	"fmt"
	"time"

	"dueline/internal/domain"
	"dueline/internal/metrics"
	"dueline/internal/repo"
)

// Writer appends movements inside the caller's transaction. Rows are never
// updated afterwards.
type Writer struct {
	Now     func() time.Time
	Metrics *metrics.Metrics
}

// Append stores m and returns it with the assigned id. A zero Date is stamped
// with the writer's clock.
func (w Writer) Append(ctx context.Context, q repo.Querier, m domain.Movement) (domain.Movement, error) {
	if w.Now == nil {
		w.Now = time.Now
	}
	if m.InstrumentID == "" {
		return m, fmt.Errorf("movement without instrument")
	}
	if !m.Status.Valid() {
		return m, fmt.Errorf("movement status %q is invalid", m.Status)
	}
	if m.Date.IsZero() {
		m.Date = w.Now()
	}
	m.Date = m.Date.UTC()
	res, err := q.ExecContext(ctx, `INSERT INTO movements(instrument_id,status,description,date,user_id,user_name) VALUES (?,?,?,?,?,?)`,
		m.InstrumentID, m.Status, m.Description, repo.FormatTime(m.Date), m.UserID, m.UserName)
	if err != nil {
		return m, fmt.Errorf("append movement: %w", err)
	}
	if m.ID, err = res.LastInsertId(); err != nil {
		return m, err
	}
	w.Metrics.IncMovement(string(m.Status))
	return m, nil
}

// By stamps the acting user on a movement.
func By(user domain.UserProfile, instrumentID string, status domain.InstrumentStatus, description string) domain.Movement {
	return domain.Movement{
		InstrumentID: instrumentID,
		Status:       status,
		Description:  description,
		UserID:       user.ID,
		UserName:     user.Name,
	}
}
