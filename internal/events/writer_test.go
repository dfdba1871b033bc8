package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dueline/internal/db"
	"dueline/internal/domain"
	"dueline/internal/events"
	"dueline/internal/metrics"
	"dueline/internal/migrate"
	"dueline/internal/repo"
)

func TestAppend(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(db.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	_, err = migrate.Migrate(ctx, conn)
	require.NoError(t, err)

	r := repo.Repo{DB: conn}
	require.NoError(t, r.InsertType(ctx, domain.InstrumentType{ID: "t1", Name: "Contrato"}))
	now := time.Date(2025, 1, 24, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.InsertInstrument(ctx, domain.Instrument{
		ID: "i1", Title: "Contrato", Status: domain.StatusPending, SentDate: now,
		DueDate: now.Add(48 * time.Hour), Priority: domain.PriorityMedium, TypeID: "t1",
	}))

	m := metrics.New()
	w := events.Writer{Now: func() time.Time { return now }, Metrics: m}
	user := domain.UserProfile{ID: "1", Name: "João Silva"}

	first, err := w.Append(ctx, conn, events.By(user, "i1", domain.StatusPending, "Instrumento criado"))
	require.NoError(t, err)
	assert.Equal(t, now, first.Date)
	assert.Equal(t, "João Silva", first.UserName)

	second, err := w.Append(ctx, conn, events.By(user, "i1", domain.StatusInProgress, "Em análise"))
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MovementsAppended.WithLabelValues("in_progress")))

	history, err := r.ListMovements(ctx, "i1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "Em análise", history[1].Description)

	_, err = conn.ExecContext(ctx, `UPDATE movements SET description='x' WHERE id=?`, first.ID)
	assert.ErrorContains(t, err, "append-only")

	_, err = w.Append(ctx, conn, domain.Movement{Status: domain.StatusPending})
	assert.Error(t, err)
	_, err = w.Append(ctx, conn, events.By(user, "i1", "archived", ""))
	assert.Error(t, err)
}
