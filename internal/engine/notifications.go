package engine

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"dueline/internal/domain"
	"dueline/internal/repo"
	"dueline/internal/tracking"
)

func (e Engine) ListNotifications(ctx context.Context, unreadOnly bool) ([]domain.Notification, error) {
	list, err := e.Repo.ListNotifications(ctx, unreadOnly)
	if err != nil {
		return nil, err
	}
	if !unreadOnly {
		unread := 0
		for _, n := range list {
			if !n.Read {
				unread++
			}
		}
		e.Metrics.SetUnread(unread)
	}
	return list, nil
}

func (e Engine) MarkNotificationRead(ctx context.Context, id string) error {
	return e.mutate(ctx, "read_notification", func(r repo.Repo, _ *sql.Tx) error {
		return r.MarkNotificationRead(ctx, id)
	})
}

// MarkAllNotificationsRead returns how many notifications changed.
func (e Engine) MarkAllNotificationsRead(ctx context.Context) (int64, error) {
	var n int64
	err := e.mutate(ctx, "read_all_notifications", func(r repo.Repo, _ *sql.Tx) error {
		var err error
		n, err = r.MarkAllNotificationsRead(ctx)
		return err
	})
	if err == nil {
		e.Metrics.SetUnread(0)
	}
	return n, err
}

// RefreshDueNotifications emits one notification per instrument and due
// reason flagged by the priority selection. Repeated calls do not duplicate
// notifications already emitted for the same instrument and reason.
func (e Engine) RefreshDueNotifications(ctx context.Context) ([]domain.Notification, error) {
	now := e.now().UTC()
	created := []domain.Notification{}
	err := e.mutate(ctx, "refresh_notifications", func(r repo.Repo, _ *sql.Tx) error {
		snapshot, err := r.ListInstruments(ctx)
		if err != nil {
			return err
		}
		sel := tracking.SelectPriorities(snapshot, now, e.Horizon())
		for _, item := range sel.Items {
			n, ok := dueNotification(item, now)
			if !ok {
				continue
			}
			n.ID = e.newID()
			key := fmt.Sprintf("due:%s:%s", item.Instrument.ID, n.Kind)
			inserted, err := r.InsertNotification(ctx, n, key)
			if err != nil {
				return err
			}
			if inserted {
				created = append(created, n)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(created) > 0 {
		e.log().Info("due notifications emitted", zap.Int("count", len(created)))
	}
	return created, nil
}

func dueNotification(item tracking.PriorityItem, now time.Time) (domain.Notification, bool) {
	in := item.Instrument
	switch item.Reason {
	case tracking.ReasonExpired:
		days := tracking.DaysUntil(now, in.DueDate)
		return domain.Notification{
			Title:        "Instrumento vencido",
			Message:      fmt.Sprintf("O instrumento %q está vencido há %s", in.Title, plural(days, "dia", "dias")),
			Kind:         domain.NotificationError,
			Date:         now,
			InstrumentID: in.ID,
		}, true
	case tracking.ReasonExpiringSoon:
		days := tracking.DaysUntil(in.DueDate, now)
		return domain.Notification{
			Title:        "Instrumento vencendo em breve",
			Message:      fmt.Sprintf("O instrumento %q vence em %s", in.Title, plural(days, "dia", "dias")),
			Kind:         domain.NotificationWarning,
			Date:         now,
			InstrumentID: in.ID,
		}, true
	}
	return domain.Notification{}, false
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}
