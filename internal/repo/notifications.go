package repo

import (
	"context"

	"dueline/internal/domain"
)

// InsertNotification stores n. A non-empty dedupKey makes the insert a no-op
// when a notification with the same key exists; inserted reports which.
func (r Repo) InsertNotification(ctx context.Context, n domain.Notification, dedupKey string) (inserted bool, err error) {
	res, err := r.q().ExecContext(ctx, `INSERT INTO notifications(id,title,message,kind,date,read,instrument_id,dedup_key) VALUES (?,?,?,?,?,?,?,?)
ON CONFLICT(dedup_key) DO NOTHING`,
		n.ID, n.Title, n.Message, n.Kind, formatTime(n.Date), n.Read, nullable(n.InstrumentID), nullable(dedupKey))
	if err != nil {
		return false, err
	}
	count, _ := res.RowsAffected()
	return count > 0, nil
}

// ListNotifications returns notifications newest first, optionally unread only.
func (r Repo) ListNotifications(ctx context.Context, unreadOnly bool) ([]domain.Notification, error) {
	query := `SELECT id,title,message,kind,date,read,COALESCE(instrument_id,'') FROM notifications`
	if unreadOnly {
		query += ` WHERE read=0`
	}
	rows, err := r.q().QueryContext(ctx, query+` ORDER BY date DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []domain.Notification{}
	for rows.Next() {
		var (
			n    domain.Notification
			date string
		)
		if err := rows.Scan(&n.ID, &n.Title, &n.Message, &n.Kind, &date, &n.Read, &n.InstrumentID); err != nil {
			return nil, err
		}
		if n.Date, err = parseTime(date); err != nil {
			return nil, err
		}
		res = append(res, n)
	}
	return res, rows.Err()
}

func (r Repo) MarkNotificationRead(ctx context.Context, id string) error {
	res, err := r.q().ExecContext(ctx, `UPDATE notifications SET read=1 WHERE id=?`, id)
	return affected(res, err)
}

// MarkAllNotificationsRead returns the number of notifications changed.
func (r Repo) MarkAllNotificationsRead(ctx context.Context) (int64, error) {
	res, err := r.q().ExecContext(ctx, `UPDATE notifications SET read=1 WHERE read=0`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r Repo) CountUnreadNotifications(ctx context.Context) (int, error) {
	var n int
	err := r.q().QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE read=0`).Scan(&n)
	return n, err
}
