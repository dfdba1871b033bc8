package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dueline/internal/domain"
)

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Repo struct {
	DB *sql.DB
	tx *sql.Tx
}

var ErrNotFound = errors.New("not found")

// WithTx returns a Repo whose statements run inside tx.
func (r Repo) WithTx(tx *sql.Tx) Repo {
	return Repo{DB: r.DB, tx: tx}
}

func (r Repo) q() Querier {
	if r.tx != nil {
		return r.tx
	}
	return r.DB
}

const instrumentColumns = `id,title,COALESCE(description,''),status,priority,type_id,sent_date,sign_date,due_date,value,entities_json,responsibles_json,tags_json,attachments_json`

type scanner interface {
	Scan(dest ...any) error
}

func scanInstrument(s scanner) (domain.Instrument, error) {
	var (
		in                             domain.Instrument
		sent, due                      string
		signed                         sql.NullString
		value                          sql.NullFloat64
		entities, resps, tags, attachs string
	)
	err := s.Scan(&in.ID, &in.Title, &in.Description, &in.Status, &in.Priority, &in.TypeID,
		&sent, &signed, &due, &value, &entities, &resps, &tags, &attachs)
	if errors.Is(err, sql.ErrNoRows) {
		return in, ErrNotFound
	}
	if err != nil {
		return in, err
	}
	if in.SentDate, err = parseTime(sent); err != nil {
		return in, err
	}
	if in.DueDate, err = parseTime(due); err != nil {
		return in, err
	}
	if in.SignDate, err = parseNullTime(signed); err != nil {
		return in, err
	}
	if value.Valid {
		v := value.Float64
		in.Value = &v
	}
	for _, col := range []struct {
		raw string
		dst any
	}{
		{entities, &in.Entities},
		{resps, &in.Responsibles},
		{tags, &in.Tags},
		{attachs, &in.Attachments},
	} {
		if err := json.Unmarshal([]byte(col.raw), col.dst); err != nil {
			return in, fmt.Errorf("decode instrument %s: %w", in.ID, err)
		}
	}
	if in.Entities == nil {
		in.Entities = []domain.Entity{}
	}
	if in.Responsibles == nil {
		in.Responsibles = []domain.InstrumentResponsible{}
	}
	return in, nil
}

func instrumentArgs(in domain.Instrument) ([]any, error) {
	encoded := make([]any, 0, 4)
	for _, v := range []any{nonNil(in.Entities), nonNil(in.Responsibles), nonNil(in.Tags), nonNil(in.Attachments)} {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, string(data))
	}
	var value any
	if in.Value != nil {
		value = *in.Value
	}
	return append([]any{in.Title, nullable(in.Description), in.Status, in.Priority, in.TypeID,
		formatTime(in.SentDate), nullableTime(in.SignDate), formatTime(in.DueDate), value}, encoded...), nil
}

// InsertInstrument stores the instrument row. Movements are written separately.
func (r Repo) InsertInstrument(ctx context.Context, in domain.Instrument) error {
	args, err := instrumentArgs(in)
	if err != nil {
		return err
	}
	_, err = r.q().ExecContext(ctx, `INSERT INTO instruments(id,title,description,status,priority,type_id,sent_date,sign_date,due_date,value,entities_json,responsibles_json,tags_json,attachments_json)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`, append([]any{in.ID}, args...)...)
	return err
}

// UpdateInstrument replaces every stored field of the instrument.
func (r Repo) UpdateInstrument(ctx context.Context, in domain.Instrument) error {
	args, err := instrumentArgs(in)
	if err != nil {
		return err
	}
	res, err := r.q().ExecContext(ctx, `UPDATE instruments SET title=?,description=?,status=?,priority=?,type_id=?,sent_date=?,sign_date=?,due_date=?,value=?,entities_json=?,responsibles_json=?,tags_json=?,attachments_json=? WHERE id=?`,
		append(args, in.ID)...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetInstrument loads one instrument with its movement history.
func (r Repo) GetInstrument(ctx context.Context, id string) (domain.Instrument, error) {
	in, err := scanInstrument(r.q().QueryRowContext(ctx, `SELECT `+instrumentColumns+` FROM instruments WHERE id=?`, id))
	if err != nil {
		return in, err
	}
	in.Movements, err = r.ListMovements(ctx, id)
	return in, err
}

// ListInstruments returns every instrument in creation order with movements
// attached. Each call decodes fresh values, so callers own the result.
func (r Repo) ListInstruments(ctx context.Context) ([]domain.Instrument, error) {
	rows, err := r.q().QueryContext(ctx, `SELECT `+instrumentColumns+` FROM instruments ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	res := []domain.Instrument{}
	index := map[string]int{}
	for rows.Next() {
		in, err := scanInstrument(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		in.Movements = []domain.Movement{}
		index[in.ID] = len(res)
		res = append(res, in)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	movements, err := r.listMovements(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, m := range movements {
		if i, ok := index[m.InstrumentID]; ok {
			res[i].Movements = append(res[i].Movements, m)
		}
	}
	return res, nil
}

// DeleteInstrument removes the instrument; its movements cascade.
func (r Repo) DeleteInstrument(ctx context.Context, id string) error {
	res, err := r.q().ExecContext(ctx, `DELETE FROM instruments WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) CountInstruments(ctx context.Context) (int, error) {
	var n int
	err := r.q().QueryRowContext(ctx, `SELECT COUNT(*) FROM instruments`).Scan(&n)
	return n, err
}

// ListMovements returns the history of one instrument in append order.
func (r Repo) ListMovements(ctx context.Context, instrumentID string) ([]domain.Movement, error) {
	if instrumentID == "" {
		return nil, ErrNotFound
	}
	return r.listMovements(ctx, instrumentID)
}

func (r Repo) listMovements(ctx context.Context, instrumentID string) ([]domain.Movement, error) {
	query := `SELECT id,instrument_id,status,description,date,user_id,user_name FROM movements`
	var args []any
	if instrumentID != "" {
		query += ` WHERE instrument_id=?`
		args = append(args, instrumentID)
	}
	rows, err := r.q().QueryContext(ctx, query+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []domain.Movement{}
	for rows.Next() {
		var (
			m    domain.Movement
			date string
		)
		if err := rows.Scan(&m.ID, &m.InstrumentID, &m.Status, &m.Description, &date, &m.UserID, &m.UserName); err != nil {
			return nil, err
		}
		if m.Date, err = parseTime(date); err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

// FormatTime is the storage encoding for timestamps.
func FormatTime(t time.Time) string {
	return formatTime(t)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return t, fmt.Errorf("parse time %q: %w", v, err)
	}
	return t, nil
}

func parseNullTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := parseTime(v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
