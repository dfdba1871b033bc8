package repo

import (
	"context"
	"database/sql"
	"errors"

	"dueline/internal/domain"
)

func (r Repo) InsertEntity(ctx context.Context, e domain.Entity) error {
	_, err := r.q().ExecContext(ctx, `INSERT INTO entities(id,name,tax_id,address) VALUES (?,?,?,?)`,
		e.ID, e.Name, nullable(e.TaxID), nullable(e.Address))
	return err
}

func (r Repo) UpdateEntity(ctx context.Context, e domain.Entity) error {
	res, err := r.q().ExecContext(ctx, `UPDATE entities SET name=?,tax_id=?,address=? WHERE id=?`,
		e.Name, nullable(e.TaxID), nullable(e.Address), e.ID)
	return affected(res, err)
}

func (r Repo) DeleteEntity(ctx context.Context, id string) error {
	return affected(r.q().ExecContext(ctx, `DELETE FROM entities WHERE id=?`, id))
}

func (r Repo) GetEntity(ctx context.Context, id string) (domain.Entity, error) {
	var e domain.Entity
	err := r.q().QueryRowContext(ctx, `SELECT id,name,COALESCE(tax_id,''),COALESCE(address,'') FROM entities WHERE id=?`, id).
		Scan(&e.ID, &e.Name, &e.TaxID, &e.Address)
	if errors.Is(err, sql.ErrNoRows) {
		return e, ErrNotFound
	}
	return e, err
}

func (r Repo) ListEntities(ctx context.Context) ([]domain.Entity, error) {
	rows, err := r.q().QueryContext(ctx, `SELECT id,name,COALESCE(tax_id,''),COALESCE(address,'') FROM entities ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []domain.Entity{}
	for rows.Next() {
		var e domain.Entity
		if err := rows.Scan(&e.ID, &e.Name, &e.TaxID, &e.Address); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func (r Repo) InsertResponsible(ctx context.Context, p domain.RosterResponsible) error {
	_, err := r.q().ExecContext(ctx, `INSERT INTO responsibles(id,name,email,phone,department) VALUES (?,?,?,?,?)`,
		p.ID, p.Name, nullable(p.Email), nullable(p.Phone), nullable(p.Department))
	return err
}

func (r Repo) UpdateResponsible(ctx context.Context, p domain.RosterResponsible) error {
	res, err := r.q().ExecContext(ctx, `UPDATE responsibles SET name=?,email=?,phone=?,department=? WHERE id=?`,
		p.Name, nullable(p.Email), nullable(p.Phone), nullable(p.Department), p.ID)
	return affected(res, err)
}

func (r Repo) DeleteResponsible(ctx context.Context, id string) error {
	return affected(r.q().ExecContext(ctx, `DELETE FROM responsibles WHERE id=?`, id))
}

const responsibleColumns = `id,name,COALESCE(email,''),COALESCE(phone,''),COALESCE(department,'')`

func (r Repo) GetResponsible(ctx context.Context, id string) (domain.RosterResponsible, error) {
	var p domain.RosterResponsible
	err := r.q().QueryRowContext(ctx, `SELECT `+responsibleColumns+` FROM responsibles WHERE id=?`, id).
		Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Department)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

func (r Repo) ListResponsibles(ctx context.Context) ([]domain.RosterResponsible, error) {
	rows, err := r.q().QueryContext(ctx, `SELECT `+responsibleColumns+` FROM responsibles ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []domain.RosterResponsible{}
	for rows.Next() {
		var p domain.RosterResponsible
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Department); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (r Repo) InsertType(ctx context.Context, t domain.InstrumentType) error {
	_, err := r.q().ExecContext(ctx, `INSERT INTO instrument_types(id,name,description) VALUES (?,?,?)`,
		t.ID, t.Name, nullable(t.Description))
	return err
}

func (r Repo) UpdateType(ctx context.Context, t domain.InstrumentType) error {
	res, err := r.q().ExecContext(ctx, `UPDATE instrument_types SET name=?,description=? WHERE id=?`,
		t.Name, nullable(t.Description), t.ID)
	return affected(res, err)
}

func (r Repo) DeleteType(ctx context.Context, id string) error {
	return affected(r.q().ExecContext(ctx, `DELETE FROM instrument_types WHERE id=?`, id))
}

func (r Repo) GetType(ctx context.Context, id string) (domain.InstrumentType, error) {
	var t domain.InstrumentType
	err := r.q().QueryRowContext(ctx, `SELECT id,name,COALESCE(description,'') FROM instrument_types WHERE id=?`, id).
		Scan(&t.ID, &t.Name, &t.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	return t, err
}

func (r Repo) ListTypes(ctx context.Context) ([]domain.InstrumentType, error) {
	rows, err := r.q().QueryContext(ctx, `SELECT id,name,COALESCE(description,'') FROM instrument_types ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []domain.InstrumentType{}
	for rows.Next() {
		var t domain.InstrumentType
		if err := rows.Scan(&t.ID, &t.Name, &t.Description); err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

// CountInstrumentsOfType reports how many instruments reference the type.
func (r Repo) CountInstrumentsOfType(ctx context.Context, typeID string) (int, error) {
	var n int
	err := r.q().QueryRowContext(ctx, `SELECT COUNT(*) FROM instruments WHERE type_id=?`, typeID).Scan(&n)
	return n, err
}

func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
