package engine

import (
	"context"
	"database/sql"
	"strings"

	"go.uber.org/zap"

	"dueline/internal/domain"
	"dueline/internal/repo"
)

// Roster edits only touch the master records. Instruments keep the copies
// made when the entity or responsible was attached.

func (e Engine) ListEntities(ctx context.Context) ([]domain.Entity, error) {
	return e.Repo.ListEntities(ctx)
}

func (e Engine) CreateEntity(ctx context.Context, ent domain.Entity) (domain.Entity, error) {
	ent = trimEntity(ent)
	if ent.Name == "" {
		return ent, invalid("name", "is required")
	}
	if ent.ID == "" {
		ent.ID = e.newID()
	}
	err := e.mutate(ctx, "create_entity", func(r repo.Repo, _ *sql.Tx) error {
		return r.InsertEntity(ctx, ent)
	})
	if err == nil {
		e.log().Info("entity created", zap.String("id", ent.ID))
	}
	return ent, err
}

func (e Engine) UpdateEntity(ctx context.Context, ent domain.Entity) (domain.Entity, error) {
	ent = trimEntity(ent)
	if ent.Name == "" {
		return ent, invalid("name", "is required")
	}
	err := e.mutate(ctx, "update_entity", func(r repo.Repo, _ *sql.Tx) error {
		return r.UpdateEntity(ctx, ent)
	})
	return ent, err
}

func (e Engine) DeleteEntity(ctx context.Context, id string) error {
	return e.mutate(ctx, "delete_entity", func(r repo.Repo, _ *sql.Tx) error {
		return r.DeleteEntity(ctx, id)
	})
}

func trimEntity(ent domain.Entity) domain.Entity {
	ent.ID = strings.TrimSpace(ent.ID)
	ent.Name = strings.TrimSpace(ent.Name)
	ent.TaxID = strings.TrimSpace(ent.TaxID)
	ent.Address = strings.TrimSpace(ent.Address)
	return ent
}

func (e Engine) ListResponsibles(ctx context.Context) ([]domain.RosterResponsible, error) {
	return e.Repo.ListResponsibles(ctx)
}

func (e Engine) CreateResponsible(ctx context.Context, p domain.RosterResponsible) (domain.RosterResponsible, error) {
	p = trimResponsible(p)
	if p.Name == "" {
		return p, invalid("name", "is required")
	}
	if p.ID == "" {
		p.ID = e.newID()
	}
	err := e.mutate(ctx, "create_responsible", func(r repo.Repo, _ *sql.Tx) error {
		return r.InsertResponsible(ctx, p)
	})
	if err == nil {
		e.log().Info("responsible created", zap.String("id", p.ID))
	}
	return p, err
}

func (e Engine) UpdateResponsible(ctx context.Context, p domain.RosterResponsible) (domain.RosterResponsible, error) {
	p = trimResponsible(p)
	if p.Name == "" {
		return p, invalid("name", "is required")
	}
	err := e.mutate(ctx, "update_responsible", func(r repo.Repo, _ *sql.Tx) error {
		return r.UpdateResponsible(ctx, p)
	})
	return p, err
}

func (e Engine) DeleteResponsible(ctx context.Context, id string) error {
	return e.mutate(ctx, "delete_responsible", func(r repo.Repo, _ *sql.Tx) error {
		return r.DeleteResponsible(ctx, id)
	})
}

func trimResponsible(p domain.RosterResponsible) domain.RosterResponsible {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Department = strings.TrimSpace(p.Department)
	return p
}

func (e Engine) ListTypes(ctx context.Context) ([]domain.InstrumentType, error) {
	return e.Repo.ListTypes(ctx)
}

func (e Engine) CreateType(ctx context.Context, t domain.InstrumentType) (domain.InstrumentType, error) {
	t.ID, t.Name, t.Description = strings.TrimSpace(t.ID), strings.TrimSpace(t.Name), strings.TrimSpace(t.Description)
	if t.Name == "" {
		return t, invalid("name", "is required")
	}
	if t.ID == "" {
		t.ID = e.newID()
	}
	err := e.mutate(ctx, "create_type", func(r repo.Repo, _ *sql.Tx) error {
		return r.InsertType(ctx, t)
	})
	return t, err
}

func (e Engine) UpdateType(ctx context.Context, t domain.InstrumentType) (domain.InstrumentType, error) {
	t.Name, t.Description = strings.TrimSpace(t.Name), strings.TrimSpace(t.Description)
	if t.Name == "" {
		return t, invalid("name", "is required")
	}
	err := e.mutate(ctx, "update_type", func(r repo.Repo, _ *sql.Tx) error {
		return r.UpdateType(ctx, t)
	})
	return t, err
}

// DeleteType refuses to remove a type still referenced by instruments.
func (e Engine) DeleteType(ctx context.Context, id string) error {
	return e.mutate(ctx, "delete_type", func(r repo.Repo, _ *sql.Tx) error {
		n, err := r.CountInstrumentsOfType(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return invalid("id", "type %s is used by %d instruments", id, n)
		}
		return r.DeleteType(ctx, id)
	})
}

// TypeNames maps type id to display name.
func (e Engine) TypeNames(ctx context.Context) (map[string]string, error) {
	types, err := e.Repo.ListTypes(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(types))
	for _, t := range types {
		names[t.ID] = t.Name
	}
	return names, nil
}
