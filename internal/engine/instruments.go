package engine

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"dueline/internal/domain"
	"dueline/internal/events"
	"dueline/internal/format"
	"dueline/internal/repo"
)

// InstrumentForm carries the fields of a new instrument.
type InstrumentForm struct {
	Title          string
	Description    string
	EntityIDs      []string
	ResponsibleIDs []string
	DueDate        time.Time
	Priority       domain.Priority
	TypeID         string
	Value          *float64
	Tags           []string
	Attachments    []string
}

// InstrumentPatch edits an instrument. Nil fields are left unchanged; a
// non-nil empty slice clears the collection.
type InstrumentPatch struct {
	Title          *string
	Description    *string
	EntityIDs      []string
	ResponsibleIDs []string
	DueDate        *time.Time
	Priority       *domain.Priority
	TypeID         *string
	Value          *float64
	Tags           []string
	Attachments    []string
	Status         *domain.InstrumentStatus
	// Note describes the change in the appended movement.
	Note string
}

const (
	movementCreated = "Instrumento criado"
	movementUpdated = "Instrumento atualizado"
)

func (e Engine) CreateInstrument(ctx context.Context, form InstrumentForm) (domain.Instrument, error) {
	title := strings.TrimSpace(form.Title)
	if title == "" {
		return domain.Instrument{}, invalid("title", "is required")
	}
	if form.DueDate.IsZero() {
		return domain.Instrument{}, invalid("due_date", "is required")
	}
	if form.Priority == "" {
		form.Priority = domain.PriorityMedium
	}
	if !form.Priority.Valid() {
		return domain.Instrument{}, invalid("priority", "%q is not one of low, medium, high", form.Priority)
	}
	if strings.TrimSpace(form.TypeID) == "" {
		return domain.Instrument{}, invalid("type_id", "is required")
	}
	if form.Value != nil && *form.Value < 0 {
		return domain.Instrument{}, invalid("value", "must not be negative")
	}

	now := e.now().UTC()
	in := domain.Instrument{
		ID:          e.newID(),
		Title:       title,
		Description: strings.TrimSpace(form.Description),
		Status:      domain.StatusPending,
		SentDate:    now,
		DueDate:     form.DueDate.UTC(),
		Priority:    form.Priority,
		TypeID:      strings.TrimSpace(form.TypeID),
		Value:       form.Value,
		Tags:        nonEmptyUnique(form.Tags),
		Attachments: nonEmptyUnique(form.Attachments),
	}
	err := e.mutate(ctx, "create_instrument", func(r repo.Repo, tx *sql.Tx) error {
		if _, err := r.GetType(ctx, in.TypeID); err != nil {
			if err == repo.ErrNotFound {
				return invalid("type_id", "unknown type %q", in.TypeID)
			}
			return err
		}
		var err error
		if in.Entities, err = resolveEntities(ctx, r, nil, form.EntityIDs); err != nil {
			return err
		}
		if in.Responsibles, err = resolveResponsibles(ctx, r, nil, form.ResponsibleIDs); err != nil {
			return err
		}
		if err := r.InsertInstrument(ctx, in); err != nil {
			return fmt.Errorf("insert instrument: %w", err)
		}
		mv := events.By(e.user(), in.ID, domain.StatusPending, movementCreated)
		mv.Date = now
		mv, err = e.Events.Append(ctx, tx, mv)
		if err != nil {
			return err
		}
		in.Movements = []domain.Movement{mv}
		return nil
	})
	if err != nil {
		return domain.Instrument{}, err
	}
	e.log().Info("instrument created", zap.String("id", in.ID), zap.String("title", in.Title))
	return in, nil
}

func (e Engine) UpdateInstrument(ctx context.Context, id string, patch InstrumentPatch) (domain.Instrument, error) {
	var out domain.Instrument
	err := e.mutate(ctx, "update_instrument", func(r repo.Repo, tx *sql.Tx) error {
		in, err := r.GetInstrument(ctx, id)
		if err != nil {
			return err
		}
		if patch.Title != nil {
			title := strings.TrimSpace(*patch.Title)
			if title == "" {
				return invalid("title", "is required")
			}
			in.Title = title
		}
		if patch.Description != nil {
			in.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.DueDate != nil {
			if patch.DueDate.IsZero() {
				return invalid("due_date", "is required")
			}
			in.DueDate = patch.DueDate.UTC()
		}
		if patch.Priority != nil {
			if !patch.Priority.Valid() {
				return invalid("priority", "%q is not one of low, medium, high", *patch.Priority)
			}
			in.Priority = *patch.Priority
		}
		if patch.TypeID != nil {
			if _, err := r.GetType(ctx, *patch.TypeID); err != nil {
				if err == repo.ErrNotFound {
					return invalid("type_id", "unknown type %q", *patch.TypeID)
				}
				return err
			}
			in.TypeID = *patch.TypeID
		}
		if patch.Value != nil {
			if *patch.Value < 0 {
				return invalid("value", "must not be negative")
			}
			in.Value = patch.Value
		}
		if patch.Tags != nil {
			in.Tags = nonEmptyUnique(patch.Tags)
		}
		if patch.Attachments != nil {
			in.Attachments = nonEmptyUnique(patch.Attachments)
		}
		if patch.EntityIDs != nil {
			if in.Entities, err = resolveEntities(ctx, r, in.Entities, patch.EntityIDs); err != nil {
				return err
			}
		}
		if patch.ResponsibleIDs != nil {
			if in.Responsibles, err = resolveResponsibles(ctx, r, in.Responsibles, patch.ResponsibleIDs); err != nil {
				return err
			}
		}

		now := e.now().UTC()
		desc := strings.TrimSpace(patch.Note)
		if patch.Status != nil && *patch.Status != in.Status {
			if !patch.Status.Valid() {
				return invalid("status", "%q is not one of pending, in_progress, signed, expired", *patch.Status)
			}
			in.Status = *patch.Status
			switch {
			case in.Status == domain.StatusSigned && in.SignDate == nil:
				in.SignDate = &now
			case in.Status != domain.StatusSigned:
				in.SignDate = nil
			}
			if desc == "" {
				desc = "Status alterado para " + format.StatusText(in.Status)
			}
		}
		if desc == "" {
			desc = movementUpdated
		}
		if err := r.UpdateInstrument(ctx, in); err != nil {
			return err
		}
		mv := events.By(e.user(), in.ID, in.Status, desc)
		mv.Date = now
		mv, err = e.Events.Append(ctx, tx, mv)
		if err != nil {
			return err
		}
		in.Movements = append(in.Movements, mv)
		out = in
		return nil
	})
	if err != nil {
		return domain.Instrument{}, err
	}
	e.log().Info("instrument updated", zap.String("id", out.ID), zap.String("status", string(out.Status)))
	return out, nil
}

// SetSignature changes one responsible's signature on one instrument. An
// empty status toggles the current one. Completing the last signature emits a
// success notification; the instrument status is left to the caller.
func (e Engine) SetSignature(ctx context.Context, instrumentID, responsibleID string, status domain.SignatureStatus) (domain.Instrument, error) {
	if status != "" && !status.Valid() {
		return domain.Instrument{}, invalid("status", "%q is not one of pending, signed", status)
	}
	var out domain.Instrument
	err := e.mutate(ctx, "set_signature", func(r repo.Repo, tx *sql.Tx) error {
		in, err := r.GetInstrument(ctx, instrumentID)
		if err != nil {
			return err
		}
		idx := in.Responsible(responsibleID)
		if idx < 0 {
			return fmt.Errorf("responsible %s on instrument %s: %w", responsibleID, instrumentID, repo.ErrNotFound)
		}
		wasComplete := in.FullySigned()
		resp := &in.Responsibles[idx]
		if status == "" {
			status = resp.SignatureStatus.Toggle()
		}
		now := e.now().UTC()
		resp.SignatureStatus = status
		desc := "Assinatura de " + resp.Name + " revertida"
		resp.SignatureDate = nil
		if status == domain.SignatureSigned {
			resp.SignatureDate = &now
			desc = "Assinatura de " + resp.Name + " registrada"
		}
		if err := r.UpdateInstrument(ctx, in); err != nil {
			return err
		}
		mv := events.By(e.user(), in.ID, in.Status, desc)
		mv.Date = now
		if mv, err = e.Events.Append(ctx, tx, mv); err != nil {
			return err
		}
		in.Movements = append(in.Movements, mv)

		if !wasComplete && in.FullySigned() {
			n := domain.Notification{
				ID:           e.newID(),
				Title:        "Novo instrumento assinado",
				Message:      fmt.Sprintf("Instrumento %q foi totalmente assinado", in.Title),
				Kind:         domain.NotificationSuccess,
				Date:         now,
				InstrumentID: in.ID,
			}
			if _, err := r.InsertNotification(ctx, n, ""); err != nil {
				return fmt.Errorf("insert notification: %w", err)
			}
		}
		out = in
		return nil
	})
	if err != nil {
		return domain.Instrument{}, err
	}
	e.log().Info("signature changed",
		zap.String("instrument", instrumentID),
		zap.String("responsible", responsibleID),
		zap.String("status", string(status)))
	return out, nil
}

func (e Engine) DeleteInstrument(ctx context.Context, id string) error {
	err := e.mutate(ctx, "delete_instrument", func(r repo.Repo, _ *sql.Tx) error {
		return r.DeleteInstrument(ctx, id)
	})
	if err == nil {
		e.log().Info("instrument deleted", zap.String("id", id))
	}
	return err
}

func (e Engine) GetInstrument(ctx context.Context, id string) (domain.Instrument, error) {
	return e.Repo.GetInstrument(ctx, id)
}

// History returns the movements of one instrument in append order.
func (e Engine) History(ctx context.Context, id string) ([]domain.Movement, error) {
	if _, err := e.Repo.GetInstrument(ctx, id); err != nil {
		return nil, err
	}
	return e.Repo.ListMovements(ctx, id)
}

// Snapshot returns every instrument as independent values.
func (e Engine) Snapshot(ctx context.Context) ([]domain.Instrument, error) {
	return e.Repo.ListInstruments(ctx)
}

// resolveEntities copies roster entities for ids. Entities already attached
// keep their existing copy.
func resolveEntities(ctx context.Context, r repo.Repo, current []domain.Entity, ids []string) ([]domain.Entity, error) {
	out := []domain.Entity{}
	for _, id := range nonEmptyUnique(ids) {
		if i := slices.IndexFunc(current, func(e domain.Entity) bool { return e.ID == id }); i >= 0 {
			out = append(out, current[i])
			continue
		}
		ent, err := r.GetEntity(ctx, id)
		if err == repo.ErrNotFound {
			return nil, invalid("entity_ids", "unknown entity %q", id)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, ent)
	}
	return out, nil
}

// resolveResponsibles assigns roster responsibles for ids. Responsibles
// already attached keep their copy and signature state.
func resolveResponsibles(ctx context.Context, r repo.Repo, current []domain.InstrumentResponsible, ids []string) ([]domain.InstrumentResponsible, error) {
	out := []domain.InstrumentResponsible{}
	for _, id := range nonEmptyUnique(ids) {
		if i := slices.IndexFunc(current, func(p domain.InstrumentResponsible) bool { return p.ID == id }); i >= 0 {
			out = append(out, current[i])
			continue
		}
		p, err := r.GetResponsible(ctx, id)
		if err == repo.ErrNotFound {
			return nil, invalid("responsible_ids", "unknown responsible %q", id)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p.Assign())
	}
	return out, nil
}
