// Package seed loads the reference dataset into an empty store.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"dueline/internal/domain"
	"dueline/internal/events"
	"dueline/internal/repo"
)

// Dataset is a complete set of records to load.
type Dataset struct {
	Types         []domain.InstrumentType
	Entities      []domain.Entity
	Responsibles  []domain.RosterResponsible
	Instruments   []domain.Instrument
	Notifications []domain.Notification
}

func ts(v string) time.Time {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T { return &v }

// Reference returns the demonstration dataset. Notification dates are
// relative to now; everything else is fixed.
func Reference(now time.Time) Dataset {
	types := []domain.InstrumentType{
		{ID: "1", Name: "Contrato de Fornecimento", Description: "Contratos para fornecimento de produtos ou serviços"},
		{ID: "2", Name: "Acordo de Parceria", Description: "Acordos de parceria comercial ou estratégica"},
		{ID: "3", Name: "Contrato de Prestação de Serviços", Description: "Contratos para prestação de serviços especializados"},
		{ID: "4", Name: "Contrato de Licenciamento", Description: "Contratos de licenciamento de software ou tecnologia"},
	}
	entities := []domain.Entity{
		{ID: "1", Name: "TechCorp Ltda", TaxID: "12.345.678/0001-90", Address: "São Paulo, SP"},
		{ID: "2", Name: "Indústria Brasil S.A.", TaxID: "98.765.432/0001-10", Address: "Rio de Janeiro, RJ"},
		{ID: "3", Name: "Comercial Norte Ltda", TaxID: "11.222.333/0001-44", Address: "Brasília, DF"},
		{ID: "4", Name: "Regional Sudeste", Address: "São Paulo, SP"},
		{ID: "5", Name: "Regional Nordeste", Address: "Salvador, BA"},
	}
	people := []domain.RosterResponsible{
		{ID: "1", Name: "Ana Silva", Email: "ana.silva@empresa.com", Phone: "(11) 99999-0001", Department: "Jurídico"},
		{ID: "2", Name: "Carlos Santos", Email: "carlos.santos@empresa.com", Phone: "(11) 99999-0002", Department: "Comercial"},
		{ID: "3", Name: "Maria Oliveira", Phone: "(11) 99999-0003", Department: "Operações"},
	}

	signedAna := people[0].Assign()
	signedAna.SignatureStatus = domain.SignatureSigned
	signedAna.SignatureDate = ptr(ts("2024-01-15T16:45:00Z"))

	mv := func(instrumentID string, status domain.InstrumentStatus, desc, date, userID, userName string) domain.Movement {
		return domain.Movement{InstrumentID: instrumentID, Status: status, Description: desc, Date: ts(date), UserID: userID, UserName: userName}
	}

	instruments := []domain.Instrument{
		{
			ID:           "1",
			Title:        "Instrumento de Fornecimento de Software",
			Description:  "Desenvolvimento e manutenção de sistema ERP",
			Entities:     []domain.Entity{entities[0]},
			Responsibles: []domain.InstrumentResponsible{signedAna},
			Status:       domain.StatusSigned,
			SentDate:     ts("2024-01-10T10:00:00Z"),
			SignDate:     ptr(ts("2024-01-15T16:45:00Z")),
			DueDate:      ts("2024-01-20T23:59:59Z"),
			Priority:     domain.PriorityHigh,
			TypeID:       "1",
			Value:        ptr(150000.0),
			Tags:         []string{"software", "erp", "tecnologia"},
			Movements: []domain.Movement{
				mv("1", domain.StatusPending, "Instrumento criado e enviado para análise", "2024-01-10T10:00:00Z", "1", "Sistema"),
				mv("1", domain.StatusInProgress, "Instrumento em análise jurídica", "2024-01-12T14:30:00Z", "1", "Ana Silva"),
				mv("1", domain.StatusSigned, "Instrumento assinado por todas as partes", "2024-01-15T16:45:00Z", "1", "Ana Silva"),
			},
		},
		{
			ID:           "2",
			Title:        "Acordo de Parceria Comercial",
			Description:  "Parceria para distribuição de produtos",
			Entities:     []domain.Entity{entities[1]},
			Responsibles: []domain.InstrumentResponsible{people[1].Assign()},
			Status:       domain.StatusInProgress,
			SentDate:     ts("2024-01-05T09:00:00Z"),
			DueDate:      ts("2025-01-30T23:59:59Z"),
			Priority:     domain.PriorityMedium,
			TypeID:       "2",
			Value:        ptr(250000.0),
			Tags:         []string{"parceria", "distribuição", "comercial"},
			Movements: []domain.Movement{
				mv("2", domain.StatusPending, "Instrumento enviado para empresa parceira", "2024-01-05T09:00:00Z", "2", "Carlos Santos"),
				mv("2", domain.StatusInProgress, "Em análise pelo departamento comercial", "2024-01-08T11:20:00Z", "2", "Carlos Santos"),
			},
		},
		{
			ID:           "3",
			Title:        "Instrumento de Prestação de Serviços",
			Description:  "Serviços de manutenção industrial",
			Entities:     []domain.Entity{entities[2]},
			Responsibles: []domain.InstrumentResponsible{people[2].Assign()},
			Status:       domain.StatusPending,
			SentDate:     ts("2024-01-20T08:30:00Z"),
			DueDate:      ts("2025-01-25T23:59:59Z"),
			Priority:     domain.PriorityHigh,
			TypeID:       "3",
			Value:        ptr(80000.0),
			Tags:         []string{"serviços", "manutenção", "industrial"},
			Movements: []domain.Movement{
				mv("3", domain.StatusPending, "Instrumento criado e aguardando envio", "2024-01-20T08:30:00Z", "3", "Maria Oliveira"),
			},
		},
		{
			ID:           "4",
			Title:        "Instrumento de Licenciamento",
			Description:  "Licença de uso de software especializado",
			Entities:     []domain.Entity{entities[0]},
			Responsibles: []domain.InstrumentResponsible{people[0].Assign()},
			Status:       domain.StatusExpired,
			SentDate:     ts("2024-01-01T10:00:00Z"),
			DueDate:      ts("2024-01-15T23:59:59Z"),
			Priority:     domain.PriorityLow,
			TypeID:       "4",
			Value:        ptr(45000.0),
			Tags:         []string{"licença", "software", "especializado"},
			Movements: []domain.Movement{
				mv("4", domain.StatusPending, "Instrumento enviado para análise", "2024-01-01T10:00:00Z", "1", "Ana Silva"),
			},
		},
	}

	notifications := []domain.Notification{
		{ID: "1", Title: "Instrumento vencendo em breve", Message: `O instrumento "Prestação de Serviços" vence em 2 dias`,
			Kind: domain.NotificationWarning, Date: now, InstrumentID: "3"},
		{ID: "2", Title: "Novo instrumento assinado", Message: `Instrumento "Fornecimento de Software" foi totalmente assinado`,
			Kind: domain.NotificationSuccess, Date: now.Add(-24 * time.Hour), InstrumentID: "1"},
		{ID: "3", Title: "Instrumento vencido", Message: `O instrumento "Licenciamento" está vencido há 10 dias`,
			Kind: domain.NotificationError, Date: now.Add(-48 * time.Hour), Read: true, InstrumentID: "4"},
	}

	return Dataset{Types: types, Entities: entities, Responsibles: people, Instruments: instruments, Notifications: notifications}
}

// Apply loads ds inside tx when the store holds no instruments. It reports
// whether anything was written.
func Apply(ctx context.Context, tx *sql.Tx, w events.Writer, ds Dataset) (bool, error) {
	r := repo.Repo{}.WithTx(tx)
	n, err := r.CountInstruments(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	for _, t := range ds.Types {
		if err := r.InsertType(ctx, t); err != nil {
			return false, fmt.Errorf("seed type %s: %w", t.ID, err)
		}
	}
	for _, e := range ds.Entities {
		if err := r.InsertEntity(ctx, e); err != nil {
			return false, fmt.Errorf("seed entity %s: %w", e.ID, err)
		}
	}
	for _, p := range ds.Responsibles {
		if err := r.InsertResponsible(ctx, p); err != nil {
			return false, fmt.Errorf("seed responsible %s: %w", p.ID, err)
		}
	}
	for _, in := range ds.Instruments {
		if err := r.InsertInstrument(ctx, in); err != nil {
			return false, fmt.Errorf("seed instrument %s: %w", in.ID, err)
		}
		for _, m := range in.Movements {
			if _, err := w.Append(ctx, tx, m); err != nil {
				return false, err
			}
		}
	}
	for _, notif := range ds.Notifications {
		if _, err := r.InsertNotification(ctx, notif, ""); err != nil {
			return false, fmt.Errorf("seed notification %s: %w", notif.ID, err)
		}
	}
	return true, nil
}
