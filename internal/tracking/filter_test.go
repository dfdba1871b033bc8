package tracking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dueline/internal/domain"
	"dueline/internal/tracking"
)

var (
	techCorp   = domain.Entity{ID: "1", Name: "TechCorp Ltda"}
	industria  = domain.Entity{ID: "2", Name: "Indústria Brasil S.A."}
	comercial  = domain.Entity{ID: "3", Name: "Comercial Norte Ltda"}
	ana        = domain.RosterResponsible{ID: "1", Name: "Ana Silva"}
	carlos     = domain.RosterResponsible{ID: "2", Name: "Carlos Santos"}
	maria      = domain.RosterResponsible{ID: "3", Name: "Maria Oliveira"}
	collection = []domain.Instrument{
		instrument("1", withTitle("Instrumento de Fornecimento de Software"), withDescription("Desenvolvimento e manutenção de sistema ERP"),
			withEntities(techCorp), withResponsibles(ana), withStatus(domain.StatusSigned), withTags("software", "erp")),
		instrument("2", withTitle("Acordo de Parceria Comercial"), withEntities(industria), withResponsibles(carlos),
			withStatus(domain.StatusInProgress), withTags("parceria")),
		instrument("3", withTitle("Instrumento de Prestação de Serviços"), withEntities(comercial), withResponsibles(maria),
			withStatus(domain.StatusPending), withTags("industrial")),
		instrument("4", withTitle("Instrumento de Licenciamento"), withEntities(techCorp, industria), withResponsibles(ana, maria),
			withStatus(domain.StatusExpired)),
	}
)

func TestZeroFilterPassesEverything(t *testing.T) {
	f := tracking.Filter{Search: "   "}
	assert.True(t, f.IsZero())
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(f.Apply(collection)))
}

func TestFilterByStatusSet(t *testing.T) {
	f := tracking.Filter{Status: []domain.InstrumentStatus{domain.StatusExpired, domain.StatusSigned}}
	assert.Equal(t, []string{"1", "4"}, ids(f.Apply(collection)))
}

func TestFilterByEntityMatchesAnyAttached(t *testing.T) {
	f := tracking.Filter{Entity: []string{"2"}}
	assert.Equal(t, []string{"2", "4"}, ids(f.Apply(collection)))
}

func TestFilterByResponsible(t *testing.T) {
	f := tracking.Filter{Responsible: []string{"3", "2"}}
	assert.Equal(t, []string{"2", "3", "4"}, ids(f.Apply(collection)))
}

func TestFilterCriteriaCombineWithAnd(t *testing.T) {
	f := tracking.Filter{
		Entity:      []string{"1"},
		Responsible: []string{"3"},
	}
	assert.Equal(t, []string{"4"}, ids(f.Apply(collection)))

	f.Status = []domain.InstrumentStatus{domain.StatusPending}
	assert.Empty(t, f.Apply(collection))
}

func TestSearchIsCaseInsensitiveSubstring(t *testing.T) {
	cases := []struct {
		term string
		want []string
	}{
		{"  FORNECIMENTO ", []string{"1"}},
		{"erp", []string{"1"}},
		{"ana silva", []string{"1", "4"}},
		{"norte", []string{"3"}},
		{"industrial", []string{"3"}},
		{"parc", []string{"2"}},
		{"inexistente", nil},
	}
	for _, tc := range cases {
		t.Run(tc.term, func(t *testing.T) {
			got := tracking.Filter{Search: tc.term}.Apply(collection)
			if tc.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.want, ids(got))
		})
	}
}

func TestSearchSpansJoinedFields(t *testing.T) {
	// Fields are joined with single spaces, so a term may bridge the title and
	// the description.
	in := instrument("x", withTitle("Contrato"), withDescription("Anual"))
	assert.True(t, tracking.Filter{Search: "contrato anual"}.Match(in))
	assert.Equal(t, "Contrato Anual", tracking.SearchText(in))
}

func TestFilterDueRange(t *testing.T) {
	ins := []domain.Instrument{
		instrument("a", withDue(t0.Add(24*time.Hour))),
		instrument("b", withDue(t0.Add(10*24*time.Hour))),
		instrument("c", withDue(t0.Add(20*24*time.Hour))),
	}
	f := tracking.Filter{DueFrom: t0.Add(24 * time.Hour), DueTo: t0.Add(10 * 24 * time.Hour)}
	assert.Equal(t, []string{"a", "b"}, ids(f.Apply(ins)))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	before := ids(collection)
	out := tracking.Filter{Status: []domain.InstrumentStatus{domain.StatusPending}}.Apply(collection)
	require.Len(t, out, 1)
	assert.Equal(t, before, ids(collection))
}
