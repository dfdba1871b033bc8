// Package format renders values the way the dashboard shows them in pt-BR.
package format

import (
	"time"
	_ "time/tzdata"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"dueline/internal/domain"
)

const (
	dateLayout     = "02/01/2006"
	dateTimeLayout = "02/01/2006 15:04"
	// Intl's pt-BR currency output separates the symbol with a no-break space.
	currencyPrefix = "R$\u00a0"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// Formatter formats dates in a fixed location.
type Formatter struct {
	Location *time.Location
}

// New returns a Formatter for the named IANA zone, falling back to UTC when
// the zone cannot be loaded.
func New(zone string) Formatter {
	loc, err := time.LoadLocation(zone)
	if err != nil || zone == "" {
		loc = time.UTC
	}
	return Formatter{Location: loc}
}

func (f Formatter) loc() *time.Location {
	if f.Location == nil {
		return time.UTC
	}
	return f.Location
}

func (f Formatter) Date(t time.Time) string {
	return t.In(f.loc()).Format(dateLayout)
}

func (f Formatter) DateTime(t time.Time) string {
	return t.In(f.loc()).Format(dateTimeLayout)
}

// OptionalDate formats t or returns fallback when t is nil.
func (f Formatter) OptionalDate(t *time.Time, fallback string) string {
	if t == nil {
		return fallback
	}
	return f.Date(*t)
}

// Currency formats v as Brazilian Real with grouping and two decimals.
func Currency(v float64) string {
	if v < 0 {
		return "-" + currencyPrefix + printer.Sprint(number.Decimal(-v, number.Scale(2)))
	}
	return currencyPrefix + printer.Sprint(number.Decimal(v, number.Scale(2)))
}

// OptionalCurrency formats v or returns fallback when v is nil or zero.
func OptionalCurrency(v *float64, fallback string) string {
	if v == nil || *v == 0 {
		return fallback
	}
	return Currency(*v)
}

func StatusText(s domain.InstrumentStatus) string {
	switch s {
	case domain.StatusSigned:
		return "Assinado"
	case domain.StatusInProgress:
		return "Em Andamento"
	case domain.StatusPending:
		return "Pendente"
	case domain.StatusExpired:
		return "Vencido"
	}
	return string(s)
}

func PriorityText(p domain.Priority) string {
	switch p {
	case domain.PriorityHigh:
		return "Alta"
	case domain.PriorityMedium:
		return "Média"
	case domain.PriorityLow:
		return "Baixa"
	}
	return string(p)
}

func SignatureText(s domain.SignatureStatus) string {
	if s == domain.SignatureSigned {
		return "Assinado"
	}
	return "Pendente"
}
