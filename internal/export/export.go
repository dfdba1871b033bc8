// Package export renders instrument lists and details as PDF, XLSX and CSV.
package export

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"dueline/internal/domain"
	"dueline/internal/format"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

const (
	DefaultTitle = "Relatório de Instrumentos Contratuais"
	notAvailable = "N/A"
)

func ParseFormat(v string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(v))); f {
	case FormatPDF, FormatXLSX, FormatCSV:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want pdf, xlsx or csv)", v)
}

func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	}
	return "application/octet-stream"
}

// Report holds what every renderer needs besides the instruments.
type Report struct {
	Title       string
	GeneratedAt time.Time
	Formatter   format.Formatter
	// TypeNames maps type id to display name.
	TypeNames map[string]string
}

func (r Report) title() string {
	if r.Title == "" {
		return DefaultTitle
	}
	return r.Title
}

func (r Report) typeName(id string) string {
	if name, ok := r.TypeNames[id]; ok {
		return name
	}
	return notAvailable
}

var tableHeader = []string{"Título", "Tipo", "Entidades", "Responsáveis", "Status", "Envio", "Vencimento", "Valor"}

// row renders the shared table columns for one instrument.
func (r Report) row(in domain.Instrument) []string {
	return []string{
		in.Title,
		r.typeName(in.TypeID),
		EntityNames(in),
		ResponsibleNames(in),
		format.StatusText(in.Status),
		r.Formatter.Date(in.SentDate),
		r.Formatter.Date(in.DueDate),
		format.OptionalCurrency(in.Value, notAvailable),
	}
}

func EntityNames(in domain.Instrument) string {
	names := make([]string, len(in.Entities))
	for i, e := range in.Entities {
		names[i] = e.Name
	}
	return strings.Join(names, ", ")
}

func ResponsibleNames(in domain.Instrument) string {
	names := make([]string, len(in.Responsibles))
	for i, p := range in.Responsibles {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}

// Write renders instruments in format f.
func Write(w io.Writer, f Format, r Report, instruments []domain.Instrument) error {
	switch f {
	case FormatPDF:
		return ListPDF(w, r, instruments)
	case FormatXLSX:
		return Spreadsheet(w, r, instruments)
	case FormatCSV:
		return CSV(w, r, instruments)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// ListFilename is the download name for a list export.
func ListFilename(f Format) string {
	return "relatorio-instrumentos." + string(f)
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9]`)

// DetailFilename is the download name for a single-instrument PDF. Every
// character outside [A-Za-z0-9] becomes '-'.
func DetailFilename(title string) string {
	return "instrumento-" + unsafeName.ReplaceAllString(title, "-") + ".pdf"
}
