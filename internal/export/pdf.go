package export

import (
	"io"

	"github.com/go-pdf/fpdf"

	"dueline/internal/domain"
	"dueline/internal/format"
)

var (
	headerBlue  = [3]int{59, 130, 246}
	headerGreen = [3]int{34, 197, 94}
	stripe      = [3]int{245, 245, 245}
)

// document wraps fpdf with the cp1252 translator so pt-BR accents survive
// the core fonts.
type document struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newDocument(orientation string, r Report) document {
	pdf := fpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 12)
	if !r.GeneratedAt.IsZero() {
		pdf.SetCreationDate(r.GeneratedAt)
	}
	d := document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.SetTitle(d.tr(r.title()), false)
	pdf.AddPage()
	return d
}

func (d document) text(family, style string, size float64) {
	d.pdf.SetFont(family, style, size)
}

// fit shortens s with an ellipsis until it fits in width w.
func (d document) fit(s string, w float64) string {
	s = d.tr(s)
	limit := w - 2
	if d.pdf.GetStringWidth(s) <= limit {
		return s
	}
	// translated text is single-byte, so trimming bytes trims characters
	b := []byte(s)
	for len(b) > 0 && d.pdf.GetStringWidth(string(b)+"...") > limit {
		b = b[:len(b)-1]
	}
	return string(b) + "..."
}

// table draws header and rows with fixed column widths.
func (d document) table(widths []float64, header []string, rows [][]string, head [3]int, size float64) {
	d.text("Helvetica", "B", size)
	d.pdf.SetFillColor(head[0], head[1], head[2])
	d.pdf.SetTextColor(255, 255, 255)
	for i, h := range header {
		d.pdf.CellFormat(widths[i], 7, d.fit(h, widths[i]), "1", 0, "L", true, 0, "")
	}
	d.pdf.Ln(-1)
	d.text("Helvetica", "", size)
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.SetFillColor(stripe[0], stripe[1], stripe[2])
	for n, row := range rows {
		for i, cell := range row {
			d.pdf.CellFormat(widths[i], 6, d.fit(cell, widths[i]), "1", 0, "L", n%2 == 1, 0, "")
		}
		d.pdf.Ln(-1)
	}
}

func (d document) output(w io.Writer) error {
	if err := d.pdf.Error(); err != nil {
		return err
	}
	return d.pdf.Output(w)
}

// ListPDF renders the report header and one table row per instrument.
func ListPDF(w io.Writer, r Report, instruments []domain.Instrument) error {
	d := newDocument("L", r)
	d.text("Helvetica", "B", 18)
	d.pdf.Cell(0, 10, d.tr(r.title()))
	d.pdf.Ln(10)
	d.text("Helvetica", "", 11)
	d.pdf.Cell(0, 6, d.tr("Gerado em: "+r.Formatter.Date(r.GeneratedAt)))
	d.pdf.Ln(6)
	d.pdf.Cell(0, 6, d.tr("Total de instrumentos: ")+itoa(len(instruments)))
	d.pdf.Ln(10)

	rows := make([][]string, len(instruments))
	for i, in := range instruments {
		rows[i] = r.row(in)
	}
	d.table([]float64{55, 38, 42, 42, 24, 22, 24, 30}, tableHeader, rows, headerBlue, 8)
	return d.output(w)
}

// DetailPDF renders one instrument with its responsibles and movement history.
func DetailPDF(w io.Writer, r Report, in domain.Instrument) error {
	d := newDocument("P", r)
	d.text("Helvetica", "B", 16)
	d.pdf.Cell(0, 10, d.tr("Detalhes do Instrumento"))
	d.pdf.Ln(14)

	line := func(label, value string) {
		d.text("Helvetica", "B", 11)
		d.pdf.CellFormat(45, 7, d.tr(label+":"), "", 0, "L", false, 0, "")
		d.text("Helvetica", "", 11)
		d.pdf.CellFormat(0, 7, d.fit(value, 145), "", 1, "L", false, 0, "")
	}
	line("Título", in.Title)
	line("Tipo", r.typeName(in.TypeID))
	line("Status", format.StatusText(in.Status))
	line("Prioridade", format.PriorityText(in.Priority))
	line("Data de Envio", r.Formatter.Date(in.SentDate))
	line("Data de Vencimento", r.Formatter.Date(in.DueDate))
	line("Data de Assinatura", r.Formatter.OptionalDate(in.SignDate, notAvailable))
	line("Valor", format.OptionalCurrency(in.Value, notAvailable))
	if len(in.Tags) > 0 {
		line("Tags", joinTags(in.Tags))
	}

	d.pdf.Ln(4)
	d.text("Helvetica", "B", 11)
	d.pdf.Cell(0, 7, d.tr("Descrição:"))
	d.pdf.Ln(7)
	d.text("Helvetica", "", 10)
	d.pdf.MultiCell(0, 5, d.tr(in.Description), "", "L", false)
	d.pdf.Ln(4)

	d.text("Helvetica", "B", 11)
	d.pdf.Cell(0, 7, d.tr("Entidades:"))
	d.pdf.Ln(7)
	d.text("Helvetica", "", 10)
	for _, e := range in.Entities {
		d.pdf.Cell(0, 6, d.tr("• "+e.Name))
		d.pdf.Ln(6)
	}
	d.pdf.Ln(4)

	d.text("Helvetica", "B", 11)
	d.pdf.Cell(0, 7, d.tr("Responsáveis e Status de Assinatura:"))
	d.pdf.Ln(8)
	people := make([][]string, len(in.Responsibles))
	for i, p := range in.Responsibles {
		email := p.Email
		if email == "" {
			email = notAvailable
		}
		people[i] = []string{p.Name, p.Department, email, format.SignatureText(p.SignatureStatus), r.Formatter.OptionalDate(p.SignatureDate, "")}
	}
	d.table([]float64{45, 30, 55, 30, 30}, []string{"Nome", "Departamento", "Email", "Status Assinatura", "Assinado em"}, people, headerBlue, 9)

	if len(in.Movements) > 0 {
		d.pdf.Ln(8)
		d.text("Helvetica", "B", 11)
		d.pdf.Cell(0, 7, d.tr("Histórico de Movimentações:"))
		d.pdf.Ln(8)
		moves := make([][]string, len(in.Movements))
		for i, m := range in.Movements {
			moves[i] = []string{r.Formatter.DateTime(m.Date), format.StatusText(m.Status), m.UserName, m.Description}
		}
		d.table([]float64{32, 28, 35, 95}, []string{"Data", "Status", "Usuário", "Descrição"}, moves, headerGreen, 9)
	}
	return d.output(w)
}
