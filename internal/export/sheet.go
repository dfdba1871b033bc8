package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"dueline/internal/domain"
	"dueline/internal/format"
)

const (
	SheetName     = "Instrumentos"
	minColumnWide = 15
)

var sheetHeader = []string{"Título", "Tipo", "Descrição", "Entidades", "Responsáveis", "Status", "Prioridade", "Data de Envio", "Data de Vencimento", "Valor", "Tags"}

func (r Report) sheetRow(in domain.Instrument) []string {
	value := ""
	if in.Value != nil && *in.Value != 0 {
		value = format.Currency(*in.Value)
	}
	return []string{
		in.Title,
		r.typeName(in.TypeID),
		in.Description,
		EntityNames(in),
		ResponsibleNames(in),
		format.StatusText(in.Status),
		format.PriorityText(in.Priority),
		r.Formatter.Date(in.SentDate),
		r.Formatter.Date(in.DueDate),
		value,
		joinTags(in.Tags),
	}
}

// Spreadsheet writes an XLSX workbook with a single Instrumentos sheet.
func Spreadsheet(w io.Writer, r Report, instruments []domain.Instrument) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}
	widths := make([]int, len(sheetHeader))
	write := func(rowNum int, values []string) error {
		cells := make([]any, len(values))
		for i, v := range values {
			cells[i] = v
			widths[i] = max(widths[i], len([]rune(v)))
		}
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		return f.SetSheetRow(SheetName, cell, &cells)
	}
	if err := write(1, sheetHeader); err != nil {
		return err
	}
	for i, in := range instruments {
		if err := write(i+2, r.sheetRow(in)); err != nil {
			return err
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.ColumnNumberToName(len(sheetHeader))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", last+"1", bold); err != nil {
		return err
	}
	for i, wide := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, col, col, float64(max(wide, minColumnWide))); err != nil {
			return err
		}
	}
	return f.Write(w)
}

// CSV writes the same columns as the PDF table.
func CSV(w io.Writer, r Report, instruments []domain.Instrument) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tableHeader); err != nil {
		return err
	}
	for _, in := range instruments {
		if err := cw.Write(r.row(in)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func joinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
