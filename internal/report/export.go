package report

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"crediario-backend/internal/domain"
	"github.com/xuri/excelize/v2"
)

var exportHeader = []string{"ID", "Cliente", "Saldo", "Situação", "Criado em", "Transações", "Última movimentação"}

func dates(r Row) (created, last string) {
	if !r.CreatedAt.IsZero() {
		created = r.CreatedAt.Format("2006-01-02")
	}
	if t, ok := r.LastTransaction(); ok && !t.Date.IsZero() {
		last = t.Date.Format("2006-01-02")
	}
	return created, last
}

// CSV uses ';' as separator and a comma decimal mark, as pt-BR spreadsheets
// expect.
func CSV(rows []Row) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	w.Comma = ';'
	_ = w.Write(exportHeader)
	for _, r := range rows {
		created, last := dates(r)
		_ = w.Write([]string{
			r.ID,
			r.CustomerName,
			domain.FormatBRL(r.Balance),
			r.Status,
			created,
			strconv.Itoa(len(r.History)),
			last,
		})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// XLSX renders rows into a single "Crediarios" sheet.
func XLSX(rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Crediarios"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for c, v := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for i, r := range rows {
		created, last := dates(r)
		values := []any{r.ID, r.CustomerName, domain.RoundCents(r.Balance), r.Status, created, len(r.History), last}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, i+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	widths := map[string]float64{"A": 24, "B": 30, "C": 14, "D": 12, "E": 14, "F": 12, "G": 20}
	for col, wd := range widths {
		_ = f.SetColWidth(sheet, col, col, wd)
	}
	money, _ := f.NewStyle(&excelize.Style{NumFmt: 4})
	if len(rows) > 0 {
		_ = f.SetCellStyle(sheet, "C2", "C"+strconv.Itoa(len(rows)+1), money)
	}
	header, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
	})
	_ = f.SetCellStyle(sheet, "A1", "G1", header)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
