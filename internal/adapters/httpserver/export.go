package httpserver

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vendafacil/vendafacil/internal/domain"
	"github.com/vendafacil/vendafacil/internal/usecase"
)

var (
	brPrinter = message.NewPrinter(language.BrazilianPortuguese)
	brTitle   = cases.Title(language.BrazilianPortuguese)
)

// brNumber formata com separadores pt-BR, duas casas.
func brNumber(d decimal.Decimal) string {
	return brPrinter.Sprintf("%.2f", d.InexactFloat64())
}

func brl(d decimal.Decimal) string {
	return "R$ " + brNumber(d)
}

var statusLabels = map[domain.SaleStatus]string{
	domain.SaleStatusPending:   "pendente",
	domain.SaleStatusPaid:      "paga",
	domain.SaleStatusCancelled: "cancelada",
}

func statusLabel(s domain.SaleStatus) string {
	if l, ok := statusLabels[s]; ok {
		return brTitle.String(l)
	}
	return string(s)
}

var salesHeader = []string{"ID", "Data", "Cliente", "Itens", "Total", "Desconto", "Valor Final", "Status"}

func customerName(s domain.Sale) string {
	if s.Customer != nil {
		return s.Customer.Name
	}
	return ""
}

func itemCount(s domain.Sale) int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// writeSalesCSV usa ';' e vírgula decimal, formato que planilhas em pt-BR abrem direto.
func writeSalesCSV(w io.Writer, r *usecase.SalesReport) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(salesHeader); err != nil {
		return err
	}
	for _, s := range r.Sales {
		row := []string{
			fmt.Sprint(s.ID),
			s.SaleDate.Format("02/01/2006"),
			customerName(s),
			fmt.Sprint(itemCount(s)),
			brNumber(s.Total),
			brNumber(s.Discount),
			brNumber(s.FinalValue),
			statusLabel(s.Status),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeSalesXLSX(w io.Writer, r *usecase.SalesReport) error {
	f := excelize.NewFile()
	defer f.Close()

	const sales, summary = "Vendas", "Resumo"
	if err := f.SetSheetName("Sheet1", sales); err != nil {
		return err
	}
	if _, err := f.NewSheet(summary); err != nil {
		return err
	}
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(`"R$" #,##0.00`)})
	if err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	for i, h := range salesHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sales, cell, h); err != nil {
			return err
		}
	}
	_ = f.SetCellStyle(sales, "A1", "H1", bold)
	for i, s := range r.Sales {
		row := i + 2
		values := []any{
			s.ID,
			s.SaleDate.Format("2006-01-02"),
			customerName(s),
			itemCount(s),
			s.Total.InexactFloat64(),
			s.Discount.InexactFloat64(),
			s.FinalValue.InexactFloat64(),
			statusLabel(s.Status),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sales, cell, &values); err != nil {
			return err
		}
	}
	if n := len(r.Sales); n > 0 {
		_ = f.SetCellStyle(sales, "E2", fmt.Sprintf("G%d", n+1), money)
	}

	lines := [][]any{
		{"Período", r.Period.Start.Format("02/01/2006") + " a " + r.Period.End.Format("02/01/2006")},
		{"Vendas", r.Count},
		{"Total", r.Total.InexactFloat64()},
		{"Ticket médio", r.AverageTicket.InexactFloat64()},
		{},
		{"Período (" + string(r.GroupBy) + ")", "Vendas", "Total"},
	}
	for _, p := range r.Series {
		lines = append(lines, []any{p.Period, p.Count, p.Total.InexactFloat64()})
	}
	for i, line := range lines {
		if len(line) == 0 {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summary, cell, &line); err != nil {
			return err
		}
	}
	_ = f.SetCellStyle(summary, "B3", "B4", money)
	_ = f.SetCellStyle(summary, "A6", "C6", bold)
	if len(r.Series) > 0 {
		_ = f.SetCellStyle(summary, "C7", fmt.Sprintf("C%d", len(lines)), money)
	}
	return f.Write(w)
}

func strPtr(s string) *string { return &s }

func exportFilename(r *usecase.SalesReport, ext string) string {
	name := fmt.Sprintf("vendas_%s_%s.%s", r.Period.Start.Format("20060102"), r.Period.End.Format("20060102"), ext)
	return strings.ReplaceAll(name, " ", "_")
}
