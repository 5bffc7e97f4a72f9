// Package report renders recaps and the menu as plain-text tables.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/oggyno/kasir-restoran/internal/core/domain"
)

const emptyTable = "Belum ada data"

var printer = message.NewPrinter(language.Indonesian)

// Rupiah formats an amount with Indonesian digit grouping, e.g. Rp50.000.
// Fractions are rounded to whole rupiah.
func Rupiah(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	return sign + printer.Sprintf("Rp%d", d.Round(0).IntPart())
}

// RupiahInt formats a whole amount.
func RupiahInt(n int64) string {
	return Rupiah(decimal.NewFromInt(n))
}

func cell(row domain.Row, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	return fmt.Sprint(row[i])
}

func money(row domain.Row, i int) string {
	if i >= len(row) {
		return Rupiah(decimal.Zero)
	}
	return Rupiah(domain.CellDecimal(row[i]))
}

// WriteRecap writes the income table, the expense table and the totals.
func WriteRecap(out io.Writer, s domain.DailySummary) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(w, "REKAP %s\n\n", s.Date)

	_, _ = fmt.Fprintln(w, "PEMASUKAN")
	_, _ = fmt.Fprintln(w, "JAM\tTANGGAL\tNAMA\tHARGA\tQTY\tTOTAL\tMETODE")
	if len(s.IncomeRows) == 0 {
		_, _ = fmt.Fprintln(w, emptyTable)
	}
	for _, r := range s.IncomeRows {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			cell(r, 0), cell(r, 1), cell(r, 2), money(r, 3), cell(r, 4),
			money(r, domain.IncomeTotalColumn), cell(r, 6))
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "PENGELUARAN")
	_, _ = fmt.Fprintln(w, "JAM\tTANGGAL\tHARGA\tKETERANGAN")
	if len(s.ExpenseRows) == 0 {
		_, _ = fmt.Fprintln(w, emptyTable)
	}
	for _, r := range s.ExpenseRows {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			cell(r, 0), cell(r, 1), money(r, domain.ExpenseAmountColumn), cell(r, 3))
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Total Pemasukan\t%s\n", Rupiah(s.TotalIncome))
	_, _ = fmt.Fprintf(w, "Total Pengeluaran\t%s\n", Rupiah(s.TotalExpense))
	_, _ = fmt.Fprintf(w, "Saldo Bersih\t%s\n", Rupiah(s.Net))

	return w.Flush()
}

// WriteMenu lists the configured menu with prices.
func WriteMenu(out io.Writer, menu domain.Menu) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAMA\tHARGA")
	if len(menu) == 0 {
		_, _ = fmt.Fprintln(w, emptyTable)
	}
	for _, item := range menu {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", item.Name, RupiahInt(item.Price))
	}
	return w.Flush()
}
