package domain

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Row positions holding the money columns summed by the recap.
const (
	IncomeTotalColumn   = 5
	ExpenseAmountColumn = 2
)

// DailySummary is the recap of one day: both row sets plus their totals.
type DailySummary struct {
	Date         string          `json:"tanggal"`
	IncomeRows   []Row           `json:"pemasukan"`
	ExpenseRows  []Row           `json:"pengeluaran"`
	TotalIncome  decimal.Decimal `json:"total_pemasukan"`
	TotalExpense decimal.Decimal `json:"total_pengeluaran"`
	Net          decimal.Decimal `json:"saldo_bersih"`
}

// Summarize builds the recap. Cells that are missing or not numeric count as zero.
func Summarize(date string, income, expense []Row) DailySummary {
	in := sumColumn(income, IncomeTotalColumn)
	out := sumColumn(expense, ExpenseAmountColumn)
	return DailySummary{
		Date:         date,
		IncomeRows:   income,
		ExpenseRows:  expense,
		TotalIncome:  in,
		TotalExpense: out,
		Net:          in.Sub(out),
	}
}

func sumColumn(rows []Row, col int) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		if col < len(r) {
			total = total.Add(CellDecimal(r[col]))
		}
	}
	return total
}

// CellDecimal converts a row cell to a number the way the sheet UI does.
func CellDecimal(v any) decimal.Decimal {
	switch x := v.(type) {
	case json.Number:
		return parseDecimal(x.String())
	case string:
		return parseDecimal(x)
	case float64:
		return decimal.NewFromFloat(x)
	case int:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	}
	return decimal.Zero
}

func parseDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
