package domain

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

var testNow = time.Date(2025, time.January, 1, 8, 5, 0, 0, time.UTC)

func TestNewIncome_StampsAndTotal(t *testing.T) {
	r := NewIncome(testNow, " Nasi Goreng ", 15000, 3, "Tunai")

	if r.Time != "08:05" || r.Date != "01/01/2025" {
		t.Fatalf("unexpected stamp %s %s", r.Time, r.Date)
	}
	if r.Total() != 45000 {
		t.Errorf("expected total 45000, got %d", r.Total())
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("expected valid record, got %v", err)
	}

	f := r.Fields()
	want := map[string]any{
		"action": "save", "type": "pemasukan", "jam": "08:05", "tanggal": "01/01/2025",
		"nama": "Nasi Goreng", "harga": int64(15000), "qty": int64(3), "total": int64(45000),
		"metode": "Tunai",
	}
	for k, v := range want {
		if f[k] != v {
			t.Errorf("field %s: expected %v, got %v", k, v, f[k])
		}
	}
	if len(f) != len(want) {
		t.Errorf("expected %d fields, got %d", len(want), len(f))
	}
}

func TestIncome_Validate(t *testing.T) {
	base := NewIncome(testNow, "Es Teh", 5000, 1, "QRIS")

	tests := []struct {
		name  string
		mut   func(r *Income)
		field string
	}{
		{"zero quantity", func(r *Income) { r.Quantity = 0 }, "qty"},
		{"negative price", func(r *Income) { r.UnitPrice = -1 }, "harga"},
		{"no item", func(r *Income) { r.ItemName = "" }, "nama"},
		{"no method", func(r *Income) { r.PaymentMethod = "" }, "metode"},
		{"bad time", func(r *Income) { r.Time = "8am" }, "jam"},
		{"bad date", func(r *Income) { r.Date = "2025-01-01" }, "tanggal"},
		{"total overflows", func(r *Income) { r.UnitPrice, r.Quantity = math.MaxInt64/2+1, 2 }, "total"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			tt.mut(&r)
			err := r.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, verr.Field)
			}
		})
	}

	free := base
	free.UnitPrice = 0
	if err := free.Validate(); err != nil {
		t.Errorf("zero price should be allowed, got %v", err)
	}

	largest := base
	largest.UnitPrice, largest.Quantity = math.MaxInt64/3, 3
	if err := largest.Validate(); err != nil {
		t.Errorf("total at the int64 limit should be allowed, got %v", err)
	}
}

func TestExpense_Validate(t *testing.T) {
	tests := []struct {
		name    string
		amount  int64
		note    string
		wantErr bool
	}{
		{"ok", 50000, "Lunch", false},
		{"zero amount", 0, "Gas refill", false},
		{"negative", -1, "Gas refill", true},
		{"short note", 1000, "ab", true},
		{"short after trim", 1000, "  ab  ", true},
		{"max note", 1000, strings.Repeat("x", 200), false},
		{"long note", 1000, strings.Repeat("x", 201), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewExpense(testNow, tt.amount, tt.note).Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpense_Fields(t *testing.T) {
	f := NewExpense(testNow, 50000, "Lunch").Fields()
	if f["type"] != "pengeluaran" || f["harga"] != int64(50000) || f["keterangan"] != "Lunch" {
		t.Errorf("unexpected fields %v", f)
	}
	if _, ok := f["total"]; ok {
		t.Error("expense must not carry a total")
	}
}

func TestNewQuery(t *testing.T) {
	q, err := NewQuery(KindExpense, "01/01/2025")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Fields()["action"] != "fetch" || q.Fields()["type"] != "pengeluaran" {
		t.Errorf("unexpected fields %v", q.Fields())
	}

	if _, err := NewQuery(KindIncome, "2025/01/01"); err == nil {
		t.Error("expected error for bad date")
	}
	if _, err := NewQuery(Kind("other"), "01/01/2025"); err == nil {
		t.Error("expected error for bad kind")
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"income": KindIncome, "Pemasukan": KindIncome,
		"expense": KindExpense, "pengeluaran": KindExpense,
	} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseKind("refund"); err == nil {
		t.Error("expected error")
	}
}

func TestSummarize(t *testing.T) {
	income := []Row{
		{"08:00", "01/01/2025", "Nasi Goreng", "15000", "2", "30000", "Tunai"},
		{"09:00", "01/01/2025", "Es Teh", json.Number("5000"), json.Number("1"), json.Number("5000"), "QRIS"},
		{"10:00", "01/01/2025", "broken"},
	}
	expense := []Row{
		{"08:00", "01/01/2025", "50000", "Lunch"},
		{"11:00", "01/01/2025", "n/a", "Gas"},
	}

	s := Summarize("01/01/2025", income, expense)

	if s.TotalIncome.String() != "35000" {
		t.Errorf("expected income 35000, got %s", s.TotalIncome)
	}
	if s.TotalExpense.String() != "50000" {
		t.Errorf("expected expense 50000, got %s", s.TotalExpense)
	}
	if s.Net.String() != "-15000" {
		t.Errorf("expected net -15000, got %s", s.Net)
	}
}

func TestParseMenuValue(t *testing.T) {
	it, err := ParseMenuValue("Nasi Goreng|15000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.Name != "Nasi Goreng" || it.Price != 15000 {
		t.Errorf("unexpected item %+v", it)
	}
	if it.String() != "Nasi Goreng|15000" {
		t.Errorf("unexpected string %s", it.String())
	}

	for _, bad := range []string{"Nasi Goreng", "|1000", "Teh|abc", "Teh|-5"} {
		if _, err := ParseMenuValue(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}

	menu := Menu{it, {Name: "Es Teh", Price: 5000}}
	if got, ok := menu.Lookup("es teh"); !ok || got.Price != 5000 {
		t.Errorf("lookup failed: %+v %v", got, ok)
	}
}

func TestMenu_Resolve(t *testing.T) {
	menu := Menu{{Name: "Nasi Goreng", Price: 15000}}

	tests := []struct {
		in      string
		want    MenuItem
		wantErr bool
	}{
		{"nasi goreng", MenuItem{Name: "Nasi Goreng", Price: 15000}, false},
		{"Kopi|8000", MenuItem{Name: "Kopi", Price: 8000}, false},
		{"Kopi", MenuItem{}, true},
	}

	for _, tt := range tests {
		got, err := menu.Resolve(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Resolve(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
