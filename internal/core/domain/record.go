package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// Kind selects the sheet a record belongs to. Values are the endpoint's sheet names.
type Kind string

const (
	KindIncome  Kind = "pemasukan"
	KindExpense Kind = "pengeluaran"
)

// Wire layouts used by the endpoint for the jam/tanggal columns.
const (
	TimeLayout = "15:04"
	DateLayout = "02/01/2006"
)

const (
	minNoteLen = 3
	maxNoteLen = 200
)

// ParseKind accepts the wire value or the english name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(KindIncome), "income":
		return KindIncome, nil
	case string(KindExpense), "expense":
		return KindExpense, nil
	}
	return "", fmt.Errorf("unknown kind %q", s)
}

func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Record is a transaction ready to be sent to the endpoint.
// Implemented by Income and Expense only.
type Record interface {
	Kind() Kind
	Validate() error
	// Fields returns the flat wire mapping of the record.
	Fields() map[string]any
}

// Income is a sale of a menu item.
type Income struct {
	Time          string `json:"jam"`
	Date          string `json:"tanggal"`
	ItemName      string `json:"nama"`
	UnitPrice     int64  `json:"harga"`
	Quantity      int64  `json:"qty"`
	PaymentMethod string `json:"metode"`
}

// NewIncome stamps an income record with the time and date of now.
func NewIncome(now time.Time, item string, unitPrice, qty int64, method string) Income {
	return Income{
		Time:          now.Format(TimeLayout),
		Date:          now.Format(DateLayout),
		ItemName:      strings.TrimSpace(item),
		UnitPrice:     unitPrice,
		Quantity:      qty,
		PaymentMethod: strings.TrimSpace(method),
	}
}

func (Income) Kind() Kind { return KindIncome }

// Total is always derived, never stored.
func (r Income) Total() int64 {
	return r.UnitPrice * r.Quantity
}

func (r Income) Validate() error {
	if err := validateStamp(r.Time, r.Date); err != nil {
		return err
	}
	if r.ItemName == "" {
		return &ValidationError{Field: "nama", Reason: "item must be selected"}
	}
	if r.UnitPrice < 0 {
		return &ValidationError{Field: "harga", Reason: "price must not be negative"}
	}
	if r.Quantity < 1 {
		return &ValidationError{Field: "qty", Reason: "quantity must be at least 1"}
	}
	if r.UnitPrice > math.MaxInt64/r.Quantity {
		return &ValidationError{Field: "total", Reason: "price times quantity is too large"}
	}
	if r.PaymentMethod == "" {
		return &ValidationError{Field: "metode", Reason: "payment method is required"}
	}
	return nil
}

func (r Income) Fields() map[string]any {
	return map[string]any{
		"action":  "save",
		"type":    string(KindIncome),
		"jam":     r.Time,
		"tanggal": r.Date,
		"nama":    r.ItemName,
		"harga":   r.UnitPrice,
		"qty":     r.Quantity,
		"total":   r.Total(),
		"metode":  r.PaymentMethod,
	}
}

// Expense is money paid out of the till.
type Expense struct {
	Time   string `json:"jam"`
	Date   string `json:"tanggal"`
	Amount int64  `json:"harga"`
	Note   string `json:"keterangan"`
}

// NewExpense stamps an expense record with the time and date of now.
func NewExpense(now time.Time, amount int64, note string) Expense {
	return Expense{
		Time:   now.Format(TimeLayout),
		Date:   now.Format(DateLayout),
		Amount: amount,
		Note:   strings.TrimSpace(note),
	}
}

func (Expense) Kind() Kind { return KindExpense }

func (r Expense) Validate() error {
	if err := validateStamp(r.Time, r.Date); err != nil {
		return err
	}
	if r.Amount < 0 {
		return &ValidationError{Field: "harga", Reason: "amount must not be negative"}
	}
	n := utf8.RuneCountInString(strings.TrimSpace(r.Note))
	if n < minNoteLen || n > maxNoteLen {
		return &ValidationError{
			Field:  "keterangan",
			Reason: fmt.Sprintf("note must be %d-%d characters", minNoteLen, maxNoteLen),
		}
	}
	return nil
}

func (r Expense) Fields() map[string]any {
	return map[string]any{
		"action":     "save",
		"type":       string(KindExpense),
		"jam":        r.Time,
		"tanggal":    r.Date,
		"harga":      r.Amount,
		"keterangan": strings.TrimSpace(r.Note),
	}
}

func validateStamp(clock, date string) error {
	if _, err := time.Parse(TimeLayout, clock); err != nil {
		return &ValidationError{Field: "jam", Reason: "time must be HH:MM"}
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return &ValidationError{Field: "tanggal", Reason: "date must be DD/MM/YYYY"}
	}
	return nil
}
