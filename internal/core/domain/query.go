package domain

import (
	"fmt"
	"time"
)

// Query selects the rows of one kind for one calendar date.
// It is comparable and used directly as a cache key.
type Query struct {
	Kind Kind   `json:"type"`
	Date string `json:"tanggal"`
}

// NewQuery validates kind and date.
func NewQuery(kind Kind, date string) (Query, error) {
	if !kind.Valid() {
		return Query{}, fmt.Errorf("unknown kind %q", kind)
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return Query{}, &ValidationError{Field: "tanggal", Reason: "date must be DD/MM/YYYY"}
	}
	return Query{Kind: kind, Date: date}, nil
}

func (q Query) String() string {
	return string(q.Kind) + "@" + q.Date
}

// Fields returns the read parameters understood by the endpoint.
func (q Query) Fields() map[string]any {
	return map[string]any{
		"action":  "fetch",
		"type":    string(q.Kind),
		"tanggal": q.Date,
	}
}

// Row is one sheet row as returned by the endpoint. Positions are endpoint
// defined: income rows are jam, tanggal, nama, harga, qty, total, metode;
// expense rows are jam, tanggal, harga, keterangan.
type Row []any
