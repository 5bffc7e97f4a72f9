package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/oggyno/kasir-restoran/internal/core/domain"
)

var testMenu = domain.Menu{
	{Name: "Nasi Goreng", Price: 15000},
	{Name: "Es Teh", Price: 5000},
}

func TestBuildIncome(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 5, 0, 0, time.UTC)

	tests := []struct {
		name      string
		item      string
		price     int64
		qty       int64
		method    string
		wantName  string
		wantTotal int64
		wantField string
	}{
		{name: "menu item", item: "nasi goreng", price: -1, qty: 2, method: "Tunai", wantName: "Nasi Goreng", wantTotal: 30000},
		{name: "name and price value", item: "Kopi|8000", price: -1, qty: 1, method: "QRIS", wantName: "Kopi", wantTotal: 8000},
		{name: "explicit price", item: "Kerupuk", price: 2000, qty: 3, method: "Tunai", wantName: "Kerupuk", wantTotal: 6000},
		{name: "explicit free item", item: "Air Putih", price: 0, qty: 1, method: "Tunai", wantName: "Air Putih", wantTotal: 0},
		{name: "unknown item", item: "Sate", price: -1, qty: 1, method: "Tunai", wantField: "nama"},
		{name: "zero quantity", item: "Es Teh", price: -1, qty: 0, method: "Tunai", wantField: "qty"},
		{name: "missing method", item: "Es Teh", price: -1, qty: 1, method: " ", wantField: "metode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := buildIncome(testMenu, now, tt.item, tt.price, tt.qty, tt.method)
			if tt.wantField != "" {
				var ve *domain.ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				if ve.Field != tt.wantField {
					t.Errorf("expected field %q, got %q", tt.wantField, ve.Field)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.ItemName != tt.wantName {
				t.Errorf("expected name %q, got %q", tt.wantName, rec.ItemName)
			}
			if rec.Total() != tt.wantTotal {
				t.Errorf("expected total %d, got %d", tt.wantTotal, rec.Total())
			}
			if rec.Date != "14/03/2026" || rec.Time != "09:05" {
				t.Errorf("unexpected stamp %s %s", rec.Date, rec.Time)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "50000", want: 50000},
		{in: "50.000", want: 50000},
		{in: "Rp1.250.000", want: 1250000},
		{in: "0", want: 0},
		{in: "lima", wantErr: true},
		{in: "12,5", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseAmount(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseAmount(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseAmount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFetchStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health/detailed" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{
			"endpoint": "sheet",
			"health": {
				"available": true,
				"latency": 120000000,
				"error_rate": 0.25,
				"monitor_stats": {"status": "degraded", "consecutive_failures": 2, "requests_last_24h": 40, "usage_percentage": 0.2}
			}
		}`))
	}))
	defer srv.Close()

	h, err := fetchStatus(context.Background(), srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("fetchStatus failed: %v", err)
	}
	if h.Endpoint != "sheet" || h.Health.MonitorStats == nil || h.Health.MonitorStats.Status != "degraded" {
		t.Fatalf("unexpected status %+v", h)
	}

	var buf bytes.Buffer
	if err := writeStatus(&buf, h); err != nil {
		t.Fatalf("writeStatus failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"sheet", "degraded", "120ms", "25.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestFetchStatus_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := fetchStatus(context.Background(), srv.Client(), srv.URL); err == nil {
		t.Error("expected error for 500 response")
	}
}

type countingCloser struct{ closed int }

func (c *countingCloser) Close() error {
	c.closed++
	return nil
}

func TestCloseAfter(t *testing.T) {
	saveErr := errors.New("http 400")

	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{name: "command succeeds", err: nil},
		{name: "command fails", err: saveErr, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &countingCloser{}
			err := closeAfter(c, func() error {
				if c.closed != 0 {
					t.Error("closed before the command ran")
				}
				return tt.err
			})
			if (err != nil) != tt.wantErr || (tt.wantErr && !errors.Is(err, saveErr)) {
				t.Errorf("unexpected error %v", err)
			}
			if c.closed != 1 {
				t.Errorf("expected Close once before returning, got %d", c.closed)
			}
		})
	}
}
