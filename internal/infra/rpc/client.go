package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/oggyno/kasir-restoran/internal/core/domain"
	"github.com/oggyno/kasir-restoran/internal/infra/rpc/cache"
	"github.com/oggyno/kasir-restoran/internal/infra/rpc/provider"
	"github.com/oggyno/kasir-restoran/internal/infra/rpc/retry"
	"github.com/oggyno/kasir-restoran/internal/metrics"
)

// RequestIDHeader carries the id shared by every attempt of one operation.
const RequestIDHeader = "X-Request-ID"

// Config defines the retry budget of the client.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultConfig provides sensible defaults.
var DefaultConfig = Config{
	MaxAttempts: 3,
	BaseDelay:   1 * time.Second,
}

// Acknowledgement confirms that the endpoint accepted a write.
type Acknowledgement struct {
	RequestID  string `json:"request_id"`
	StatusCode int    `json:"status_code"`
	Attempts   int    `json:"attempts"`
}

// Client is the high-level interface for saving and reading records.
// This is what the CLI and HTTP layers should use.
type Client struct {
	exec   provider.Executor
	writer provider.Transport
	reader provider.Transport
	store  cache.Store
	config Config

	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a client that writes through writer and reads with
// query-string GETs, caching reads in store.
func NewClient(exec provider.Executor, writer provider.Transport, store cache.Store, cfg Config) *Client {
	if writer == nil {
		writer = provider.FormTransport{}
	}
	return &Client{
		exec:   exec,
		writer: writer,
		reader: provider.QueryTransport{},
		store:  store,
		config: cfg,
	}
}

func (c *Client) policy(op string) retry.Policy {
	return retry.Policy{
		Op:          op,
		MaxAttempts: c.config.MaxAttempts,
		BaseDelay:   c.config.BaseDelay,
		MaxDelay:    c.config.MaxDelay,
		Sleep:       c.sleep,
	}
}

// Save validates rec and sends it to the endpoint with retries. On success
// every cached read of the record's kind is dropped.
func (c *Client) Save(ctx context.Context, rec domain.Record) (Acknowledgement, error) {
	kind := string(rec.Kind())

	if err := rec.Validate(); err != nil {
		metrics.SyncOperations.WithLabelValues("save", kind, "invalid").Inc()
		return Acknowledgement{}, err
	}

	req, err := c.writer.Encode(rec.Fields())
	if err != nil {
		return Acknowledgement{}, fmt.Errorf("encode record: %w", err)
	}

	ack := Acknowledgement{RequestID: uuid.NewString()}
	req.Header = http.Header{}
	req.Header.Set(RequestIDHeader, ack.RequestID)

	resp, err := retry.WithRetry(ctx, c.policy("save"), func(ctx context.Context) (*provider.Response, error) {
		ack.Attempts++
		return c.exec.Execute(ctx, req)
	})
	metrics.SyncAttempts.WithLabelValues("save").Observe(float64(ack.Attempts))
	if err != nil {
		metrics.SyncOperations.WithLabelValues("save", kind, "failure").Inc()
		slog.Error("Save failed",
			"kind", kind,
			"request_id", ack.RequestID,
			"attempts", ack.Attempts,
			"error", err,
		)
		return ack, err
	}
	ack.StatusCode = resp.StatusCode

	// The write went through even if the caller has gone away meanwhile
	if err := c.store.Invalidate(context.WithoutCancel(ctx), rec.Kind()); err != nil {
		slog.Warn("Cache invalidation failed", "kind", kind, "error", err)
	}
	metrics.CacheInvalidations.WithLabelValues(kind).Inc()
	metrics.SyncOperations.WithLabelValues("save", kind, "success").Inc()

	slog.Info("Record saved",
		"kind", kind,
		"request_id", ack.RequestID,
		"status", resp.StatusCode,
		"attempts", ack.Attempts,
		"latency", resp.Latency,
	)
	return ack, nil
}

// Fetch returns the rows for q, from the cache when a fresh entry exists.
// Failed reads are never cached.
func (c *Client) Fetch(ctx context.Context, q domain.Query) ([]domain.Row, error) {
	if _, err := domain.NewQuery(q.Kind, q.Date); err != nil {
		return nil, err
	}
	kind := string(q.Kind)

	if rows, ok := c.store.Get(ctx, q); ok {
		metrics.CacheLookups.WithLabelValues(kind, "hit").Inc()
		slog.Debug("Cache hit", "query", q.String(), "rows", len(rows))
		return rows, nil
	}
	metrics.CacheLookups.WithLabelValues(kind, "miss").Inc()

	req, err := c.reader.Encode(q.Fields())
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	requestID := uuid.NewString()
	req.Header = http.Header{}
	req.Header.Set(RequestIDHeader, requestID)

	attempts := 0
	rows, err := retry.WithRetry(ctx, c.policy("fetch"), func(ctx context.Context) ([]domain.Row, error) {
		attempts++
		resp, err := c.exec.Execute(ctx, req)
		if err != nil {
			return nil, err
		}
		return decodeRows(resp.Body)
	})
	metrics.SyncAttempts.WithLabelValues("fetch").Observe(float64(attempts))
	if err != nil {
		metrics.SyncOperations.WithLabelValues("fetch", kind, "failure").Inc()
		slog.Error("Fetch failed",
			"query", q.String(),
			"request_id", requestID,
			"attempts", attempts,
			"error", err,
		)
		return nil, err
	}

	if err := c.store.Put(ctx, q, rows); err != nil {
		slog.Warn("Cache write failed", "query", q.String(), "error", err)
	}
	metrics.SyncOperations.WithLabelValues("fetch", kind, "success").Inc()
	slog.Debug("Fetched rows", "query", q.String(), "rows", len(rows), "attempts", attempts)

	return rows, nil
}

// FetchDaily reads both kinds for date concurrently and summarises them. The
// two fetches are independent: one failing does not cancel the other, so a
// successful read still lands in the cache.
func (c *Client) FetchDaily(ctx context.Context, date string) (domain.DailySummary, error) {
	incomeQuery, err := domain.NewQuery(domain.KindIncome, date)
	if err != nil {
		return domain.DailySummary{}, err
	}
	expenseQuery, err := domain.NewQuery(domain.KindExpense, date)
	if err != nil {
		return domain.DailySummary{}, err
	}

	var income, expense []domain.Row
	var g errgroup.Group
	g.Go(func() error {
		rows, err := c.Fetch(ctx, incomeQuery)
		if err != nil {
			return fmt.Errorf("fetch income: %w", err)
		}
		income = rows
		return nil
	})
	g.Go(func() error {
		rows, err := c.Fetch(ctx, expenseQuery)
		if err != nil {
			return fmt.Errorf("fetch expense: %w", err)
		}
		expense = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.DailySummary{}, err
	}

	return domain.Summarize(date, income, expense), nil
}

// decodeRows parses the endpoint's array of row arrays. Numbers stay
// json.Number so rows round-trip unchanged. An empty body means no rows.
func decodeRows(body []byte) ([]domain.Row, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []domain.Row{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var rows []domain.Row
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	if rows == nil {
		rows = []domain.Row{}
	}
	return rows, nil
}
