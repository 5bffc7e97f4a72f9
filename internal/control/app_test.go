package control

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/oggyno/kasir-restoran/internal/core/config"
	"github.com/oggyno/kasir-restoran/internal/core/domain"
	"github.com/oggyno/kasir-restoran/internal/infra/rpc/cache"
)

func testConfig(t *testing.T, endpoint string) *config.AppConfig {
	t.Helper()
	cfg, err := config.Parse([]byte(`
endpoint:
  url: "` + endpoint + `"
  daily_limit: 500
retry:
  base_delay: 1ms
location: UTC
menu:
  - name: Es Teh
    price: 5000
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	cfg.Server.Port = 0 // any free port
	return cfg
}

func TestApp_Lifecycle(t *testing.T) {
	var rows [][]any
	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.Form.Get("action") == "save" {
			rows = append(rows, []any{r.Form.Get("jam"), r.Form.Get("tanggal"), r.Form.Get("harga"), r.Form.Get("keterangan")})
			return
		}
		_ = json.NewEncoder(w).Encode(rows)
	}))
	defer endpoint.Close()

	app, err := NewApp(testConfig(t, endpoint.URL))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	if _, ok := app.Menu().Lookup("es teh"); !ok {
		t.Error("expected configured menu")
	}
	if got := app.provider.Monitor.GetStats().DailyLimit; got != 500 {
		t.Errorf("expected daily limit 500, got %d", got)
	}
	if app.Now().Location() != time.UTC {
		t.Errorf("expected UTC clock, got %v", app.Now().Location())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	rec := domain.NewExpense(app.Now(), 50000, "Lunch")
	if _, err := app.Client().Save(ctx, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := app.Client().Fetch(ctx, domain.Query{Kind: domain.KindExpense, Date: rec.Date})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 row, got %d", len(got))
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestApp_RedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Cache.Backend = "redis"
	cfg.Redis.URL = "redis://" + mr.Addr()

	app, err := NewApp(cfg)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	defer app.Close()

	if app.redisClient == nil {
		t.Fatal("expected redis client")
	}
	if _, ok := app.store.(*cache.RedisCache); !ok {
		t.Errorf("expected redis cache, got %T", app.store)
	}
	if got := backendName(app.store); got != "redis" {
		t.Errorf("expected backend redis, got %s", got)
	}
}

func TestApp_RedisUnavailableFallsBack(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Cache.Backend = "redis"
	cfg.Redis.URL = "redis://127.0.0.1:1"

	app, err := NewApp(cfg)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	defer app.Close()

	if _, ok := app.store.(*cache.MemoryCache); !ok {
		t.Errorf("expected memory cache fallback, got %T", app.store)
	}
	if got := backendName(app.store); got != "memory" {
		t.Errorf("expected backend memory, got %s", got)
	}
}

func TestNewApp_InvalidEndpoint(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Endpoint.URL = "ftp://example.com"

	if _, err := NewApp(cfg); err == nil {
		t.Error("expected error for non-http endpoint")
	}
}
