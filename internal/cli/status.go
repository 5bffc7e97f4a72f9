package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var statusAddr string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the endpoint health reported by a running server",
	Run:   runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusAddr, "addr", "", "server address (default http://localhost:<server.port>)")
	rootCmd.AddCommand(statusCmd)
}

// detailedHealth mirrors the body of GET /health/detailed.
type detailedHealth struct {
	Endpoint string `json:"endpoint"`
	Health   struct {
		Available     bool          `json:"available"`
		Latency       time.Duration `json:"latency"`
		ErrorRate     float64       `json:"error_rate"`
		LastSuccessAt time.Time     `json:"last_success_at"`
		LastFailureAt time.Time     `json:"last_failure_at"`
		MonitorStats  *struct {
			Status              string  `json:"status"`
			ConsecutiveFailures int     `json:"consecutive_failures"`
			Timeouts            int     `json:"timeouts"`
			NetworkErrors       int     `json:"network_errors"`
			StatusErrors        int     `json:"status_errors"`
			RequestsLast24Hours int     `json:"requests_last_24h"`
			DailyLimit          int     `json:"daily_limit"`
			UsagePercentage     float64 `json:"usage_percentage"`
		} `json:"monitor_stats"`
	} `json:"health"`
}

func runStatus(cmd *cobra.Command, args []string) {
	addr := statusAddr
	if addr == "" {
		cfg := loadConfig()
		addr = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	h, err := fetchStatus(ctx, http.DefaultClient, addr)
	if err != nil {
		fail("Failed to query server", err)
	}
	if err := writeStatus(cmd.OutOrStdout(), h); err != nil {
		fail("Failed to print status", err)
	}
}

func fetchStatus(ctx context.Context, hc *http.Client, addr string) (detailedHealth, error) {
	var h detailedHealth

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr+"/health/detailed", nil)
	if err != nil {
		return h, err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return h, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return h, fmt.Errorf("server returned %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return h, fmt.Errorf("decode status: %w", err)
	}
	return h, nil
}

func writeStatus(out io.Writer, h detailedHealth) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "ENDPOINT\tSTATUS\tLATENCY\tERROR RATE\tFAILURES\tREQ 24H\tUSAGE")

	status, failures, req24h, usage := "healthy", 0, 0, 0.0
	if s := h.Health.MonitorStats; s != nil {
		status, failures, req24h, usage = s.Status, s.ConsecutiveFailures, s.RequestsLast24Hours, s.UsagePercentage
	}
	if !h.Health.Available && status == "healthy" {
		status = "unavailable"
	}

	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%.1f%%\t%d\t%d\t%.1f%%\n",
		h.Endpoint, status, h.Health.Latency.Round(time.Millisecond),
		h.Health.ErrorRate*100, failures, req24h, usage)
	return w.Flush()
}
