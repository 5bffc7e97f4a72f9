package cli

import (
	"github.com/spf13/cobra"

	"github.com/oggyno/kasir-restoran/internal/control"
	"github.com/oggyno/kasir-restoran/internal/core/domain"
	"github.com/oggyno/kasir-restoran/internal/report"
)

var recapDate string

var recapCmd = &cobra.Command{
	Use:   "recap",
	Short: "Show income, expenses and the net balance of a day",
	Run:   runRecap,
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "List the configured menu",
	Run:   runMenu,
}

func init() {
	recapCmd.Flags().StringVar(&recapDate, "date", "", "date as DD/MM/YYYY (default today)")

	rootCmd.AddCommand(recapCmd)
	rootCmd.AddCommand(menuCmd)
}

func runRecap(cmd *cobra.Command, args []string) {
	err := withApp(func(app *control.App) error {
		date := recapDate
		if date == "" {
			date = app.Now().Format(domain.DateLayout)
		}

		ctx, cancel := signalContext()
		defer cancel()

		summary, err := app.Client().FetchDaily(ctx, date)
		if err != nil {
			return err
		}
		return report.WriteRecap(cmd.OutOrStdout(), summary)
	})
	if err != nil {
		fail("Failed to load recap", err)
	}
}

func runMenu(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	if err := report.WriteMenu(cmd.OutOrStdout(), cfg.Menu); err != nil {
		fail("Failed to print menu", err)
	}
}
