package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/oggyno/kasir-restoran/internal/control"
	"github.com/oggyno/kasir-restoran/internal/core/domain"
	"github.com/oggyno/kasir-restoran/internal/infra/rpc"
	"github.com/oggyno/kasir-restoran/internal/report"
)

var (
	incomeQty    int64
	incomePrice  int64
	incomeMethod string
)

var incomeCmd = &cobra.Command{
	Use:   "income <item>",
	Short: "Record a sale",
	Long: `Record a sale of a menu item. The item is a configured menu name or a
"name|price" value; --price records an item that is not on the menu.`,
	Example: `  kasir income "Nasi Goreng" --qty 2 --method Tunai
  kasir income "Kopi|8000" --method QRIS`,
	Args: cobra.ExactArgs(1),
	Run:  runIncome,
}

var expenseCmd = &cobra.Command{
	Use:     "expense <amount> <note...>",
	Short:   "Record money paid out of the till",
	Example: `  kasir expense 50000 Belanja sayur`,
	Args:    cobra.MinimumNArgs(2),
	Run:     runExpense,
}

func init() {
	incomeCmd.Flags().Int64Var(&incomeQty, "qty", 1, "quantity sold")
	incomeCmd.Flags().Int64Var(&incomePrice, "price", -1, "unit price for items not on the menu")
	incomeCmd.Flags().StringVar(&incomeMethod, "method", "Tunai", "payment method")

	rootCmd.AddCommand(incomeCmd)
	rootCmd.AddCommand(expenseCmd)
}

func runIncome(cmd *cobra.Command, args []string) {
	err := withApp(func(app *control.App) error {
		rec, err := buildIncome(app.Menu(), app.Now(), args[0], incomePrice, incomeQty, incomeMethod)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		ack, err := app.Client().Save(ctx, rec)
		if err != nil {
			return err
		}
		printSaved(cmd.OutOrStdout(), ack,
			fmt.Sprintf("%s x%d = %s (%s)", rec.ItemName, rec.Quantity, report.RupiahInt(rec.Total()), rec.PaymentMethod))
		return nil
	})
	if err != nil {
		fail("Failed to save income", err)
	}
}

func runExpense(cmd *cobra.Command, args []string) {
	amount, err := parseAmount(args[0])
	if err != nil {
		fail("Invalid amount", err)
	}

	err = withApp(func(app *control.App) error {
		rec := domain.NewExpense(app.Now(), amount, strings.Join(args[1:], " "))

		ctx, cancel := signalContext()
		defer cancel()

		ack, err := app.Client().Save(ctx, rec)
		if err != nil {
			return err
		}
		printSaved(cmd.OutOrStdout(), ack, fmt.Sprintf("%s %s", report.RupiahInt(rec.Amount), rec.Note))
		return nil
	})
	if err != nil {
		fail("Failed to save expense", err)
	}
}

// buildIncome resolves item against the menu unless price is given.
func buildIncome(menu domain.Menu, now time.Time, item string, price, qty int64, method string) (domain.Income, error) {
	it := domain.MenuItem{Name: item, Price: price}
	if price < 0 {
		resolved, err := menu.Resolve(item)
		if err != nil {
			return domain.Income{}, err
		}
		it = resolved
	}

	rec := domain.NewIncome(now, it.Name, it.Price, qty, method)
	if err := rec.Validate(); err != nil {
		return domain.Income{}, err
	}
	return rec, nil
}

// parseAmount accepts plain digits with optional thousands dots, e.g. 50.000.
func parseAmount(s string) (int64, error) {
	clean := strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(s), "Rp"), ".", "")
	n, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("amount %q is not a whole number", s)
	}
	return n, nil
}

func printSaved(w io.Writer, ack rpc.Acknowledgement, what string) {
	_, _ = fmt.Fprintf(w, "Tersimpan: %s [id %s, %d percobaan]\n", what, ack.RequestID, ack.Attempts)
}
