package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Priyanshu525/trading-alert/internal/models"
	"github.com/Priyanshu525/trading-alert/pkg/utils"
)

func newAlertCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alert",
		Short: "Alert management",
		Long:  "Create, cancel and list price alerts.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <symbol> <above|below|touch> <target> [note]",
		Short: "Create a new alert",
		Example: `  alertd alert add EURUSD above 1.10
  alertd alert add XAUUSD touch 2000 "weekly pivot"`,
		Args: cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			target, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("target is not a number: %q", args[2])
			}
			note := ""
			if len(args) > 3 {
				note = args[3]
			}

			id, err := app.Store.Create(ctx, args[0], models.Direction(args[1]), target, note)
			if err != nil {
				return err
			}

			fmt.Printf("Created alert %d: %s %s %s\n", id, models.NormalizeSymbol(args[0]), args[1], utils.FormatPrice(target))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel an active alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid alert id: %q", args[0])
			}

			cancelled, err := app.Store.Cancel(ctx, id)
			if err != nil {
				return err
			}
			if cancelled {
				fmt.Printf("Cancelled alert %d\n", id)
			} else {
				fmt.Printf("Alert %d is not active, nothing to cancel\n", id)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List active alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			alerts, err := app.Store.ListActive(ctx)
			if err != nil {
				return err
			}
			return printAlerts(cmd, alerts)
		},
	})

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List triggered and cancelled alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			limit, _ := cmd.Flags().GetInt("limit")
			alerts, err := app.Store.ListHistory(ctx, limit)
			if err != nil {
				return err
			}
			return printAlerts(cmd, alerts)
		},
	}
	historyCmd.Flags().Int("limit", 200, "maximum number of rows")
	cmd.AddCommand(historyCmd)

	return cmd
}

func printAlerts(cmd *cobra.Command, alerts []models.Alert) error {
	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		return json.NewEncoder(os.Stdout).Encode(alerts)
	}

	if len(alerts) == 0 {
		fmt.Println("No alerts")
		return nil
	}

	for _, a := range alerts {
		line := fmt.Sprintf("%4d  %-8s %-6s %-12s %s", a.ID, a.Symbol, a.Direction, utils.FormatPrice(a.Target), a.Status)
		if a.TriggeredPrice != nil {
			line += fmt.Sprintf("  @ %s", utils.FormatPrice(*a.TriggeredPrice))
		}
		if a.Note != "" {
			line += fmt.Sprintf("  (%s)", a.Note)
		}
		fmt.Println(line)
	}
	return nil
}

func newQuotesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "quotes <symbol>...",
		Short: "Fetch current quotes for symbols",
		Example: `  alertd quotes EURUSD XAUUSD`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			instruments := make([]string, len(args))
			for i, s := range args {
				instruments[i] = models.ResolveInstrument(s)
			}

			quotes := app.Oracle.Quotes(ctx, instruments)

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return json.NewEncoder(os.Stdout).Encode(quotes)
			}

			for _, inst := range instruments {
				q, ok := quotes[inst]
				if !ok || q.Mid == nil {
					fmt.Printf("%-10s unavailable\n", inst)
					continue
				}
				fmt.Printf("%-10s mid=%s", inst, utils.FormatPrice(*q.Mid))
				if q.Bid != nil && q.Ask != nil {
					fmt.Printf("  bid=%s ask=%s", utils.FormatPrice(*q.Bid), utils.FormatPrice(*q.Ask))
				}
				fmt.Println()
			}
			return nil
		},
	}
}

func newNotifyTestCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "notify-test",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if app.Notifier.Notify(ctx, "Test message from alertd") {
				fmt.Println("Notification sent")
				return nil
			}
			return fmt.Errorf("notification not delivered")
		},
	}
}
