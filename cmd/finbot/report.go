package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pbarbosa/finbot/internal/model"
	"github.com/pbarbosa/finbot/internal/render"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print an expense report to the terminal",
		RunE:  runReport,
	}
	cmd.Flags().String("conversation", "local", "conversation id to report on")
	cmd.Flags().String("period", "month", "report period (month, today, yesterday, all)")
	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	rawPeriod, _ := cmd.Flags().GetString("period")
	period, recognized := model.ParsePeriod(rawPeriod)
	if !recognized {
		return fmt.Errorf("unknown period: %s", rawPeriod)
	}
	conversationID, _ := cmd.Flags().GetString("conversation")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	expenses, err := store.ListExpenses(ctx, conversationID, period)
	if err != nil {
		return fmt.Errorf("failed to list expenses: %w", err)
	}

	fmt.Fprintln(os.Stdout, render.Report(expenses, period))
	return nil
}
