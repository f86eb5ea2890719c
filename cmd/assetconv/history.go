// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/assetconv/internal/history"
	"github.com/pdiddy/assetconv/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded conversion commands",
	Long: `History lists command invocations recorded with --history, newest
first, including exit codes and captured stderr. Use --prune to delete
records older than a duration.`,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	store, err := history.Open(cfg.History)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	if prune, _ := cmd.Flags().GetDuration("prune"); prune > 0 {
		n, err := store.Prune(ctx, time.Now().Add(-prune))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d record(s).\n", n)
		return nil
	}

	asset, _ := cmd.Flags().GetString("asset")
	status, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")
	records, err := store.List(ctx, history.QueryOptions{
		Asset:  asset,
		Status: types.ConversionStatus(status),
		Limit:  limit,
	})
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "table", "":
		printHistory(cmd.OutOrStdout(), records)
		return nil
	case "json":
		return history.WriteJSON(cmd.OutOrStdout(), records)
	case "yaml":
		return history.WriteYAML(cmd.OutOrStdout(), records)
	default:
		return fmt.Errorf("unsupported format %q: use table, json or yaml", format)
	}
}

func printHistory(w io.Writer, records []types.ConversionRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No conversions recorded.")
		return
	}

	fmt.Fprintf(w, "%-20s  %-30s  %-9s  %4s  %8s  %s\n",
		"Started", "Asset", "Status", "Exit", "Duration", "Stderr")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, r := range records {
		asset := r.Asset
		if len(asset) > 30 {
			asset = "..." + asset[len(asset)-27:]
		}
		stderr := strings.ReplaceAll(strings.TrimSpace(r.Stderr), "\n", " ")
		if len(stderr) > 40 {
			stderr = stderr[:37] + "..."
		}
		fmt.Fprintf(w, "%-20s  %-30s  %-9s  %4d  %8s  %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"), asset, r.Status,
			r.ExitCode, r.Duration.Round(time.Millisecond), stderr)
	}
	fmt.Fprintf(w, "\n%d records\n", len(records))
}

func init() {
	historyCmd.Flags().String("asset", "", "filter by asset path")
	historyCmd.Flags().String("status", "", "filter by status: converted or failed")
	historyCmd.Flags().Int("limit", 0, "maximum records (0 = default)")
	historyCmd.Flags().String("format", "table", "output format: table, json or yaml")
	historyCmd.Flags().Duration("prune", 0, "delete records older than this duration instead of listing")

	rootCmd.AddCommand(historyCmd)
}
