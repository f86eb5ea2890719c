// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/assetconv/internal/convert"
	"github.com/pdiddy/assetconv/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-convert assets whenever their sources change",
	Long: `Watch converts all stale assets under --base-path once, then keeps
watching the directory tree and converts each source as it is written.
Stop with Ctrl-C.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	conv, closeFn, err := newConverter(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if initial, _ := cmd.Flags().GetBool("initial"); initial {
		if _, err := convert.ConvertDir(ctx, conv, cfg.BasePath, cmd.OutOrStdout()); err != nil {
			return err
		}
	}

	return watch.New(conv, cfg.BasePath, logger).Run(ctx, nil)
}

func init() {
	watchCmd.Flags().Bool("initial", true, "convert stale assets before watching")

	rootCmd.AddCommand(watchCmd)
}
