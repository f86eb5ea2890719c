// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/assetconv/internal/convert"
)

var convertCmd = &cobra.Command{
	Use:   "convert [assets...]",
	Short: "Convert stale assets to CSS or JS",
	Long: `Convert runs the compiler mapped to each asset's extension when the
output file is missing or older than the source. Asset paths are relative to
--base-path. With no arguments every convertible file under --base-path is
processed (hidden directories and node_modules are skipped).

Assets without a rule are reported as passed through.`,
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	conv, closeFn, err := newConverter(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	var result convert.BatchResult
	if len(args) > 0 {
		result, err = convert.ConvertPaths(cmd.Context(), conv, args, cfg.BasePath, cmd.OutOrStdout())
	} else {
		result, err = convert.ConvertDir(cmd.Context(), conv, cfg.BasePath, cmd.OutOrStdout())
	}
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d asset(s) failed conversion", result.Failed)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
