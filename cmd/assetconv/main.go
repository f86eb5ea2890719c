// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the assetconv CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/assetconv/internal/history"
	"github.com/pdiddy/assetconv/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built from the log settings before any subcommand runs.
var logger *logrus.Logger

// rootCmd is the base command for the assetconv CLI.
var rootCmd = &cobra.Command{
	Use:   "assetconv",
	Short: "Compile LESS, Sass, Stylus, CoffeeScript and TypeScript assets",
	Long: `assetconv converts source-format front-end assets into plain CSS or JS
by running the matching compiler (lessc, sass, stylus, coffee, tsc).

An output is regenerated only when it is missing or older than its source.
Compiler failures are logged with the captured stdout and stderr; the
expected output path is still reported.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log, err := logging.New(cmd.ErrOrStderr(), viper.GetString("log.level"), viper.GetString("log.format"))
		if err != nil {
			return err
		}
		logger = log
		if used := viper.ConfigFileUsed(); used != "" {
			logger.WithField("file", used).Debug("Using config file.")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./assetconv.yaml or ~/.config/assetconv/config.yaml)")
	pf.String("base-path", ".", "directory assets are resolved against and commands run in")
	pf.String("rules-file", "", "YAML file with rule overrides")
	pf.Duration("timeout", 0, "per-command timeout (0 = none)")
	pf.Bool("history", false, "record every command invocation in the history database")
	pf.String("history-db", history.DefaultDBPath, "history database path")
	pf.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json)")

	for key, flag := range map[string]string{
		"base_path":       "base-path",
		"rules_file":      "rules-file",
		"timeout":         "timeout",
		"history.enabled": "history",
		"history.db_path": "history-db",
		"log.level":       "log-level",
		"log.format":      "log-format",
	} {
		if err := viper.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("assetconv")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "assetconv"))
		}
	}

	viper.SetEnvPrefix("ASSETCONV")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
			os.Exit(1)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
