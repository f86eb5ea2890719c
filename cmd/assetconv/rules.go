// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/assetconv/internal/convert"
	"github.com/pdiddy/assetconv/pkg/types"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the effective conversion rules",
	Long: `Rules prints the conversion table after applying overrides from the
config file and --rules-file. Use --yaml to get a file that can be edited and
passed back with --rules-file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		asYAML, _ := cmd.Flags().GetBool("yaml")
		if asYAML {
			data, err := yaml.Marshal(convert.RulesFile{Rules: cfg.Converter.Rules})
			if err != nil {
				return fmt.Errorf("marshaling rules: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		printRules(cmd.OutOrStdout(), cfg.Converter.Rules)
		return nil
	},
}

func printRules(w io.Writer, rs types.RuleSet) {
	exts := make([]string, 0, len(rs))
	for ext := range rs {
		exts = append(exts, ext)
	}
	sort.Strings(exts)

	fmt.Fprintf(w, "%-8s  %-6s  %s\n", "Source", "Target", "Command")
	fmt.Fprintln(w, strings.Repeat("-", 50))
	for _, ext := range exts {
		fmt.Fprintf(w, "%-8s  %-6s  %s\n", ext, rs[ext].Target, rs[ext].Command)
	}
}

func init() {
	rulesCmd.Flags().Bool("yaml", false, "print rules as a YAML rules file")

	rootCmd.AddCommand(rulesCmd)
}
