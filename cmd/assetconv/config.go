// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/pdiddy/assetconv/internal/convert"
	"github.com/pdiddy/assetconv/internal/history"
	"github.com/pdiddy/assetconv/internal/shell"
	"github.com/pdiddy/assetconv/pkg/types"
)

// loadConfig decodes the viper settings and resolves the effective rule set:
// built-in defaults, then rules from the config file, then the rules file.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}

	var fileRules types.RuleSet
	if cfg.RulesFile != "" {
		rs, err := convert.LoadRulesFile(cfg.RulesFile)
		if err != nil {
			return cfg, err
		}
		fileRules = rs
	}

	cfg.Converter.Rules = convert.Merge(convert.DefaultRules(), cfg.Converter.Rules, fileRules)
	if err := convert.Validate(cfg.Converter.Rules); err != nil {
		return cfg, fmt.Errorf("invalid rules: %w", err)
	}
	if cfg.BasePath == "" {
		cfg.BasePath = "."
	}
	return cfg, nil
}

// newConverter builds a Converter from cfg. When history is enabled the
// returned close function releases the history database.
func newConverter(cfg types.Config) (*convert.Converter, func() error, error) {
	runner := shell.NewRunner(cfg.Converter.Shell, cfg.Converter.Timeout)

	var opts []convert.Option
	closeFn := func() error { return nil }
	if cfg.History.Enabled {
		store, err := history.Open(cfg.History)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, convert.WithRecorder(store))
		closeFn = store.Close
	}

	return convert.New(cfg.Converter, runner, logger, opts...), closeFn, nil
}
