// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Rule maps a source extension to its target extension and the shell command
// that produces the target. Command may reference the {from} and {to}
// placeholders, which are replaced with the shell-escaped source and output
// paths before execution.
type Rule struct {
	// Target is the output extension without the leading dot (e.g. "css").
	Target string `json:"target" yaml:"target" mapstructure:"target" validate:"required,alphanum"`

	// Command is the shell command template (e.g. "lessc {from} {to}").
	Command string `json:"command" yaml:"command" mapstructure:"command" validate:"required,contains={from}"`
}

// RuleSet holds one Rule per source extension, keyed without the leading dot.
type RuleSet map[string]Rule

// ConverterConfig holds settings for asset conversion.
type ConverterConfig struct {
	// Rules maps source extensions to conversion rules. An empty set means
	// the built-in defaults are used.
	Rules RuleSet `json:"rules" yaml:"rules" mapstructure:"rules"`

	// Shell is the interpreter and flag used to run commands
	// (default ["sh", "-c"]).
	Shell []string `json:"shell" yaml:"shell" mapstructure:"shell"`

	// Timeout bounds each command invocation. Zero means no timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// HistoryConfig holds settings for the conversion history database.
type HistoryConfig struct {
	// Enabled controls whether command invocations are recorded.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// DBPath is the SQLite database file (default ".assetconv/history.db").
	DBPath string `json:"db_path" yaml:"db_path" mapstructure:"db_path"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is text or json.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all settings for the assetconv CLI.
type Config struct {
	// BasePath is the directory assets are resolved against.
	BasePath string `json:"base_path" yaml:"base_path" mapstructure:"base_path"`

	// RulesFile is an optional YAML file whose rules override the defaults.
	RulesFile string `json:"rules_file" yaml:"rules_file" mapstructure:"rules_file"`

	Converter ConverterConfig `json:"converter" yaml:"converter" mapstructure:",squash"`
	History   HistoryConfig   `json:"history" yaml:"history" mapstructure:"history"`
	Log       LogConfig       `json:"log" yaml:"log" mapstructure:"log"`
}
