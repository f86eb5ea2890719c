// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionStatus indicates what happened to an asset during conversion.
type ConversionStatus string

const (
	// ConversionNone means the asset has no rule and was passed through.
	ConversionNone ConversionStatus = "none"
	// ConversionFresh means the output was already up to date.
	ConversionFresh ConversionStatus = "fresh"
	// ConversionDone means the command ran and exited with status 0.
	ConversionDone ConversionStatus = "converted"
	// ConversionFailed means the command exited non-zero or could not start.
	ConversionFailed ConversionStatus = "failed"
)

// ConversionRecord describes a single command invocation.
type ConversionRecord struct {
	// Asset is the source path relative to BasePath.
	Asset string `json:"asset" yaml:"asset"`

	// Result is the output path relative to BasePath.
	Result string `json:"result" yaml:"result"`

	// BasePath is the directory the command ran in.
	BasePath string `json:"base_path" yaml:"base_path"`

	// Command is the fully expanded command line.
	Command string `json:"command" yaml:"command"`

	// ExitCode is the process exit status, or -1 when the process never ran.
	ExitCode int `json:"exit_code" yaml:"exit_code"`

	Stdout string `json:"stdout,omitempty" yaml:"stdout,omitempty"`
	Stderr string `json:"stderr,omitempty" yaml:"stderr,omitempty"`

	// Status is ConversionDone or ConversionFailed.
	Status ConversionStatus `json:"status" yaml:"status"`

	// StartedAt is when the command was launched.
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	// Duration is the wall time of the command.
	Duration time.Duration `json:"duration" yaml:"duration"`
}
