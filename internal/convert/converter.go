// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/assetconv/internal/shell"
	"github.com/pdiddy/assetconv/pkg/types"
)

// Recorder persists command invocations. The history store implements it.
type Recorder interface {
	Record(ctx context.Context, rec types.ConversionRecord) error
}

// Outcome is the result of converting a single asset.
type Outcome struct {
	// Result is the converted asset path relative to the base path, or the
	// original asset when no rule applies.
	Result string
	Status types.ConversionStatus
}

// Converter turns source-format assets into CSS or JS by running the
// external command mapped to the asset's extension. The rule table is fixed
// at construction, so a Converter is safe for concurrent use on distinct
// assets. Two calls for the same asset may race on the output file.
type Converter struct {
	rules    types.RuleSet
	exec     shell.Executor
	log      logrus.FieldLogger
	recorder Recorder
	now      func() time.Time
}

// Option customises a Converter.
type Option func(*Converter)

// WithRecorder stores every command invocation in r.
func WithRecorder(r Recorder) Option {
	return func(c *Converter) { c.recorder = r }
}

// New creates a Converter from cfg. An empty cfg.Rules selects DefaultRules.
// The rule set is copied so later changes to cfg do not affect conversion.
func New(cfg types.ConverterConfig, exec shell.Executor, log logrus.FieldLogger, opts ...Option) *Converter {
	rules := cfg.Rules
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &Converter{
		rules: Merge(rules),
		exec:  exec,
		log:   log.WithField("package", "convert"),
		now:   time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Rules returns a copy of the active rule set.
func (c *Converter) Rules() types.RuleSet {
	return Merge(c.rules)
}

// Handles reports whether asset has an extension with a conversion rule.
func (c *Converter) Handles(asset string) bool {
	_, _, ok := c.lookup(asset)
	return ok
}

// Convert converts asset, a path relative to basePath, if its extension has
// a rule and the output is missing or older than the source. It returns the
// output path relative to basePath, or asset unchanged when no rule applies.
//
// A failing command is logged and does not produce an error; callers always
// get the expected output path back. The only error is a source asset whose
// modification time cannot be read.
func (c *Converter) Convert(ctx context.Context, asset, basePath string) (string, error) {
	out, err := c.ConvertAsset(ctx, asset, basePath)
	if err != nil {
		return "", err
	}
	return out.Result, nil
}

// ConvertAsset behaves like Convert and also reports what happened.
func (c *Converter) ConvertAsset(ctx context.Context, asset, basePath string) (Outcome, error) {
	rule, result, ok := c.lookup(asset)
	if !ok {
		return Outcome{Result: asset, Status: types.ConversionNone}, nil
	}

	srcInfo, err := os.Stat(filepath.Join(basePath, asset))
	if err != nil {
		return Outcome{}, fmt.Errorf("reading source asset %s: %w", asset, err)
	}

	// An unreadable output counts as infinitely old.
	if dstInfo, err := os.Stat(filepath.Join(basePath, result)); err == nil &&
		!dstInfo.ModTime().Before(srcInfo.ModTime()) {
		return Outcome{Result: result, Status: types.ConversionFresh}, nil
	}

	status := types.ConversionFailed
	if c.runCommand(ctx, rule.Command, basePath, asset, result) {
		status = types.ConversionDone
	}
	return Outcome{Result: result, Status: status}, nil
}

// lookup finds the rule for asset and computes the output path by replacing
// everything after the last dot with the rule's target extension.
func (c *Converter) lookup(asset string) (types.Rule, string, bool) {
	pos := strings.LastIndexByte(asset, '.')
	if pos < 0 {
		return types.Rule{}, "", false
	}
	rule, ok := c.rules[asset[pos+1:]]
	if !ok {
		return types.Rule{}, "", false
	}
	return rule, asset[:pos+1] + rule.Target, true
}

// runCommand expands the command template for asset and result, runs it in
// basePath and logs the outcome. It reports whether the command exited 0.
func (c *Converter) runCommand(ctx context.Context, template, basePath, asset, result string) bool {
	command := shell.Expand(template, map[string]string{
		shell.PlaceholderFrom: filepath.Join(basePath, asset),
		shell.PlaceholderTo:   filepath.Join(basePath, result),
	})

	started := c.now()
	res, err := c.exec.Execute(ctx, command, basePath)
	if err != nil && res.ExitCode == 0 {
		res.ExitCode = -1
	}

	log := c.log.WithFields(logrus.Fields{
		"asset":     asset,
		"result":    result,
		"command":   command,
		"exit_code": res.ExitCode,
		"stdout":    res.Stdout,
		"stderr":    res.Stderr,
	})

	ok := err == nil && res.Success()
	switch {
	case err != nil:
		log.WithError(err).Error("Asset conversion command could not be run.")
	case !ok:
		log.Errorf("Asset conversion command failed with exit code %d.", res.ExitCode)
	default:
		log.Infof("Converted %s into %s.", asset, result)
	}

	c.record(ctx, types.ConversionRecord{
		Asset:     asset,
		Result:    result,
		BasePath:  basePath,
		Command:   command,
		ExitCode:  res.ExitCode,
		Stdout:    res.Stdout,
		Stderr:    res.Stderr,
		Status:    statusOf(ok),
		StartedAt: started,
		Duration:  res.Duration,
	})
	return ok
}

func (c *Converter) record(ctx context.Context, rec types.ConversionRecord) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.Record(ctx, rec); err != nil {
		c.log.WithError(err).WithField("asset", rec.Asset).Warn("Failed to record conversion history.")
	}
}

func statusOf(ok bool) types.ConversionStatus {
	if ok {
		return types.ConversionDone
	}
	return types.ConversionFailed
}
