// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns stylesheet and script sources (LESS, SCSS, Sass,
// Stylus, CoffeeScript, TypeScript) into CSS or JS by running the external
// compiler mapped to each extension. Outputs newer than their source are
// left alone.
package convert

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/pdiddy/assetconv/pkg/types"
)

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Fresh     int
	Failed    int
}

// Total returns the total number of assets processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Fresh + r.Failed
}

// HasFailures reports whether any asset failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

func (r *BatchResult) add(status types.ConversionStatus) {
	switch status {
	case types.ConversionDone:
		r.Converted++
	case types.ConversionFresh:
		r.Fresh++
	case types.ConversionFailed:
		r.Failed++
	}
}

// ConvertPaths converts each asset (relative to basePath) in order, printing
// per-asset status to w and returning a summary. Assets without a rule are
// reported as passed through and not counted. A source that cannot be read
// counts as a failure and processing continues.
func ConvertPaths(ctx context.Context, c *Converter, assets []string, basePath string, w io.Writer) (BatchResult, error) {
	var result BatchResult
	for _, asset := range assets {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		out, err := c.ConvertAsset(ctx, asset, basePath)
		if err != nil {
			fmt.Fprintf(w, "failed:    %s (%v)\n", asset, err)
			result.Failed++
			continue
		}

		switch out.Status {
		case types.ConversionNone:
			fmt.Fprintf(w, "passed:    %s (no rule)\n", asset)
		case types.ConversionFresh:
			fmt.Fprintf(w, "fresh:     %s -> %s\n", asset, out.Result)
		case types.ConversionDone:
			fmt.Fprintf(w, "converted: %s -> %s\n", asset, out.Result)
		case types.ConversionFailed:
			fmt.Fprintf(w, "failed:    %s -> %s (see log)\n", asset, out.Result)
		}
		result.add(out.Status)
	}

	fmt.Fprintf(w, "\nBatch summary: %d converted, %d fresh, %d failed (total: %d)\n",
		result.Converted, result.Fresh, result.Failed, result.Total())
	return result, nil
}

// ConvertDir walks basePath and converts every file whose extension has a
// rule. Hidden directories and node_modules are skipped.
func ConvertDir(ctx context.Context, c *Converter, basePath string, w io.Writer) (BatchResult, error) {
	assets, err := FindAssets(c, basePath)
	if err != nil {
		return BatchResult{}, err
	}
	return ConvertPaths(ctx, c, assets, basePath, w)
}

// FindAssets returns the slash-separated paths, relative to basePath, of all
// files under basePath that c has a rule for, in lexical order.
func FindAssets(c *Converter, basePath string) ([]string, error) {
	var assets []string
	err := filepath.WalkDir(basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != basePath && SkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(basePath, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if c.Handles(rel) {
			assets = append(assets, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", basePath, err)
	}
	return assets, nil
}

// SkipDir reports whether a directory with the given name is never searched
// for assets.
func SkipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}
