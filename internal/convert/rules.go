// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/assetconv/pkg/types"
)

// DefaultRules returns a fresh copy of the built-in conversion rules.
func DefaultRules() types.RuleSet {
	return types.RuleSet{
		"less":   {Target: "css", Command: "lessc {from} {to}"},
		"scss":   {Target: "css", Command: "sass {from} {to}"},
		"sass":   {Target: "css", Command: "sass {from} {to}"},
		"styl":   {Target: "js", Command: "stylus < {from} > {to}"},
		"coffee": {Target: "js", Command: "coffee -p {from} > {to}"},
		"ts":     {Target: "js", Command: "tsc --out {to} {from}"},
	}
}

// Merge returns a new RuleSet holding base with every entry of each
// override applied in order. Later entries for the same extension win.
func Merge(base types.RuleSet, overrides ...types.RuleSet) types.RuleSet {
	out := make(types.RuleSet, len(base))
	for ext, r := range base {
		out[ext] = r
	}
	for _, o := range overrides {
		for ext, r := range o {
			out[ext] = r
		}
	}
	return out
}

// RulesFile is the on-disk representation of a rule override file.
type RulesFile struct {
	Rules types.RuleSet `yaml:"rules"`
}

// LoadRulesFile reads rule overrides from a YAML file of the form
//
//	rules:
//	  less: {target: css, command: "lessc --strict-math=on {from} {to}"}
func LoadRulesFile(path string) (types.RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	var rf RulesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing rules file %s: %w", path, err)
	}
	return rf.Rules, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every rule in rs. Extensions must be non-empty and free of
// dots and path separators; targets must be alphanumeric; commands must
// reference {from}. All problems are reported together.
func Validate(rs types.RuleSet) error {
	exts := make([]string, 0, len(rs))
	for ext := range rs {
		exts = append(exts, ext)
	}
	sort.Strings(exts)

	var errs []error
	for _, ext := range exts {
		if ext == "" || strings.ContainsAny(ext, `./\`) {
			errs = append(errs, fmt.Errorf("rule %q: invalid extension", ext))
			continue
		}
		if err := validate.Struct(rs[ext]); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				for _, fe := range verrs {
					errs = append(errs, fmt.Errorf("rule %q: field %s failed %q", ext, fe.Field(), fe.Tag()))
				}
				continue
			}
			errs = append(errs, fmt.Errorf("rule %q: %w", ext, err))
		}
	}
	return errors.Join(errs...)
}
