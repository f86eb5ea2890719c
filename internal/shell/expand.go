// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package shell

import (
	"sort"
	"strings"

	"github.com/alessio/shellescape"
)

// Placeholders recognised in rule command templates.
const (
	PlaceholderFrom = "{from}"
	PlaceholderTo   = "{to}"
)

// Expand replaces each placeholder key of vars in template with the
// shell-quoted value. Substitution is a single pass, so a value that itself
// contains a placeholder is never expanded again. Keys are tried longest
// first when they share a prefix.
func Expand(template string, vars map[string]string) string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, k, shellescape.Quote(vars[k]))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
