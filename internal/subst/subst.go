// Package subst fills {name} placeholders in reply text.
package subst

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
)

// ErrNoVariables is returned when there is nothing to substitute.
var ErrNoVariables = errors.New("no variables to apply")

var placeholderRe = regexp.MustCompile(`\{([^{}\s]+)\}`)

// Apply replaces every {name} in text with the string form of vars[name].
// Names whose value is nil or renders as "" are skipped, so their
// placeholders stay in the text. Names are matched literally and values
// are inserted literally. A nil or empty map returns ErrNoVariables and
// text unchanged.
func Apply(text string, vars map[string]any) (string, error) {
	if len(vars) == 0 {
		return text, ErrNoVariables
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value, ok := stringValue(vars[name])
		if !ok {
			continue
		}
		re, err := regexp.Compile(`\{` + regexp.QuoteMeta(name) + `\}`)
		if err != nil {
			return text, fmt.Errorf("compiling placeholder %q: %w", name, err)
		}
		text = re.ReplaceAllLiteralString(text, value)
	}
	return text, nil
}

func stringValue(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case *string:
		if t == nil {
			return "", false
		}
		s = *t
	case float64:
		// JSON numbers decode as float64; keep integers free of ".0".
		if t == float64(int64(t)) {
			s = fmt.Sprintf("%d", int64(t))
		} else {
			s = fmt.Sprint(t)
		}
	default:
		s = fmt.Sprint(t)
	}
	return s, s != ""
}

// Placeholders returns the distinct {name} placeholders left in text, in
// order of first appearance.
func Placeholders(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}
