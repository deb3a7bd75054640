package mailer

import (
	"fmt"
	"regexp"
)

// Vars maps template token names to their values. Values may be strings,
// numbers, or nil; nil renders as an empty string.
type Vars map[string]any

// tokenRe matches {{name}} placeholders, tolerating whitespace inside the
// braces. The captured group is the bare token name.
var tokenRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// Render replaces every {{token}} occurrence in template with the value
// from vars, coerced to its string form. Tokens with no matching key are
// left verbatim rather than removed, so a misconfigured template degrades
// visibly instead of silently losing content. Values are inserted as raw
// text without HTML escaping; user-supplied values must be sanitized
// before they reach the variable map.
func Render(template string, vars Vars) string {
	if len(vars) == 0 || template == "" {
		return template
	}

	return tokenRe.ReplaceAllStringFunc(template, func(match string) string {
		name := tokenRe.FindStringSubmatch(match)[1]
		value, ok := vars[name]
		if !ok {
			return match
		}
		return stringify(value)
	})
}

// stringify coerces a variable value to its rendered text form.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
