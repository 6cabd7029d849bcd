package bracket

import (
	"strconv"
	"strings"
)

// SingularizeFunc turns a loop field name into the base of its alias.
type SingularizeFunc func(name string) string

// Singularize is the default English heuristic: "ies" becomes "y", "ses"
// loses its final "s", any other trailing "s" is dropped.
func Singularize(name string) string {
	switch {
	case strings.HasSuffix(name, "ies") && len(name) > 3:
		return name[:len(name)-3] + "y"
	case strings.HasSuffix(name, "ses") && len(name) > 3:
		return name[:len(name)-2]
	case strings.HasSuffix(name, "s") && len(name) > 1:
		return name[:len(name)-1]
	}
	return name
}

// aliasSet tracks the aliases of the loops that are currently open.
type aliasSet map[string]struct{}

// derive returns a fresh alias for loopName and marks it active.
func (s aliasSet) derive(loopName string, singularize SingularizeFunc) string {
	base := loopName
	if strings.Contains(loopName, ".") {
		if idx := strings.LastIndex(loopName, "."); idx < len(loopName)-1 {
			base = loopName[idx+1:]
		}
	}
	base = singularize(base)
	base = sanitizeAlias(base)
	if base == "" || !isASCIILetterOrUnderscore(base[0]) {
		base = "item"
	}

	alias := base
	for suffix := 2; ; suffix++ {
		// "$env" is the evaluator's handle on the whole environment.
		if _, taken := s[alias]; !taken && alias != "env" {
			break
		}
		alias = base + strconv.Itoa(suffix)
	}
	s[alias] = struct{}{}
	return alias
}

func (s aliasSet) release(alias string) {
	delete(s, alias)
}

func sanitizeAlias(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isASCIILetterOrUnderscore(c) || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isASCIILetterOrUnderscore(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
