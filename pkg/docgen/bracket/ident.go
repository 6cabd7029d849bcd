package bracket

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	asciiIdentifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
	callPattern            = regexp.MustCompile(`^[$_\pL][$_\pL\pN]*(\.[$_\pL][$_\pL\pN]*)*\s*\(.*\)$`)
)

// reservedWords are words the expression language treats as operators or
// literals. Field names equal to one of them are always emitted with index
// syntax.
var reservedWords = map[string]bool{
	"and": true, "or": true, "not": true, "in": true, "matches": true,
	"contains": true, "startsWith": true, "endsWith": true, "let": true,
	"if": true, "else": true, "true": true, "false": true, "nil": true,
}

// IsIdentifier reports whether s is a valid identifier segment: a letter,
// "$" or "_" followed by letters, digits, combining marks, connector
// punctuation, ZWNJ or ZWJ.
func IsIdentifier(s string) bool {
	if s == "" || reservedWords[s] {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !isIdentStart(r) {
				return false
			}
			continue
		}
		if !isIdentContinue(r) {
			return false
		}
	}
	return true
}

func isIdentStart(r rune) bool {
	return r == '$' || r == '_' || unicode.IsLetter(r) ||
		unicode.Is(unicode.Nl, r) || unicode.Is(unicode.Other_ID_Start, r)
}

func isIdentContinue(r rune) bool {
	if isIdentStart(r) || r == '\u200c' || r == '\u200d' {
		return true
	}
	return unicode.In(r, unicode.Nd, unicode.Mn, unicode.Mc, unicode.Pc, unicode.Other_ID_Continue)
}

func isASCIIIdentifier(s string) bool {
	return asciiIdentifierPattern.MatchString(s) && !reservedWords[s]
}

// isCall reports whether a token body is call-shaped, like fmt(x) or
// c(name, 'n/a'). Such bodies are emitted verbatim at the root and inside a
// loop, so [fmt(x)] becomes {fmt(x)} and not the key lookups this["fmt(x)"]
// or $item["fmt(x)"]. A call therefore sees loop fields only through the
// names the loop puts in scope.
func isCall(body string) bool {
	return callPattern.MatchString(body)
}

func quote(s string) string {
	return strconv.Quote(s)
}

// aliasAccess builds the loop-relative access for a bare field name.
func aliasAccess(alias, body string) string {
	if isASCIIIdentifier(body) {
		return "$" + alias + "." + body
	}
	return "$" + alias + "[" + quote(body) + "]"
}

// rootExpression rewrites a value token body into a root-scoped expression.
func rootExpression(body string) string {
	if body == "" {
		return body
	}
	fallback := "this[" + quote(body) + "]"

	if !strings.Contains(body, ".") {
		if IsIdentifier(body) {
			return body
		}
		return fallback
	}

	segments := strings.Split(body, ".")
	head := segments[0]
	if head == "" || !IsIdentifier(head) {
		return fallback
	}

	var b strings.Builder
	b.WriteString(head)
	for _, segment := range segments[1:] {
		trimmed := strings.TrimSpace(segment)
		if trimmed == "" {
			return fallback
		}
		if IsIdentifier(trimmed) {
			b.WriteString(".")
			b.WriteString(trimmed)
		} else {
			b.WriteString("[")
			b.WriteString(quote(trimmed))
			b.WriteString("]")
		}
	}
	return b.String()
}
