package bracket

import (
	"fmt"
	"regexp"
	"strings"
)

// tokenPattern matches "[", an optional "#" or "/" prefix, a body without
// "]", "<", CR or LF, and "]".
var tokenPattern = regexp.MustCompile(`\[(#?/?)([^\]\r\n<]*?)\]`)

// UnmatchedCloseError is returned by a strict Compiler when a close token has
// no open loop.
type UnmatchedCloseError struct {
	Name     string
	Position int
}

func (e *UnmatchedCloseError) Error() string {
	return fmt.Sprintf("unmatched loop close [/%s] at offset %d", e.Name, e.Position)
}

// Compiler rewrites bracket tokens. The zero value is ready to use and
// behaves like Rewrite.
type Compiler struct {
	// Singularize derives the alias base from a loop field name.
	// Nil means the package-level Singularize.
	Singularize SingularizeFunc

	// StrictClose turns an unmatched [/name] into an error instead of
	// emitting {END-FOR name}.
	StrictClose bool
}

type loopFrame struct {
	name  string
	alias string
}

// Rewrite compiles every bracket token in content with the default rules.
// It reports whether anything was rewritten; when nothing was, content is
// returned unchanged.
func Rewrite(content string) (string, bool) {
	out, mutated, _ := (&Compiler{}).Rewrite(content)
	return out, mutated
}

// Rewrite compiles every bracket token in content. Text outside matched
// tokens is copied verbatim. Tokens sitting inside an existing {...} command
// are index expressions emitted by an earlier pass and are left alone.
func (c *Compiler) Rewrite(content string) (string, bool, error) {
	matches := tokenPattern.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return content, false, nil
	}

	singularize := c.Singularize
	if singularize == nil {
		singularize = Singularize
	}

	active := make(aliasSet)
	var stack []loopFrame
	var b strings.Builder
	b.Grow(len(content) + len(content)/4)

	mutated := false
	lastEnd := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		prefix := content[m[2]:m[3]]
		body := strings.TrimSpace(content[m[4]:m[5]])

		b.WriteString(content[lastEnd:start])
		lastEnd = end

		if body == "" || insideCommand(content, start, end) {
			b.WriteString(content[start:end])
			continue
		}

		switch prefix {
		case "#":
			alias := active.derive(body, singularize)
			stack = append(stack, loopFrame{name: body, alias: alias})
			fmt.Fprintf(&b, "{FOR %s IN %s}", alias, body)
		case "/":
			alias := body
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				active.release(top.alias)
				alias = top.alias
			} else if c.StrictClose {
				return content, false, &UnmatchedCloseError{Name: body, Position: start}
			}
			fmt.Fprintf(&b, "{END-FOR %s}", alias)
		default:
			b.WriteString("{")
			b.WriteString(valueExpression(stack, body))
			b.WriteString("}")
		}
		mutated = true
	}

	if !mutated {
		return content, false, nil
	}
	b.WriteString(content[lastEnd:])
	return b.String(), true, nil
}

func valueExpression(stack []loopFrame, body string) string {
	if isCall(body) {
		return body
	}
	if len(stack) > 0 && isLoopField(body) {
		return aliasAccess(stack[len(stack)-1].alias, body)
	}
	return rootExpression(body)
}

// isLoopField is the "bare field name" heuristic: no path separator and no
// computed-looking dash.
func isLoopField(body string) bool {
	return body != "" && !strings.Contains(body, ".") && !strings.Contains(body, "-")
}

// insideCommand reports whether content[start:end] is enclosed in a {...}
// command within the same text run.
func insideCommand(content string, start, end int) bool {
	before := content[:start]
	open := strings.LastIndexByte(before, '{')
	if open < 0 || open < strings.LastIndexByte(before, '}') {
		return false
	}
	if strings.IndexByte(before[open:], '<') >= 0 {
		return false
	}
	after := content[end:]
	closeIdx := strings.IndexByte(after, '}')
	if closeIdx < 0 {
		return false
	}
	return strings.IndexByte(after[:closeIdx], '<') < 0
}
