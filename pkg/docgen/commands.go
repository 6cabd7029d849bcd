package docgen

import (
	"regexp"
	"strings"
)

type commandKind int

const (
	cmdInsert commandKind = iota
	cmdExec
	cmdFor
	cmdEndFor
	cmdIf
	cmdEndIf
)

func (k commandKind) String() string {
	switch k {
	case cmdExec:
		return "EXEC"
	case cmdFor:
		return "FOR"
	case cmdEndFor:
		return "END-FOR"
	case cmdIf:
		return "IF"
	case cmdEndIf:
		return "END-IF"
	default:
		return "INS"
	}
}

func (k commandKind) opensBlock() bool  { return k == cmdFor || k == cmdIf }
func (k commandKind) closesBlock() bool { return k == cmdEndFor || k == cmdEndIf }

// command is a parsed template command.
type command struct {
	kind commandKind
	// name is the loop variable of FOR and END-FOR, without "$".
	name string
	// code is the expression or script to evaluate.
	code string
}

var (
	forPattern    = regexp.MustCompile(`(?is)^FOR\s+\$?([$_\pL][$_\pL\pN]*)\s+IN\s+(.+)$`)
	endForPattern = regexp.MustCompile(`(?is)^END-FOR(?:\s+\$?(\S+))?$`)
	ifPattern     = regexp.MustCompile(`(?is)^IF\s+(.+)$`)
	endIfPattern  = regexp.MustCompile(`(?is)^END-IF(?:\s+.*)?$`)
	keywordArg    = regexp.MustCompile(`(?is)^(INS|EXEC)\s+(.+)$`)
)

// parseCommand parses the text between command delimiters.
func parseCommand(text string) (command, error) {
	text = strings.TrimSpace(text)

	switch {
	case forPattern.MatchString(text):
		m := forPattern.FindStringSubmatch(text)
		return command{kind: cmdFor, name: m[1], code: strings.TrimSpace(m[2])}, nil
	case endForPattern.MatchString(text):
		m := endForPattern.FindStringSubmatch(text)
		return command{kind: cmdEndFor, name: m[1]}, nil
	case ifPattern.MatchString(text):
		m := ifPattern.FindStringSubmatch(text)
		return command{kind: cmdIf, code: strings.TrimSpace(m[1])}, nil
	case endIfPattern.MatchString(text):
		return command{kind: cmdEndIf}, nil
	case strings.HasPrefix(text, "="):
		return nonEmpty(command{kind: cmdInsert, code: strings.TrimSpace(text[1:])}, text)
	case strings.HasPrefix(text, "!"):
		return nonEmpty(command{kind: cmdExec, code: strings.TrimSpace(text[1:])}, text)
	case keywordArg.MatchString(text):
		m := keywordArg.FindStringSubmatch(text)
		kind := cmdInsert
		if strings.EqualFold(m[1], "EXEC") {
			kind = cmdExec
		}
		return command{kind: kind, code: strings.TrimSpace(m[2])}, nil
	}

	upper := strings.ToUpper(text)
	for _, keyword := range []string{"FOR", "IF", "INS", "EXEC"} {
		if upper == keyword {
			return command{}, NewParseError("missing argument", text, 0)
		}
	}
	return command{kind: cmdInsert, code: text}, nil
}

func nonEmpty(cmd command, text string) (command, error) {
	if cmd.code == "" {
		return command{}, NewParseError("missing expression", text, 0)
	}
	return cmd, nil
}

// commandSpans returns the [start, end) offsets of every {...} command in s.
// Braces nest, and braces inside quoted strings do not count. An
// unterminated command ends the scan.
func commandSpans(s string) [][2]int {
	var spans [][2]int
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		end := matchBrace(s, i)
		if end < 0 {
			break
		}
		spans = append(spans, [2]int{i, end + 1})
		i = end
	}
	return spans
}

func matchBrace(s string, open int) int {
	depth := 0
	var quote byte
	escaped := false
	for i := open; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == quote:
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"', '`':
			if depth > 0 {
				quote = ch
			}
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
