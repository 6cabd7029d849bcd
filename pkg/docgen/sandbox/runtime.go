package sandbox

import (
	"fmt"
	"maps"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
)

// Mode selects how a snippet sees the render context.
type Mode int

const (
	// ModeSandboxed runs every snippet against an isolated clone of the
	// context; the modified clone is returned in Result.Context.
	ModeSandboxed Mode = iota
	// ModeDirect runs snippets against the context itself.
	ModeDirect
)

func (m Mode) String() string {
	if m == ModeDirect {
		return "direct"
	}
	return "sandboxed"
}

// Options configure a Runtime.
type Options struct {
	Mode Mode
	// Strict makes unknown names a compile error instead of nil.
	Strict bool
	// Cache holds compiled programs. Nil compiles on every evaluation.
	Cache *ProgramCache
	// Functions are visible by name. Nil means NewDefaultRegistry.
	Functions *Registry
}

// Runtime executes template snippets. It is safe for concurrent use as long
// as concurrent calls use different contexts.
type Runtime struct {
	opts Options
}

// NewRuntime creates a runtime.
func NewRuntime(opts Options) *Runtime {
	if opts.Functions == nil {
		opts.Functions = NewDefaultRegistry()
	}
	return &Runtime{opts: opts}
}

// Mode returns the evaluation mode.
func (r *Runtime) Mode() Mode {
	return r.opts.Mode
}

// Result is the outcome of one snippet.
type Result struct {
	// Value of the last statement.
	Value any
	// Context the snippet ran against. Callers continue with it.
	Context *Context
}

// ScriptError reports a failing statement.
type ScriptError struct {
	Statement string
	Err       error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("error executing %q: %v", e.Statement, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

var (
	deletePattern = regexp.MustCompile(`^delete\s+([$_\pL][$_\pL\pN]*)$`)
	assignPattern = regexp.MustCompile(`(?s)^(?:(?:let|var|const)\s+)?([$_\pL][$_\pL\pN]*)\s*=([^=>].*)$`)
)

// Run executes code against ctx. locals (loop variables and the like) are
// visible for this call only. The helper is reinstated on the context the
// snippet ran against before Run returns, on success and on failure.
func (r *Runtime) Run(ctx *Context, code string, locals map[string]any) (Result, error) {
	ctx = Ensure(ctx)
	work := ctx
	if r.opts.Mode == ModeSandboxed {
		work = ctx.Clone()
	}
	defer Reinstate(work)

	res := Result{Context: work}
	for _, stmt := range splitStatements(code) {
		value, err := r.exec(work, stmt, locals)
		if err != nil {
			return res, &ScriptError{Statement: stmt, Err: err}
		}
		res.Value = value
	}
	return res, nil
}

func (r *Runtime) exec(work *Context, stmt string, locals map[string]any) (any, error) {
	if m := deletePattern.FindStringSubmatch(stmt); m != nil {
		work.Delete(m[1])
		return true, nil
	}
	if m := assignPattern.FindStringSubmatch(stmt); m != nil {
		value, err := r.eval(work, strings.TrimSpace(m[2]), locals)
		if err != nil {
			return nil, err
		}
		work.Set(m[1], value)
		return value, nil
	}
	return r.eval(work, stmt, locals)
}

func (r *Runtime) eval(work *Context, source string, locals map[string]any) (any, error) {
	env := r.environment(work, locals)
	program, err := r.opts.Cache.Program(source, env, r.opts.Strict)
	if err != nil {
		return nil, err
	}
	return expr.Run(program, env)
}

// environment layers, lowest precedence first: the global fallback scope,
// null and undefined, functions, context variables, this, locals, c.
func (r *Runtime) environment(work *Context, locals map[string]any) map[string]any {
	env := globals()
	env["null"] = nil
	env["undefined"] = nil
	maps.Copy(env, r.opts.Functions.bindings())
	maps.Copy(env, work.vars)
	env["this"] = work.vars
	maps.Copy(env, locals)
	env[HelperName] = callable(helperFor(work))
	return env
}

func helperFor(work *Context) any {
	if o := work.binding.Override(); isCallable(o) {
		return o
	}
	if g, ok := Global(HelperName); ok && isCallable(g) {
		return g
	}
	return C
}

// splitStatements splits code on ";" and line breaks outside string literals
// and brackets. A line ending in an operator continues on the next line.
func splitStatements(code string) []string {
	var out []string
	var quote rune
	escaped := false
	depth := 0
	start := 0

	flush := func(end int) {
		if s := strings.TrimSpace(code[start:end]); s != "" {
			out = append(out, s)
		}
		start = end + 1
	}

	for i, ch := range code {
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
		case '"', '\'', '`':
			quote = ch
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case ';':
			if depth == 0 {
				flush(i)
			}
		case '\n':
			if depth == 0 && !continuesLine(code[start:i]) {
				flush(i)
			}
		}
	}
	if start < len(code) {
		flush(len(code))
	}
	return out
}

func continuesLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	return strings.ContainsRune("+-*/%&|?:,.=<>!", rune(line[len(line)-1]))
}
