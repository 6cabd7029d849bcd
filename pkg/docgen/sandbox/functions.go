package sandbox

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// Function is a callable exposed to template expressions by name.
type Function interface {
	Call(args ...any) (any, error)
	Name() string
	MinArgs() int
	// MaxArgs returns the maximum number of arguments allowed (-1 for unlimited)
	MaxArgs() int
}

// Registry holds the functions visible to template expressions.
type Registry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{functions: make(map[string]Function)}
}

// NewDefaultRegistry creates a registry holding the built-in functions.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	registerBasicFunctions(r)
	return r
}

// Register adds fn, replacing any function of the same name.
func (r *Registry) Register(fn Function) error {
	name := fn.Name()
	if name == "" {
		return fmt.Errorf("function name cannot be empty")
	}
	if name == HelperName {
		return fmt.Errorf("function name %q is reserved for the helper", name)
	}
	r.mu.Lock()
	r.functions[name] = fn
	r.mu.Unlock()
	return nil
}

// Lookup returns the named function.
func (r *Registry) Lookup(name string) (Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.functions[name]
	return fn, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) bindings() map[string]any {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]any, len(r.functions))
	for name, fn := range r.functions {
		call := fn.Call
		// func(...any) any is called with the arguments as evaluated; the
		// error is raised as a panic, which expr.Run returns as an error.
		out[name] = func(args ...any) any {
			v, err := call(args...)
			if err != nil {
				panic(err)
			}
			return v
		}
	}
	return out
}

type simpleFunction struct {
	name    string
	minArgs int
	maxArgs int
	handler func(args ...any) (any, error)
}

// NewSimpleFunction wraps handler with argument count validation.
func NewSimpleFunction(name string, minArgs, maxArgs int, handler func(args ...any) (any, error)) Function {
	return &simpleFunction{name: name, minArgs: minArgs, maxArgs: maxArgs, handler: handler}
}

func (f *simpleFunction) Call(args ...any) (any, error) {
	if len(args) < f.minArgs {
		return nil, fmt.Errorf("function %s requires at least %d arguments, got %d", f.name, f.minArgs, len(args))
	}
	if f.maxArgs >= 0 && len(args) > f.maxArgs {
		return nil, fmt.Errorf("function %s accepts at most %d arguments, got %d", f.name, f.maxArgs, len(args))
	}
	return f.handler(args...)
}

func (f *simpleFunction) Name() string { return f.name }
func (f *simpleFunction) MinArgs() int { return f.minArgs }
func (f *simpleFunction) MaxArgs() int { return f.maxArgs }

// The expression language already provides len, upper, lower, trim, join,
// split and friends; these fill the gaps templates commonly need.
func registerBasicFunctions(r *Registry) {
	r.Register(NewSimpleFunction("empty", 1, 1, func(args ...any) (any, error) {
		return isEmpty(args[0]), nil
	}))

	r.Register(NewSimpleFunction("coalesce", 1, -1, func(args ...any) (any, error) {
		for _, arg := range args {
			if !isEmpty(arg) {
				return arg, nil
			}
		}
		return nil, nil
	}))

	r.Register(NewSimpleFunction("str", 1, 1, func(args ...any) (any, error) {
		return Stringify(args[0]), nil
	}))

	r.Register(NewSimpleFunction("titlecase", 1, 1, func(args ...any) (any, error) {
		return toTitleCase(Stringify(args[0])), nil
	}))

	r.Register(NewSimpleFunction("joinAnd", 3, 3, func(args ...any) (any, error) {
		items, err := ToSlice(args[0])
		if err != nil {
			return nil, fmt.Errorf("joinAnd: %w", err)
		}
		sep, last := Stringify(args[1]), Stringify(args[2])
		var parts []string
		for _, item := range items {
			if item != nil {
				parts = append(parts, Stringify(item))
			}
		}
		switch len(parts) {
		case 0:
			return "", nil
		case 1:
			return parts[0], nil
		}
		return strings.Join(parts[:len(parts)-1], sep) + last + parts[len(parts)-1], nil
	}))
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	switch x := v.(type) {
	case string:
		return x == ""
	case bool:
		return !x
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer:
		return rv.IsNil()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	}
	return false
}

func toTitleCase(s string) string {
	prev := ' '
	return strings.Map(func(r rune) rune {
		defer func() { prev = r }()
		if unicode.IsSpace(prev) || prev == '-' {
			return unicode.ToTitle(r)
		}
		return unicode.ToLower(r)
	}, s)
}

// ToSlice converts a list value to []any. Nil yields an empty list; maps and
// scalars are rejected.
func ToSlice(v any) ([]any, error) {
	switch x := v.(type) {
	case nil:
		return []any{}, nil
	case []any:
		return x, nil
	case []map[string]any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = item
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return []any{}, nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	}
	return nil, fmt.Errorf("cannot iterate over %T", v)
}
