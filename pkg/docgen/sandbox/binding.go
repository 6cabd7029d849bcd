package sandbox

import (
	"reflect"
	"sync"
)

// Binding holds the helper visible as c. Writes are recorded verbatim; a read
// returns the recorded override only when it is callable, and the default
// helper otherwise.
type Binding struct {
	mu       sync.RWMutex
	override any
}

// Get returns the callable currently bound to c.
func (b *Binding) Get() any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if isCallable(b.override) {
		return b.override
	}
	return C
}

// Set records v as the override.
func (b *Binding) Set(v any) {
	b.mu.Lock()
	b.override = v
	b.mu.Unlock()
}

// Override returns the recorded override, callable or not.
func (b *Binding) Override() any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.override
}

// Reset drops the override.
func (b *Binding) Reset() {
	b.Set(nil)
}

// healthy reports whether the override is absent or callable.
func (b *Binding) healthy() bool {
	o := b.Override()
	return o == nil || isCallable(o)
}

func (b *Binding) clone() *Binding {
	return &Binding{override: b.Override()}
}

func isCallable(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Func && !rv.IsNil()
}

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// callable adapts a helper to func(...any) any, the one function shape expr
// calls with its arguments as evaluated. Through reflection expr would pass a
// nil argument as the zero value of the parameter's declared type, which for
// a variadic parameter is a nil slice.
func callable(fn any) func(...any) any {
	switch f := fn.(type) {
	case func(...any) any:
		return f
	case func(...any) string:
		return func(args ...any) any { return f(args...) }
	}

	rv := reflect.ValueOf(fn)
	ft := rv.Type()
	return func(args ...any) any {
		in := make([]reflect.Value, len(args))
		for i, arg := range args {
			if arg != nil {
				in[i] = reflect.ValueOf(arg)
				continue
			}
			in[i] = reflect.Zero(paramType(ft, i))
		}
		out := rv.Call(in)
		if n := len(out); n > 1 {
			if err, ok := out[n-1].Interface().(error); ok && err != nil {
				panic(err)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out[0].Interface()
	}
}

func paramType(ft reflect.Type, i int) reflect.Type {
	last := ft.NumIn() - 1
	switch {
	case ft.IsVariadic() && i >= last:
		return ft.In(last).Elem()
	case i <= last:
		return ft.In(i)
	}
	return anyType
}
