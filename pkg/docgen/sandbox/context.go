package sandbox

import "maps"

// Context is the variable scope of one render. The helper c is never stored
// among the variables; it is served by the context's Binding.
type Context struct {
	vars    map[string]any
	binding *Binding
}

// NewContext returns a context holding a shallow copy of vars, with the
// helper installed.
func NewContext(vars map[string]any) *Context {
	ctx := &Context{vars: make(map[string]any, len(vars)+1)}
	maps.Copy(ctx.vars, vars)
	return Ensure(ctx)
}

// Ensure installs the helper binding on ctx. It is idempotent: a context that
// already has a binding keeps it, and only an override that is no longer
// callable is reset. A callable c found among the variables becomes the
// override. A nil ctx yields a fresh empty context.
func Ensure(ctx *Context) *Context {
	if ctx == nil {
		ctx = &Context{}
	}
	if ctx.vars == nil {
		ctx.vars = make(map[string]any)
	}

	raw, hasRaw := ctx.vars[HelperName]
	if hasRaw {
		delete(ctx.vars, HelperName)
	}

	if ctx.binding == nil {
		ctx.binding = &Binding{}
		if hasRaw && isCallable(raw) {
			ctx.binding.Set(raw)
		}
		return ctx
	}

	if hasRaw {
		ctx.binding.Set(raw)
	}
	if !ctx.binding.healthy() {
		ctx.binding.Reset()
	}
	return ctx
}

// Reinstate repairs the helper after a snippet ran against ctx, whether the
// snippet succeeded or not.
func Reinstate(ctx *Context) {
	Ensure(ctx)
}

// Get returns the named variable. Reading c always yields a callable.
func (ctx *Context) Get(name string) (any, bool) {
	if name == HelperName {
		return ctx.binding.Get(), true
	}
	v, ok := ctx.vars[name]
	return v, ok
}

// Set assigns a variable. Assignments to c go to the binding.
func (ctx *Context) Set(name string, v any) {
	if name == HelperName {
		ctx.binding.Set(v)
		return
	}
	ctx.vars[name] = v
}

// Delete removes a variable. Deleting c drops the override.
func (ctx *Context) Delete(name string) {
	if name == HelperName {
		ctx.binding.Reset()
		return
	}
	delete(ctx.vars, name)
}

// Helper returns the callable currently bound to c.
func (ctx *Context) Helper() any {
	return ctx.binding.Get()
}

// Binding exposes the helper binding.
func (ctx *Context) Binding() *Binding {
	return ctx.binding
}

// Vars returns a copy of the variables, without c.
func (ctx *Context) Vars() map[string]any {
	return maps.Clone(ctx.vars)
}

// Clone returns an isolated copy: a shallow copy of the variables and a
// binding with the same override.
func (ctx *Context) Clone() *Context {
	return &Context{
		vars:    maps.Clone(ctx.vars),
		binding: ctx.binding.clone(),
	}
}
