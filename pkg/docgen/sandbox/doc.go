// Package sandbox evaluates the expressions and script snippets embedded in
// DOCX templates.
//
// Every evaluation sees the helper c by bare name:
//
//	c(value, fallback = "", rest...)
//
// c returns the stringified value, or the stringified fallback when the value
// is nil or the empty string, followed by every rest argument stringified and
// concatenated without a separator.
//
// The helper lives in a protected Binding owned by each Context. Scripts may
// assign c = null, c = 5 or delete c; the binding records the write, but a
// read of c always yields something callable. After every snippet the runtime
// re-inspects the context and reinstates the binding.
//
// Snippets are small statement lists evaluated with expr-lang:
//
//	EXEC total = price * qty; label = c(name, "n/a")
//	INS c(customer.name, "-", " Ltd.")
//	EXEC delete c
//
// Supported statements are "delete NAME", "[let|var|const] NAME = EXPR" and
// plain expressions; the value of the last statement is the snippet's result.
// Expressions see the context variables, the loop locals of the caller,
// this (the root variables), null and undefined (both nil), registered
// functions and c.
//
// In ModeSandboxed each snippet runs against a clone of the context and the
// modified clone is handed back to the caller. In ModeDirect the snippet
// mutates the context in place.
package sandbox
