// Package docgen generates DOCX documents from templates and stamps images
// onto PDF files.
//
// # Quick Start
//
//	template, err := os.ReadFile("invoice.docx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	out, err := docgen.RenderTemplate(template, map[string]any{
//	    "customer": map[string]any{"name": "ACME"},
//	    "items": []any{
//	        map[string]any{"name": "Widget", "qty": 2},
//	        map[string]any{"name": "Gadget", "qty": 1},
//	    },
//	})
//
// # Template Syntax
//
// Authors write bracket tokens, which are compiled to commands before
// rendering (see package bracket):
//
//	[customer.name]             - insert a value
//	[#items] ... [name] [/items] - repeat for every item
//
// Commands can also be written directly:
//
//	{customer.name}             - insert (also {= expr} and {INS expr})
//	{FOR item IN items}         - loop; the item is $item, the index $idx
//	{END-FOR item}
//	{IF total > 0} ... {END-IF} - conditional
//	{EXEC total = a + b}        - run a snippet without output (also {! code})
//
// A loop or condition repeats the smallest range of sibling elements that
// contains both its opener and its closer: text within a run, runs of a
// paragraph, paragraphs, or table rows. Paragraphs and rows that only held
// the opener or closer are dropped.
//
// Every expression sees the helper c (see package sandbox), so
// {c(customer.vat, "n/a")} never prints "<nil>".
//
// # PDF Stamping
//
//	placements, _ := placement.Parse([]byte(`[{"page":0,"x":400,"y":80,"width":120}]`))
//	out, err := docgen.StampImages(pdf, seal, placements)
//
// # Configuration
//
// DefaultConfig can be overridden with DOCGEN_* environment variables or a
// YAML file named by DOCGEN_CONFIG:
//
//	DOCGEN_CACHE_MAX_SIZE    compiled expressions to keep (0 disables)
//	DOCGEN_CACHE_TTL         lifetime of a cached expression ("10m")
//	DOCGEN_LOG_LEVEL         debug, info, warn, error or off
//	DOCGEN_MAX_RENDER_DEPTH  maximum nesting of FOR and IF blocks
//	DOCGEN_STRICT_MODE       unknown names and unmatched [/x] are errors
//	DOCGEN_NO_SANDBOX        snippets mutate the render context directly
//	DOCGEN_GLOBAL_HELPER     also publish c in the process-wide scope
//	DOCGEN_LINE_BREAKS       "\n" in inserted text becomes a line break
package docgen
