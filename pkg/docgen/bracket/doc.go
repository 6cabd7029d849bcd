// Package bracket compiles the bracket authoring syntax used in DOCX templates
// into the command syntax understood by the docgen rendering engine.
//
// Template authors write three kinds of tokens:
//
//	[#items]      - open a loop over the "items" field
//	[name]        - insert a value
//	[/items]      - close the loop
//
// Compilation is a single left-to-right scan. Loop tokens push and pop an
// explicit stack of loop aliases; value tokens are rewritten immediately using
// the innermost loop alias, if any:
//
//	[#items][name][/items]
//	=> {FOR item IN items}{$item.name}{END-FOR item}
//
// Outside a loop, value tokens become root expressions. Dotted paths are
// rewritten segment by segment so that field names containing spaces,
// punctuation or non-ASCII characters survive:
//
//	[customer.full name]  => {customer["full name"]}
//	[a..b]                => {this["a..b"]}
//
// The singularization used for loop aliases is an English heuristic
// ("items" => "item", "categories" => "category", "addresses" => "address").
// Irregular plurals are not handled; override Compiler.Singularize when a
// template set needs different rules.
//
// This package has no dependency on the rest of docgen and works on raw XML
// text: tokens split across XML elements are not recognised.
package bracket
