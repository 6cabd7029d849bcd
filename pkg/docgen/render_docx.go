package docgen

import (
	"bytes"
	"fmt"
	"maps"
	"strings"

	"github.com/wxjw/Vanka/pkg/docgen/sandbox"
	"github.com/wxjw/Vanka/pkg/docgen/xml"
)

// visualElements keep a paragraph or row alive even without text.
var visualElements = map[string]bool{
	"w:drawing": true,
	"w:pict":    true,
	"w:object":  true,
	xml.Break:   true,
	"w:tab":     true,
	"w:sym":     true,
}

// boundaryElements are dropped from the edges of a repeated range when the
// removal of a block command leaves them empty.
var boundaryElements = map[string]bool{
	xml.Paragraph: true,
	xml.TableRow:  true,
	xml.Run:       true,
}

// partRenderer expands the commands of one part against a shared context.
type partRenderer struct {
	runtime  *sandbox.Runtime
	config   *Config
	logger   *Logger
	part     string
	ctx      *sandbox.Context
	commands map[string]command
}

// renderPart renders the commands in one XML part. Parts without a command
// delimiter are returned unchanged with changed == false.
func (r *partRenderer) renderPart(content []byte) (out []byte, changed bool, err error) {
	if !bytes.ContainsRune(content, '{') {
		return content, false, nil
	}

	root, err := xml.ParseBytes(content)
	if err != nil {
		return nil, false, NewDocumentError("parse", r.part, err)
	}

	for _, texts := range paragraphTexts(root) {
		mergeSplitCommands(texts)
	}
	splitCommandTexts(root)

	if err := r.pairBlocks(root); err != nil {
		return nil, false, err
	}

	root.Children, err = r.renderList(root.Children, nil, 0)
	if err != nil {
		return nil, false, err
	}
	fixEmptyCells(root)

	return root.Bytes(), true, nil
}

// paragraphTexts groups the w:t elements of the tree by enclosing paragraph.
func paragraphTexts(root *xml.Node) [][]*xml.Node {
	var groups [][]*xml.Node
	var walk func(n *xml.Node, group *[]*xml.Node)
	walk = func(n *xml.Node, group *[]*xml.Node) {
		switch {
		case n.IsElement(xml.Paragraph):
			var texts []*xml.Node
			for _, child := range n.Children {
				walk(child, &texts)
			}
			groups = append(groups, texts)
		case n.IsElement(xml.Text):
			if group != nil {
				*group = append(*group, n)
			}
		default:
			for _, child := range n.Children {
				walk(child, group)
			}
		}
	}
	walk(root, nil)
	return groups
}

// ownText returns the character data directly inside a w:t element.
func ownText(t *xml.Node) string {
	var b strings.Builder
	for _, child := range t.Children {
		if child.Type == xml.TextNode {
			b.WriteString(child.Data)
		}
	}
	return b.String()
}

// mergeSplitCommands moves every command that Word split over several w:t
// elements of a paragraph into the element where it starts.
func mergeSplitCommands(texts []*xml.Node) {
	if len(texts) < 2 {
		return
	}

	var full strings.Builder
	owner := make([]int, 0, 64)
	for i, t := range texts {
		s := ownText(t)
		full.WriteString(s)
		for range len(s) {
			owner = append(owner, i)
		}
	}

	text := full.String()
	target := make([]int, len(owner))
	copy(target, owner)
	moved := false
	for _, span := range commandSpans(text) {
		first := owner[span[0]]
		for i := span[0]; i < span[1]; i++ {
			if target[i] != first {
				target[i] = first
				moved = true
			}
		}
	}
	if !moved {
		return
	}

	pieces := make([]strings.Builder, len(texts))
	for i := range len(text) {
		pieces[target[i]].WriteByte(text[i])
	}
	for i, t := range texts {
		if s := pieces[i].String(); s != ownText(t) {
			t.SetText(s)
		}
	}
}

// splitCommandTexts gives every command its own w:t element. Literal text
// around a command stays in sibling w:t elements with the same attributes.
func splitCommandTexts(n *xml.Node) {
	var children []*xml.Node
	for _, child := range n.Children {
		switch {
		case child.IsElement(xml.Text):
			children = append(children, splitText(child)...)
		case child.IsElement(xml.Run):
			splitCommandTexts(child)
			children = append(children, isolateCommands(child)...)
		default:
			splitCommandTexts(child)
			children = append(children, child)
		}
	}
	n.Children = children
}

// isolateCommands splits a run so that every command sits alone in a run
// carrying the original run properties.
func isolateCommands(run *xml.Node) []*xml.Node {
	commands, others := 0, 0
	var props *xml.Node
	for _, child := range run.Children {
		switch {
		case child.IsCommand():
			commands++
		case child.IsElement("w:rPr"):
			props = child
		default:
			others++
		}
	}
	if commands == 0 || (commands == 1 && others == 0) {
		return []*xml.Node{run}
	}

	var runs []*xml.Node
	var current *xml.Node
	newRun := func() *xml.Node {
		r := textLike(run)
		if props != nil {
			r.Children = append(r.Children, props.Clone())
		}
		runs = append(runs, r)
		return r
	}
	for _, child := range run.Children {
		if child == props {
			continue
		}
		if child.IsCommand() {
			r := newRun()
			r.Children = append(r.Children, child)
			current = nil
			continue
		}
		if current == nil {
			current = newRun()
		}
		current.Children = append(current.Children, child)
	}
	return runs
}

func splitText(t *xml.Node) []*xml.Node {
	text := ownText(t)
	spans := commandSpans(text)
	if len(spans) == 0 {
		return []*xml.Node{t}
	}

	var pieces []*xml.Node
	var literal strings.Builder
	flush := func() {
		if literal.Len() == 0 {
			return
		}
		piece := textLike(t)
		piece.SetText(literal.String())
		pieces = append(pieces, piece)
		literal.Reset()
	}

	last := 0
	for _, span := range spans {
		literal.WriteString(text[last:span[0]])
		last = span[1]

		inner := strings.TrimSpace(text[span[0]+1 : span[1]-1])
		if inner == "" {
			literal.WriteString(text[span[0]:span[1]])
			continue
		}
		flush()
		cmd := textLike(t)
		cmd.Command = inner
		pieces = append(pieces, cmd)
	}
	literal.WriteString(text[last:])
	flush()
	return pieces
}

// textLike returns an empty element with the name and attributes of t.
func textLike(t *xml.Node) *xml.Node {
	n := xml.NewElement(t.Name)
	if len(t.Attrs) > 0 {
		n.Attrs = make([]xml.Attr, len(t.Attrs))
		copy(n.Attrs, t.Attrs)
	}
	return n
}

type openBlock struct {
	node *xml.Node
	cmd  command
}

// pairBlocks parses every command and links each block opener to its closer.
func (r *partRenderer) pairBlocks(root *xml.Node) error {
	var stack []openBlock
	nextID := 0
	var err error

	root.Walk(func(n *xml.Node) bool {
		if err != nil {
			return false
		}
		if !n.IsCommand() {
			return true
		}

		cmd, perr := r.parse(n.Command)
		if perr != nil {
			err = WithContext(perr, "parse command", map[string]interface{}{"part": r.part})
			return false
		}

		switch {
		case cmd.kind.opensBlock():
			nextID++
			n.Block = nextID
			stack = append(stack, openBlock{node: n, cmd: cmd})
		case cmd.kind.closesBlock():
			if len(stack) == 0 {
				err = NewTemplateError(fmt.Sprintf("%s without matching opener", cmd.kind), r.part, n.Command)
				return false
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if (cmd.kind == cmdEndFor) != (top.cmd.kind == cmdFor) {
				err = NewTemplateError(fmt.Sprintf("%s closes %s block", cmd.kind, top.cmd.kind), r.part, n.Command)
				return false
			}
			if cmd.kind == cmdEndFor && cmd.name != "" && cmd.name != top.cmd.name {
				err = NewTemplateError(fmt.Sprintf("END-FOR %s closes loop over %s", cmd.name, top.cmd.name), r.part, n.Command)
				return false
			}
			n.Block = -top.node.Block
		}
		return false
	})
	if err != nil {
		return err
	}
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return NewTemplateError(fmt.Sprintf("unterminated %s block", top.cmd.kind), r.part, top.node.Command)
	}
	return nil
}

func (r *partRenderer) parse(text string) (command, error) {
	if cmd, ok := r.commands[text]; ok {
		return cmd, nil
	}
	cmd, err := parseCommand(text)
	if err != nil {
		return command{}, err
	}
	if r.commands == nil {
		r.commands = make(map[string]command)
	}
	r.commands[text] = cmd
	return cmd, nil
}

// renderList renders a list of siblings. A block whose opener and closer
// sit in different siblings repeats the whole range of siblings between them.
func (r *partRenderer) renderList(nodes []*xml.Node, locals map[string]any, depth int) ([]*xml.Node, error) {
	var out []*xml.Node
	for i := 0; i < len(nodes); i++ {
		node := nodes[i]

		if opener := escapingOpener(node); opener != nil {
			j := closingSibling(nodes, i, -opener.Block)
			if j < 0 {
				return nil, NewTemplateError("block closer not found", r.part, opener.Command)
			}
			expanded, err := r.renderBlock(nodes[i:j+1], opener, locals, depth)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)
			i = j
			continue
		}

		if node.IsCommand() {
			replacement, err := r.renderCommand(node, locals)
			if err != nil {
				return nil, err
			}
			out = append(out, replacement...)
			continue
		}

		if len(node.Children) > 0 {
			children, err := r.renderList(node.Children, locals, depth)
			if err != nil {
				return nil, err
			}
			node.Children = children
		}
		out = append(out, node)
	}
	return out, nil
}

// escapingOpener returns the first block opener in n whose closer lies
// outside n.
func escapingOpener(n *xml.Node) *xml.Node {
	var found *xml.Node
	n.Walk(func(node *xml.Node) bool {
		if found != nil {
			return false
		}
		if node.Block > 0 && findBlock(n, -node.Block) == nil {
			found = node
			return false
		}
		return true
	})
	return found
}

// findBlock returns the node under n carrying the given block id.
func findBlock(n *xml.Node, id int) *xml.Node {
	var found *xml.Node
	n.Walk(func(node *xml.Node) bool {
		if found != nil {
			return false
		}
		if node.Block == id {
			found = node
			return false
		}
		return true
	})
	return found
}

func closingSibling(nodes []*xml.Node, from, id int) int {
	for j := from + 1; j < len(nodes); j++ {
		if findBlock(nodes[j], id) != nil {
			return j
		}
	}
	return -1
}

// renderBlock expands a FOR or IF block spanning the given siblings.
func (r *partRenderer) renderBlock(span []*xml.Node, opener *xml.Node, locals map[string]any, depth int) ([]*xml.Node, error) {
	if depth+1 > r.config.MaxRenderDepth {
		return nil, NewTemplateError(fmt.Sprintf("maximum nesting depth %d exceeded", r.config.MaxRenderDepth), r.part, opener.Command)
	}

	cmd, err := r.parse(opener.Command)
	if err != nil {
		return nil, err
	}
	value, err := r.evaluate(cmd.code, locals)
	if err != nil {
		return nil, err
	}

	var out []*xml.Node
	switch cmd.kind {
	case cmdIf:
		truthy := sandbox.Truthy(value)
		r.logger.DebugCommand(opener.Command, truthy)
		if !truthy {
			return nil, nil
		}
		body := cloneRange(span, opener.Block)
		return r.renderList(body, locals, depth+1)

	case cmdFor:
		items, err := sandbox.ToSlice(value)
		if err != nil {
			return nil, NewEvaluationError(cmd.code, err)
		}
		r.logger.DebugCommand(opener.Command, fmt.Sprintf("%d items", len(items)))
		for idx, item := range items {
			scope := make(map[string]any, len(locals)+2)
			maps.Copy(scope, locals)
			scope["$"+cmd.name] = item
			scope["$idx"] = idx

			body := cloneRange(span, opener.Block)
			rendered, err := r.renderList(body, scope, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, rendered...)
		}
		return out, nil
	}
	return nil, NewTemplateError("not a block command", r.part, opener.Command)
}

// cloneRange deep-copies the siblings of a block and strips its opener from
// the first and its closer from the last.
func cloneRange(span []*xml.Node, id int) []*xml.Node {
	body := make([]*xml.Node, len(span))
	for i, n := range span {
		body[i] = n.Clone()
	}

	body = stripMarker(body, 0, id)
	if len(body) > 0 {
		body = stripMarker(body, len(body)-1, -id)
	}
	return body
}

// stripMarker removes the node with the given block id from body[at] and
// drops body[at] when it is left empty.
func stripMarker(body []*xml.Node, at, id int) []*xml.Node {
	top := body[at]
	if top.Block == id {
		return append(body[:at:at], body[at+1:]...)
	}

	removeBlock(top, id)
	if boundaryElements[top.Name] && top.Type == xml.ElementNode && !hasContent(top) {
		return append(body[:at:at], body[at+1:]...)
	}
	return body
}

func removeBlock(n *xml.Node, id int) bool {
	for _, child := range n.Children {
		if child.Block == id {
			return n.RemoveChild(child)
		}
		if removeBlock(child, id) {
			if child.IsElement(xml.Run) && !hasContent(child) {
				n.RemoveChild(child)
			}
			return true
		}
	}
	return false
}

// hasContent reports whether n holds text, commands or visual elements.
func hasContent(n *xml.Node) bool {
	found := false
	n.Walk(func(node *xml.Node) bool {
		if found {
			return false
		}
		if node.Type != xml.ElementNode {
			return true
		}
		if node.IsCommand() || visualElements[node.Name] {
			found = true
			return false
		}
		if node.IsElement(xml.Text) {
			found = ownText(node) != ""
			return false
		}
		return true
	})
	return found
}

// renderCommand replaces an INS or EXEC command with its output.
func (r *partRenderer) renderCommand(node *xml.Node, locals map[string]any) ([]*xml.Node, error) {
	if node.Block < 0 {
		return nil, NewTemplateError("block closer without opener", r.part, node.Command)
	}

	cmd, err := r.parse(node.Command)
	if err != nil {
		return nil, err
	}
	value, err := r.evaluate(cmd.code, locals)
	if err != nil {
		return nil, err
	}
	r.logger.DebugCommand(node.Command, value)

	if cmd.kind == cmdExec {
		return nil, nil
	}
	return r.insertText(node, sandbox.Stringify(value)), nil
}

// insertText renders text into copies of the command element. Line breaks
// become w:br siblings when enabled.
func (r *partRenderer) insertText(node *xml.Node, text string) []*xml.Node {
	if !r.config.LineBreaks || !strings.ContainsAny(text, "\r\n") {
		t := textLike(node)
		t.SetText(text)
		return []*xml.Node{t}
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	var out []*xml.Node
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			out = append(out, xml.NewElement(xml.Break))
		}
		if line == "" {
			continue
		}
		t := textLike(node)
		t.SetText(line)
		out = append(out, t)
	}
	return out
}

// evaluate runs a snippet and carries the resulting context forward.
func (r *partRenderer) evaluate(code string, locals map[string]any) (any, error) {
	res, err := r.runtime.Run(r.ctx, code, locals)
	if res.Context != nil {
		r.ctx = res.Context
	}
	if err != nil {
		return nil, NewEvaluationError(code, err)
	}
	return res.Value, nil
}

// fixEmptyCells gives every table cell the paragraph Word requires.
func fixEmptyCells(root *xml.Node) {
	for _, tc := range root.FindAll(xml.TableCell) {
		hasParagraph := false
		for _, child := range tc.Children {
			if child.IsElement(xml.Paragraph) {
				hasParagraph = true
				break
			}
		}
		if !hasParagraph {
			tc.Children = append(tc.Children, xml.NewElement(xml.Paragraph))
		}
	}
}
