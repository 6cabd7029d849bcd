package xml

import "strings"

// NodeType identifies the kind of a Node.
type NodeType int

const (
	DocumentNode NodeType = iota
	ElementNode
	TextNode
	CommentNode
	ProcInstNode
	DirectiveNode
)

// Common WordprocessingML element names.
const (
	Paragraph = "w:p"
	Run       = "w:r"
	Text      = "w:t"
	Break     = "w:br"
	Table     = "w:tbl"
	TableRow  = "w:tr"
	TableCell = "w:tc"
)

// Attr is an attribute with its qualified name.
type Attr struct {
	Name  string
	Value string
}

// Node is a node of the part tree.
type Node struct {
	Type     NodeType
	Name     string // qualified element name, or processing instruction target
	Attrs    []Attr
	Children []*Node
	Data     string // text, comment, processing instruction or directive content

	// Command is the template command carried by a w:t element, without
	// delimiters.
	Command string
	// Block links an opening block command (positive id) to its closer
	// (the negated id). Zero for everything else.
	Block int
}

// NewElement returns an element node.
func NewElement(name string, children ...*Node) *Node {
	return &Node{Type: ElementNode, Name: name, Children: children}
}

// NewText returns a text node.
func NewText(data string) *Node {
	return &Node{Type: TextNode, Data: data}
}

// IsElement reports whether n is an element with the given qualified name.
func (n *Node) IsElement(name string) bool {
	return n != nil && n.Type == ElementNode && n.Name == name
}

// IsCommand reports whether n carries a template command.
func (n *Node) IsCommand() bool {
	return n != nil && n.Type == ElementNode && n.Command != ""
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr adds or replaces an attribute.
func (n *Node) SetAttr(name, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// Clone returns a deep copy of n, annotations included.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		Type:    n.Type,
		Name:    n.Name,
		Data:    n.Data,
		Command: n.Command,
		Block:   n.Block,
	}
	if len(n.Attrs) > 0 {
		c.Attrs = make([]Attr, len(n.Attrs))
		copy(c.Attrs, n.Attrs)
	}
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// FindAll returns all descendant elements (and n itself) with the given name
// in document order.
func (n *Node) FindAll(name string) []*Node {
	var found []*Node
	n.Walk(func(node *Node) bool {
		if node.IsElement(name) {
			found = append(found, node)
		}
		return true
	})
	return found
}

// Contains reports whether target is n or one of its descendants.
func (n *Node) Contains(target *Node) bool {
	found := false
	n.Walk(func(node *Node) bool {
		if found {
			return false
		}
		if node == target {
			found = true
			return false
		}
		return true
	})
	return found
}

// Text returns the concatenated content of all w:t elements under n.
func (n *Node) Text() string {
	var b strings.Builder
	n.Walk(func(node *Node) bool {
		if node.IsElement(Text) {
			for _, child := range node.Children {
				if child.Type == TextNode {
					b.WriteString(child.Data)
				}
			}
			return false
		}
		return true
	})
	return b.String()
}

// SetText replaces the content of a w:t element and marks whitespace as
// significant when needed.
func (n *Node) SetText(s string) {
	if s == "" {
		n.Children = nil
		return
	}
	n.Children = []*Node{NewText(s)}
	if strings.TrimSpace(s) != s {
		n.SetAttr("xml:space", "preserve")
	}
}

// RemoveChild removes the first direct child identical to target.
func (n *Node) RemoveChild(target *Node) bool {
	for i, child := range n.Children {
		if child == target {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			return true
		}
	}
	return false
}
