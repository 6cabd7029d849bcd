package xml

import (
	"bytes"
	stdxml "encoding/xml"
	"fmt"
	"io"
)

// Parse reads an XML document into a tree rooted at a DocumentNode.
// Start and end tags must balance; prefixes are kept verbatim.
func Parse(r io.Reader) (*Node, error) {
	dec := stdxml.NewDecoder(r)
	dec.Strict = true

	root := &Node{Type: DocumentNode}
	stack := []*Node{root}

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}

		parent := stack[len(stack)-1]
		switch t := tok.(type) {
		case stdxml.StartElement:
			el := &Node{Type: ElementNode, Name: qualifiedName(t.Name)}
			if len(t.Attr) > 0 {
				el.Attrs = make([]Attr, len(t.Attr))
				for i, a := range t.Attr {
					el.Attrs[i] = Attr{Name: qualifiedName(a.Name), Value: a.Value}
				}
			}
			parent.Children = append(parent.Children, el)
			stack = append(stack, el)

		case stdxml.EndElement:
			name := qualifiedName(t.Name)
			if len(stack) == 1 {
				return nil, fmt.Errorf("parse xml: unexpected end element </%s>", name)
			}
			if parent.Name != name {
				return nil, fmt.Errorf("parse xml: element <%s> closed by </%s>", parent.Name, name)
			}
			stack = stack[:len(stack)-1]

		case stdxml.CharData:
			if n := len(parent.Children); n > 0 && parent.Children[n-1].Type == TextNode {
				parent.Children[n-1].Data += string(t)
				continue
			}
			parent.Children = append(parent.Children, NewText(string(t)))

		case stdxml.Comment:
			parent.Children = append(parent.Children, &Node{Type: CommentNode, Data: string(t)})

		case stdxml.ProcInst:
			parent.Children = append(parent.Children, &Node{Type: ProcInstNode, Name: t.Target, Data: string(t.Inst)})

		case stdxml.Directive:
			parent.Children = append(parent.Children, &Node{Type: DirectiveNode, Data: string(t)})
		}
	}

	if len(stack) != 1 {
		return nil, fmt.Errorf("parse xml: unclosed element <%s>", stack[len(stack)-1].Name)
	}
	return root, nil
}

// ParseBytes is Parse over a byte slice.
func ParseBytes(data []byte) (*Node, error) {
	return Parse(bytes.NewReader(data))
}

func qualifiedName(n stdxml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
