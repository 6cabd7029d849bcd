package xml

import (
	"bytes"
	"io"
	"strings"
)

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\r", "&#xD;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\t", "&#x9;",
		"\n", "&#xA;",
		"\r", "&#xD;",
	)
)

// Bytes serializes n and its descendants.
func (n *Node) Bytes() []byte {
	var buf bytes.Buffer
	n.write(&buf)
	return buf.Bytes()
}

// WriteTo serializes n to w.
func (n *Node) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	n.write(&buf)
	return buf.WriteTo(w)
}

func (n *Node) write(buf *bytes.Buffer) {
	switch n.Type {
	case DocumentNode:
		for _, child := range n.Children {
			child.write(buf)
		}

	case ElementNode:
		buf.WriteByte('<')
		buf.WriteString(n.Name)
		for _, a := range n.Attrs {
			buf.WriteByte(' ')
			buf.WriteString(a.Name)
			buf.WriteString(`="`)
			buf.WriteString(attrEscaper.Replace(a.Value))
			buf.WriteByte('"')
		}
		if len(n.Children) == 0 {
			buf.WriteString("/>")
			return
		}
		buf.WriteByte('>')
		for _, child := range n.Children {
			child.write(buf)
		}
		buf.WriteString("</")
		buf.WriteString(n.Name)
		buf.WriteByte('>')

	case TextNode:
		buf.WriteString(textEscaper.Replace(n.Data))

	case CommentNode:
		buf.WriteString("<!--")
		buf.WriteString(n.Data)
		buf.WriteString("-->")

	case ProcInstNode:
		buf.WriteString("<?")
		buf.WriteString(n.Name)
		if n.Data != "" {
			if !startsWithSpace(n.Data) {
				buf.WriteByte(' ')
			}
			buf.WriteString(n.Data)
		}
		buf.WriteString("?>")

	case DirectiveNode:
		buf.WriteString("<!")
		buf.WriteString(n.Data)
		buf.WriteByte('>')
	}
}

func startsWithSpace(s string) bool {
	switch s[0] {
	case ' ', '\t', '\r', '\n':
		return true
	}
	return false
}
