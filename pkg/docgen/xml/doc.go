// Package xml provides a small, lossless node tree for the XML parts of a DOCX
// package.
//
// The tree is built with encoding/xml's RawToken, so namespace prefixes are
// kept exactly as written (w:p, w:r, w:t, mc:AlternateContent, ...) and the
// serialized output can be opened by Word without namespace rewriting.
//
// # Key Concepts
//
// Node: one element, text, comment, processing instruction or directive.
//
// Element names are qualified strings ("w:t"), not xml.Name values. The
// rendering engine only needs to compare names and move subtrees around, so
// the tree never resolves prefixes to URIs.
//
// Command annotations: after preprocessing, a w:t element that carries a
// template command records it in Node.Command, and a block command and its
// closer carry the same Node.Block identifier, negated on the closer. These
// fields survive Clone, which is how repeated loop bodies find their
// boundaries.
//
// Example:
//
//	doc, err := xml.Parse(bytes.NewReader(part))
//	if err != nil {
//	    return err
//	}
//	for _, t := range doc.FindAll("w:t") {
//	    fmt.Println(t.Text())
//	}
//	out := doc.Bytes()
package xml
