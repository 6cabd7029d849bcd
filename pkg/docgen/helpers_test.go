package docgen

import (
	"archive/zip"
	"bytes"
	"sort"
	"strings"
	"testing"

	"github.com/wxjw/Vanka/pkg/docgen/xml"
)

const testNamespaces = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`

const testContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/></Types>`

// documentXML wraps body content in a minimal w:document.
func documentXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<w:document ` + testNamespaces + `><w:body>` + body + `<w:sectPr/></w:body></w:document>`
}

// partXML wraps content in a header or footer root element.
func partXML(root, content string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<` + root + ` ` + testNamespaces + `>` + content + `</` + root + `>`
}

// para builds a paragraph holding one run per text.
func para(texts ...string) string {
	var b strings.Builder
	b.WriteString("<w:p>")
	for _, t := range texts {
		b.WriteString(`<w:r><w:t xml:space="preserve">`)
		b.WriteString(t)
		b.WriteString("</w:t></w:r>")
	}
	b.WriteString("</w:p>")
	return b.String()
}

// buildDocx writes a package with [Content_Types].xml and word/document.xml
// first, followed by the remaining parts in name order.
func buildDocx(t *testing.T, parts map[string]string) []byte {
	t.Helper()

	names := make([]string, 0, len(parts))
	for name := range parts {
		if name != "word/document.xml" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := parts["word/document.xml"]; ok {
		names = append([]string{"word/document.xml"}, names...)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	write := func(name, content string) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	write("[Content_Types].xml", testContentTypes)
	for _, name := range names {
		write(name, parts[name])
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return buf.Bytes()
}

// buildBody is buildDocx for a document with only a body.
func buildBody(t *testing.T, body string) []byte {
	t.Helper()
	return buildDocx(t, map[string]string{"word/document.xml": documentXML(body)})
}

// readPart returns a part of a rendered package.
func readPart(t *testing.T, docx []byte, name string) string {
	t.Helper()
	a, err := OpenArchive(docx)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	content, err := a.Part(name)
	if err != nil {
		t.Fatalf("failed to read %s: %v", name, err)
	}
	return string(content)
}

// paragraphs returns the text of every paragraph of a part in document order.
func paragraphs(t *testing.T, docx []byte, name string) []string {
	t.Helper()
	root, err := xml.ParseBytes([]byte(readPart(t, docx, name)))
	if err != nil {
		t.Fatalf("output %s is not well-formed: %v", name, err)
	}
	var out []string
	for _, p := range root.FindAll(xml.Paragraph) {
		out = append(out, p.Text())
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
