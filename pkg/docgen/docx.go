package docgen

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const mainDocumentPart = "word/document.xml"

// renderPartPattern matches the parts that carry body text: the main
// document, headers, footers, footnotes and endnotes.
var renderPartPattern = regexp.MustCompile(`^word/(document|header\d*|footer\d*|footnotes|endnotes)\.xml$`)

// Archive is a read-only view of a ZIP package such as a DOCX file.
type Archive struct {
	files []*zip.File
	Parts map[string]*zip.File
}

// OpenArchive indexes the members of a ZIP package held in memory.
func OpenArchive(data []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, NewDocumentError("read", "", fmt.Errorf("failed to read zip file: %w", err))
	}

	a := &Archive{
		files: zr.File,
		Parts: make(map[string]*zip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		a.Parts[f.Name] = f
	}
	return a, nil
}

// OpenDocx opens a DOCX package and checks that it has a main document.
func OpenDocx(data []byte) (*Archive, error) {
	a, err := OpenArchive(data)
	if err != nil {
		return nil, err
	}
	if _, ok := a.Parts[mainDocumentPart]; !ok {
		return nil, NewDocumentError("read", mainDocumentPart, fmt.Errorf("not a valid DOCX file: missing %s", mainDocumentPart))
	}
	return a, nil
}

// Names returns the member names in archive order.
func (a *Archive) Names() []string {
	names := make([]string, len(a.files))
	for i, f := range a.files {
		names[i] = f.Name
	}
	return names
}

// Part returns the uncompressed content of a member.
func (a *Archive) Part(name string) ([]byte, error) {
	f, ok := a.Parts[name]
	if !ok {
		return nil, NewDocumentError("read", name, fmt.Errorf("part not found"))
	}

	rc, err := f.Open()
	if err != nil {
		return nil, NewDocumentError("open", name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, NewDocumentError("read", name, err)
	}
	return content, nil
}

// RenderParts returns the text-bearing parts in archive order.
func (a *Archive) RenderParts() []string {
	var names []string
	for _, f := range a.files {
		if renderPartPattern.MatchString(f.Name) {
			names = append(names, f.Name)
		}
	}
	return names
}

// XMLParts returns every member whose name ends in .xml, in archive order.
func (a *Archive) XMLParts() []string {
	var names []string
	for _, f := range a.files {
		if isXMLPart(f.Name) {
			names = append(names, f.Name)
		}
	}
	return names
}

// Write produces a new package with the same members in the same order.
// Members named in replaced get the new content; all others are copied
// without recompression.
func (a *Archive) Write(w io.Writer, replaced map[string][]byte) error {
	zw := zip.NewWriter(w)

	for _, f := range a.files {
		content, ok := replaced[f.Name]
		if !ok {
			if err := zw.Copy(f); err != nil {
				return NewDocumentError("write", f.Name, err)
			}
			continue
		}

		header := &zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: f.Modified,
			Comment:  f.Comment,
		}
		fw, err := zw.CreateHeader(header)
		if err != nil {
			return NewDocumentError("write", f.Name, err)
		}
		if _, err := fw.Write(content); err != nil {
			return NewDocumentError("write", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return NewDocumentError("write", "", err)
	}
	return nil
}

// Bytes is Write into memory.
func (a *Archive) Bytes(replaced map[string][]byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := a.Write(&buf, replaced); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isXMLPart(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".xml")
}
