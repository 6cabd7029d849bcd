package docgen

import (
	"bytes"
	"strings"
	"testing"
)

func TestNormalizeDelimiters(t *testing.T) {
	docx := buildDocx(t, map[string]string{
		"word/document.xml": documentXML(para("[#items][name][/items]") + para("[customer.full name]")),
		"word/header1.xml":  partXML("w:hdr", para("[title]")),
		"word/media/a.png":  "[not xml]",
	})

	out, changed, err := NormalizeDelimiters(docx)
	if err != nil {
		t.Fatalf("NormalizeDelimiters failed: %v", err)
	}
	if !changed {
		t.Fatal("expected the package to change")
	}

	doc := readPart(t, out, mainDocumentPart)
	for _, expected := range []string{"{FOR item IN items}{$item.name}{END-FOR item}", `{customer["full name"]}`} {
		if !strings.Contains(doc, expected) {
			t.Errorf("document.xml missing %q:\n%s", expected, doc)
		}
	}
	if header := readPart(t, out, "word/header1.xml"); !strings.Contains(header, "{title}") {
		t.Errorf("header not rewritten:\n%s", header)
	}
	if media := readPart(t, out, "word/media/a.png"); media != "[not xml]" {
		t.Errorf("non-XML member rewritten: %q", media)
	}

	in, _ := OpenArchive(docx)
	res, _ := OpenArchive(out)
	if !equalStrings(in.Names(), res.Names()) {
		t.Errorf("member order changed: %v -> %v", in.Names(), res.Names())
	}

	again, changed, err := NormalizeDelimiters(out)
	if err != nil {
		t.Fatalf("second pass failed: %v", err)
	}
	if changed || !bytes.Equal(again, out) {
		t.Error("normalizing twice changed the package")
	}
}

func TestNormalizeDelimitersWithoutTokens(t *testing.T) {
	docx := buildBody(t, para("plain text {already} a command"))

	out, changed, err := NormalizeDelimiters(docx)
	if err != nil {
		t.Fatalf("NormalizeDelimiters failed: %v", err)
	}
	if changed {
		t.Error("package without tokens reported as changed")
	}
	if !bytes.Equal(out, docx) {
		t.Error("package without tokens was rewritten")
	}
}

func TestNormalizeDelimitersInvalidArchive(t *testing.T) {
	if _, _, err := NormalizeDelimiters([]byte("PK but not really")); !IsDocumentError(err) {
		t.Errorf("got %v, want a document error", err)
	}
}

func TestEngineNormalizeStrictClose(t *testing.T) {
	docx := buildBody(t, para("[name][/items]"))

	if _, _, err := NormalizeDelimiters(docx); err != nil {
		t.Errorf("default normalizer should close best-effort, got %v", err)
	}

	config := DefaultConfig()
	config.StrictMode = true
	_, _, err := NewWithConfig(config).Normalize(docx)
	if !IsTemplateError(err) {
		t.Fatalf("got %v, want a template error", err)
	}
	if !strings.Contains(err.Error(), "[/items]") {
		t.Errorf("error does not name the close token: %v", err)
	}
}
