package docgen

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseCatalog(t *testing.T) {
	yamlCatalog := `
templates:
  - key: invoice
    file: invoice.docx
    label: Invoice
  - key: confirmation
    file: sub/confirmation.docx
`
	jsonCatalog := `{"templates":[{"key":"invoice","file":"invoice.docx","label":"Invoice"},{"key":"confirmation","file":"sub/confirmation.docx"}]}`

	for name, data := range map[string]string{"yaml": yamlCatalog, "json": jsonCatalog} {
		t.Run(name, func(t *testing.T) {
			catalog, err := ParseCatalog([]byte(data))
			if err != nil {
				t.Fatalf("ParseCatalog failed: %v", err)
			}
			if len(catalog.Templates) != 2 {
				t.Fatalf("got %d templates, want 2", len(catalog.Templates))
			}
			entry, ok := catalog.Lookup("invoice")
			if !ok || entry.File != "invoice.docx" || entry.Label != "Invoice" {
				t.Errorf("Lookup(invoice) = %+v, %v", entry, ok)
			}
			if _, ok := catalog.Lookup("missing"); ok {
				t.Error("Lookup found a missing key")
			}
		})
	}
}

func TestParseCatalogValidation(t *testing.T) {
	data := `
templates:
  - key: a
    file: a.docx
  - key: a
    file: b.docx
  - file: c.docx
  - key: d
`
	_, err := ParseCatalog([]byte(data))
	if !IsValidationError(err) {
		t.Fatalf("got %v, want a validation error", err)
	}
	issues := err.(*ValidationError).Issues
	if len(issues) != 3 {
		t.Errorf("got %d issues, want 3: %v", len(issues), err)
	}
}

func TestLoadCatalogResolvesRelativeFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "templates.yaml")
	if err := os.WriteFile(path, []byte("dir: templates\ntemplates:\n  - key: a\n    file: a.docx\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	entry, _ := catalog.Lookup("a")
	if got, want := catalog.Path(entry), filepath.Join(dir, "templates", "a.docx"); got != want {
		t.Errorf("Path = %s, want %s", got, want)
	}

	if _, _, err := catalog.ReadTemplate("a"); !IsDocumentError(err) {
		t.Errorf("missing file: got %v, want a document error", err)
	}
	if _, err := LoadCatalog(filepath.Join(dir, "nope.yaml")); !IsDocumentError(err) {
		t.Errorf("missing catalog: got %v, want a document error", err)
	}
}
