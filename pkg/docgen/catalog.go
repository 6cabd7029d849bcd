package docgen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// TemplateEntry describes one template of a catalog.
type TemplateEntry struct {
	Key   string `yaml:"key" json:"key"`
	File  string `yaml:"file" json:"file"`
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
}

// Catalog maps template keys to DOCX files.
type Catalog struct {
	Templates []TemplateEntry `yaml:"templates" json:"templates"`

	// Dir is the directory relative template files resolve against.
	Dir string `yaml:"dir,omitempty" json:"dir,omitempty"`
}

// LoadCatalog reads a YAML or JSON catalog. When the catalog sets no
// directory, files resolve against the directory holding the catalog.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewDocumentError("read", path, err)
	}
	catalog, err := ParseCatalog(data)
	if err != nil {
		return nil, WithContext(err, "load catalog", map[string]interface{}{"path": path})
	}

	base := filepath.Dir(path)
	switch {
	case catalog.Dir == "":
		catalog.Dir = base
	case !filepath.IsAbs(catalog.Dir):
		catalog.Dir = filepath.Join(base, catalog.Dir)
	}
	return catalog, nil
}

// ParseCatalog decodes and validates a catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, NewValidationError("catalog", "", err.Error())
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// Validate reports every entry without a key or file and every duplicate key.
func (c *Catalog) Validate() error {
	issues := &ValidationError{}
	seen := make(map[string]bool, len(c.Templates))
	for i, t := range c.Templates {
		field := fmt.Sprintf("templates[%d]", i)
		key := strings.TrimSpace(t.Key)
		switch {
		case key == "":
			issues.add(field+".key", "", "key is required")
		case seen[key]:
			issues.add(field+".key", key, "duplicate key")
		}
		seen[key] = true
		if strings.TrimSpace(t.File) == "" {
			issues.add(field+".file", key, "file is required")
		}
	}
	return issues.err()
}

// Lookup returns the entry with the given key.
func (c *Catalog) Lookup(key string) (TemplateEntry, bool) {
	for _, t := range c.Templates {
		if t.Key == key {
			return t, true
		}
	}
	return TemplateEntry{}, false
}

// Path returns the file of an entry resolved against the catalog directory.
func (c *Catalog) Path(entry TemplateEntry) string {
	if filepath.IsAbs(entry.File) || c.Dir == "" {
		return entry.File
	}
	return filepath.Join(c.Dir, entry.File)
}

// ReadTemplate looks up a key and reads the template file.
func (c *Catalog) ReadTemplate(key string) ([]byte, TemplateEntry, error) {
	entry, ok := c.Lookup(key)
	if !ok {
		return nil, TemplateEntry{}, NewValidationError("templateKey", key, "unknown template")
	}
	path := c.Path(entry)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, entry, NewDocumentError("read", path, err)
	}
	return data, entry, nil
}
