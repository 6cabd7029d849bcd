package docgen

import (
	"time"

	"github.com/wxjw/Vanka/pkg/docgen/sandbox"
)

// Render fills a DOCX template with data. Bracket tokens are compiled to
// commands first, then every command of the document body, headers,
// footers, footnotes and endnotes is expanded. The data map is not
// modified.
func (e *Engine) Render(template []byte, data map[string]any) (out []byte, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, RecoverError(r)
		}
	}()

	archive, err := OpenDocx(template)
	if err != nil {
		return nil, err
	}

	normalized, err := normalizeParts(archive, e.compiler())
	if err != nil {
		return nil, err
	}

	if e.config.GlobalHelper {
		release := sandbox.AcquireGlobal()
		defer release()
	}

	r := &partRenderer{
		runtime: e.runtime(),
		config:  e.config,
		ctx:     sandbox.NewContext(data),
	}

	replaced := make(map[string][]byte)
	for _, part := range archive.RenderParts() {
		content, ok := normalized[part]
		if !ok {
			if content, err = archive.Part(part); err != nil {
				return nil, err
			}
		}

		r.part = part
		r.logger = e.logger.WithField("part", part)
		rendered, changed, err := r.renderPart(content)
		if err != nil {
			return nil, err
		}
		if changed {
			replaced[part] = rendered
		} else if ok {
			replaced[part] = content
		}
	}
	for part, content := range normalized {
		if _, done := replaced[part]; !done {
			replaced[part] = content
		}
	}

	out, err = archive.Bytes(replaced)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("rendered %d parts in %v", len(replaced), time.Since(start))
	return out, nil
}

// RenderByKey renders the catalog template registered under key.
func (e *Engine) RenderByKey(key string, data map[string]any) ([]byte, error) {
	if e.catalog == nil {
		return nil, NewValidationError("catalog", "", "engine has no template catalog")
	}
	template, entry, err := e.catalog.ReadTemplate(key)
	if err != nil {
		return nil, err
	}
	out, err := e.Render(template, data)
	if err != nil {
		return nil, WithContext(err, "render", map[string]interface{}{"template": entry.Key, "file": entry.File})
	}
	return out, nil
}

// Normalize compiles the bracket tokens of a package with the engine's
// alias and strictness settings.
func (e *Engine) Normalize(archive []byte) ([]byte, bool, error) {
	return normalize(archive, e.compiler())
}

// RenderTemplate renders a template with the default engine.
func RenderTemplate(template []byte, data map[string]any) ([]byte, error) {
	return DefaultEngine.Render(template, data)
}
