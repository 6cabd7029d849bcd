package docgen

import (
	"github.com/wxjw/Vanka/pkg/docgen/bracket"
)

// NormalizeDelimiters rewrites the bracket tokens of every XML member of a
// package into template commands. When no member changes, the input slice
// is returned as is and the package is not rewritten.
func NormalizeDelimiters(archive []byte) ([]byte, bool, error) {
	return normalize(archive, &bracket.Compiler{})
}

func normalize(archive []byte, compiler *bracket.Compiler) ([]byte, bool, error) {
	a, err := OpenArchive(archive)
	if err != nil {
		return nil, false, err
	}

	replaced, err := normalizeParts(a, compiler)
	if err != nil {
		return nil, false, err
	}
	if len(replaced) == 0 {
		return archive, false, nil
	}

	out, err := a.Bytes(replaced)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// normalizeParts returns the rewritten content of the members that changed.
func normalizeParts(a *Archive, compiler *bracket.Compiler) (map[string][]byte, error) {
	replaced := make(map[string][]byte)
	for _, name := range a.XMLParts() {
		content, err := a.Part(name)
		if err != nil {
			return nil, err
		}
		rewritten, mutated, err := compiler.Rewrite(string(content))
		if err != nil {
			return nil, WithContext(NewTemplateError(err.Error(), name, ""), "normalize", map[string]interface{}{"part": name})
		}
		if mutated {
			replaced[name] = []byte(rewritten)
			GetLogger().WithField("part", name).Debug("rewrote bracket tokens")
		}
	}
	return replaced, nil
}
