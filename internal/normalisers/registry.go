package normalisers

import (
	"path/filepath"
	"strings"

	"github.com/quarrylabs/quarry/internal/core/ports/driven"
	"github.com/quarrylabs/quarry/internal/normalisers/docx"
	"github.com/quarrylabs/quarry/internal/normalisers/eml"
	"github.com/quarrylabs/quarry/internal/normalisers/html"
	"github.com/quarrylabs/quarry/internal/normalisers/markdown"
	"github.com/quarrylabs/quarry/internal/normalisers/plaintext"
)

// fallback handles every extension no other normaliser claims.
var fallback = plaintext.New()

var byExtension = buildRegistry()

func buildRegistry() map[string]driven.Normaliser {
	all := []driven.Normaliser{
		markdown.New(),
		html.New(),
		eml.New(),
		docx.New(),
		fallback,
	}

	registry := make(map[string]driven.Normaliser)
	for _, n := range all {
		for _, ext := range n.Extensions() {
			registry[ext] = n
		}
	}
	return registry
}

// ForPath returns the normaliser for the file's extension. Unknown
// extensions fall back to plain text.
func ForPath(path string) driven.Normaliser {
	ext := strings.ToLower(filepath.Ext(path))
	if n, ok := byExtension[ext]; ok {
		return n
	}
	return fallback
}

// SupportedExtensions returns every registered extension.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(byExtension))
	for ext := range byExtension {
		exts = append(exts, ext)
	}
	return exts
}
