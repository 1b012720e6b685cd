// Package plaintext normalises plain text files. It is the fallback
// for every extension no other normaliser claims.
package plaintext

import (
	"path/filepath"
	"strings"

	"github.com/quarrylabs/quarry/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{
		".txt",
		".text",
		".log",
		".csv",
		".json",
		".yaml",
		".yml",
		".toml",
		".rst",
	}
}

// Normalise passes the content through unchanged and derives the
// title from the filename.
func (n *Normaliser) Normalise(raw []byte, path string) (driven.NormaliseResult, error) {
	return driven.NormaliseResult{
		Title:   TitleFromPath(path),
		Content: string(raw),
	}, nil
}

// TitleFromPath derives a human-readable title from a file path.
func TitleFromPath(path string) string {
	filename := filepath.Base(path)
	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
