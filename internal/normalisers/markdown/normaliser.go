// Package markdown normalises Markdown files. Heading lines are kept
// intact: the semantic segmenter treats them as section boundaries.
package markdown

import (
	"regexp"
	"strings"

	"github.com/quarrylabs/quarry/internal/core/ports/driven"
	"github.com/quarrylabs/quarry/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".md", ".markdown", ".mdown"}
}

// Normalise extracts the title from the first H1 heading and strips
// formatting that adds no search value.
func (n *Normaliser) Normalise(raw []byte, path string) (driven.NormaliseResult, error) {
	content := string(raw)

	return driven.NormaliseResult{
		Title:   extractTitle(content, path),
		Content: cleanMarkdown(content),
	}, nil
}

// extractTitle uses the first H1 heading, falling back to the filename.
func extractTitle(content, path string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}
	return plaintext.TitleFromPath(path)
}

var (
	codeBlocks   = regexp.MustCompile("(?s)```[^`]*```")
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	images       = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	boldItalic   = regexp.MustCompile(`(\*\*|__|\*)([^*_]+)(\*\*|__|\*)`)
	horizontalHR = regexp.MustCompile(`(?m)^[-*]{3,}\s*$`)
	multiBlank   = regexp.MustCompile(`\n{3,}`)
)

// cleanMarkdown strips formatting that carries no search value.
// Headings, list items, and blockquote text stay: headings drive
// semantic chunk boundaries and the rest is real content.
func cleanMarkdown(content string) string {
	content = codeBlocks.ReplaceAllString(content, "")
	content = images.ReplaceAllString(content, "")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = links.ReplaceAllString(content, "$1")
	content = boldItalic.ReplaceAllString(content, "$2")
	content = horizontalHR.ReplaceAllString(content, "")
	content = multiBlank.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
