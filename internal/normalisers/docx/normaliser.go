// Package docx normalises Word documents by extracting paragraph text
// from the OOXML archive.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/quarrylabs/quarry/internal/core/domain"
	"github.com/quarrylabs/quarry/internal/core/ports/driven"
	"github.com/quarrylabs/quarry/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".docx"}
}

// Normalise extracts paragraph text from word/document.xml and the
// title from docProps/core.xml.
func (n *Normaliser) Normalise(raw []byte, path string) (driven.NormaliseResult, error) {
	reader, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return driven.NormaliseResult{}, fmt.Errorf("%w: not a docx archive: %v", domain.ErrInvalidInput, err)
	}

	content, err := extractDocumentText(reader)
	if err != nil {
		return driven.NormaliseResult{}, err
	}

	return driven.NormaliseResult{
		Title:   extractTitle(reader, path),
		Content: content,
	}, nil
}

// extractDocumentText extracts text from word/document.xml.
func extractDocumentText(reader *zip.Reader) (string, error) {
	content, err := readArchiveFile(reader, "word/document.xml")
	if err != nil {
		return "", err
	}
	if content == nil {
		return "", nil
	}
	return parseDocumentXML(content), nil
}

// documentXML matches the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// parseDocumentXML extracts text content, one line per paragraph.
func parseDocumentXML(content []byte) string {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return ""
	}

	var result strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			result.WriteString("\n")
		}
		for _, r := range para.Runs {
			for _, text := range r.Text {
				result.WriteString(text.Content)
			}
		}
	}
	return strings.TrimSpace(result.String())
}

// coreXML matches the structure of docProps/core.xml.
type coreXML struct {
	Title string `xml:"title"`
}

// extractTitle uses docProps/core.xml, falling back to the filename.
func extractTitle(reader *zip.Reader, path string) string {
	content, err := readArchiveFile(reader, "docProps/core.xml")
	if err == nil && content != nil {
		var core coreXML
		if xmlErr := xml.Unmarshal(content, &core); xmlErr == nil {
			if title := strings.TrimSpace(core.Title); title != "" {
				return title
			}
		}
	}
	return plaintext.TitleFromPath(path)
}

// readArchiveFile reads one named file from the archive, or nil when
// the archive does not contain it.
func readArchiveFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: opening %s", domain.ErrInvalidInput, name)
		}
		defer rc.Close()

		content, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s", domain.ErrInvalidInput, name)
		}
		return content, nil
	}
	return nil, nil
}
