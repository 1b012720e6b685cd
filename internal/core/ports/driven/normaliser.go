package driven

// NormaliseResult is the text extracted from one raw file.
type NormaliseResult struct {
	// Title is the extracted display name (document heading, HTML
	// title, email subject) with the filename as fallback.
	Title string

	// Content is the plain text ready for segmentation.
	Content string
}

// Normaliser converts one file format into indexable plain text.
// Implementations live in internal/normalisers.
type Normaliser interface {
	// Extensions lists the lowercase file extensions (with leading
	// dot) this normaliser handles.
	Extensions() []string

	// Normalise extracts title and content from raw file bytes. The
	// path supplies the filename used as title fallback.
	Normalise(raw []byte, path string) (NormaliseResult, error)
}
