package mcp

import (
	"github.com/quarrylabs/quarry/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides ranked retrieval over the corpus.
	Search driving.SearchService

	// Suggest provides query suggestions.
	Suggest driving.SuggestionService

	// Segmenter splits raw content into chunks.
	Segmenter driving.SegmenterService

	// Ingest manages stored documents.
	Ingest driving.IngestService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	// Suggest, Segmenter and Ingest are optional; their tools and
	// resources degrade when absent.
	return nil
}
