package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/quarrylabs/quarry/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query    string  `json:"query" jsonschema:"the search query to find relevant chunks"`
	Mode     string  `json:"mode,omitempty" jsonschema:"ranking mode: hybrid, balanced, semantic or lexical (default hybrid)"`
	Limit    int     `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 8)"`
	MinScore float64 `json:"min_score,omitempty" jsonschema:"drop results scoring below this threshold"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentID   string   `json:"document_id"`
	Title        string   `json:"title"`
	ChunkID      string   `json:"chunk_id"`
	Position     int      `json:"position"`
	Score        float64  `json:"score"`
	Confidence   string   `json:"confidence"`
	MatchedTerms []string `json:"matched_terms,omitempty"`
	Content      string   `json:"content,omitempty"`
}

// SuggestInput is the input schema for the suggest tool.
type SuggestInput struct {
	Partial string `json:"partial" jsonschema:"the partial query to complete"`
	Max     int    `json:"max,omitempty" jsonschema:"maximum number of suggestions (default 8)"`
}

// SuggestOutput is the output schema for the suggest tool.
type SuggestOutput struct {
	Suggestions []SuggestionOutput `json:"suggestions"`
	Count       int                `json:"count"`
}

// SuggestionOutput represents a single query suggestion.
type SuggestionOutput struct {
	Text    string  `json:"text"`
	Type    string  `json:"type"`
	Score   float64 `json:"score"`
	Context string  `json:"context,omitempty"`
}

// SegmentInput is the input schema for the segment tool.
type SegmentInput struct {
	Content string `json:"content" jsonschema:"the raw text to split into chunks"`
	Title   string `json:"title,omitempty" jsonschema:"optional title used for metadata enrichment"`
	Mode    string `json:"mode,omitempty" jsonschema:"chunking strategy: hybrid or semantic (default hybrid)"`
}

// SegmentOutput is the output schema for the segment tool.
type SegmentOutput struct {
	Chunks []ChunkOutput `json:"chunks"`
	Count  int           `json:"count"`
}

// ChunkOutput represents a single produced chunk.
type ChunkOutput struct {
	Position    int      `json:"position"`
	StartOffset int      `json:"start_offset"`
	EndOffset   int      `json:"end_offset"`
	Content     string   `json:"content"`
	KeyPhrases  []string `json:"key_phrases,omitempty"`
	Topics      []string `json:"topics,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the indexed corpus with hybrid semantic and lexical ranking",
	}, s.handleSearch)

	if s.ports.Suggest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "suggest",
			Description: "Suggest completions, corrections and related topics for a partial query",
		}, s.handleSuggest)
	}

	if s.ports.Segmenter != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "segment",
			Description: "Split raw text into retrieval chunks without storing it",
		}, s.handleSegment)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	mode := domain.SearchModeHybrid
	if input.Mode != "" {
		switch domain.SearchMode(input.Mode) {
		case domain.SearchModeSemantic, domain.SearchModeLexical,
			domain.SearchModeHybrid, domain.SearchModeBalanced:
			mode = domain.SearchMode(input.Mode)
		default:
			return nil, SearchOutput{}, fmt.Errorf("unknown search mode %q", input.Mode)
		}
	}

	opts := domain.SearchOptions{
		Mode:     mode,
		Limit:    input.Limit,
		MinScore: input.MinScore,
	}
	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		output.Results[i] = SearchResultOutput{
			DocumentID:   results[i].Document.ID,
			Title:        results[i].Document.Title,
			ChunkID:      results[i].Chunk.ID,
			Position:     results[i].Chunk.Position,
			Score:        results[i].CombinedScore,
			Confidence:   string(results[i].Confidence),
			MatchedTerms: results[i].MatchedTerms,
			Content:      results[i].Chunk.Content,
		}
	}

	return nil, output, nil
}

// handleSuggest handles the suggest tool invocation.
func (s *Server) handleSuggest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SuggestInput,
) (*mcp.CallToolResult, SuggestOutput, error) {
	opts := domain.SuggestOptions{MaxSuggestions: input.Max}
	suggestions, err := s.ports.Suggest.Suggest(ctx, input.Partial, opts)
	if err != nil {
		return nil, SuggestOutput{}, err
	}

	output := SuggestOutput{
		Suggestions: make([]SuggestionOutput, len(suggestions)),
		Count:       len(suggestions),
	}
	for i, sg := range suggestions {
		output.Suggestions[i] = SuggestionOutput{
			Text:    sg.Text,
			Type:    string(sg.Type),
			Score:   sg.Score,
			Context: sg.Context,
		}
	}

	return nil, output, nil
}

// handleSegment handles the segment tool invocation.
func (s *Server) handleSegment(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SegmentInput,
) (*mcp.CallToolResult, SegmentOutput, error) {
	if input.Content == "" {
		return nil, SegmentOutput{}, errors.New("content is required")
	}

	mode := domain.SegmentHybrid
	if input.Mode != "" {
		switch domain.SegmentMode(input.Mode) {
		case domain.SegmentHybrid, domain.SegmentSemantic:
			mode = domain.SegmentMode(input.Mode)
		default:
			return nil, SegmentOutput{}, fmt.Errorf("unknown chunking mode %q", input.Mode)
		}
	}

	doc := &domain.Document{
		ID:      "adhoc",
		Title:   input.Title,
		Content: input.Content,
	}
	chunks, err := s.ports.Segmenter.Segment(ctx, doc, mode, domain.SegmentOptions{})
	if err != nil {
		return nil, SegmentOutput{}, err
	}

	output := SegmentOutput{
		Chunks: make([]ChunkOutput, len(chunks)),
		Count:  len(chunks),
	}
	for i := range chunks {
		output.Chunks[i] = ChunkOutput{
			Position:    chunks[i].Position,
			StartOffset: chunks[i].StartOffset,
			EndOffset:   chunks[i].EndOffset,
			Content:     chunks[i].Content,
			KeyPhrases:  chunks[i].Metadata.KeyPhrases,
			Topics:      chunks[i].Metadata.Topics,
		}
	}

	return nil, output, nil
}
