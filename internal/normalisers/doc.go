// Package normalisers converts raw file formats into plain text ready
// for segmentation and indexing. Each subpackage handles one format;
// the registry selects a normaliser by file extension and falls back
// to plain text for unknown formats.
package normalisers
