// Package parsers provides parsers for importing indicators from various
// formats.
package parsers

import (
	"io"
	"path/filepath"
	"strings"
)

// RawIndicator represents one fact assertion parsed from an external source
// before validation.
type RawIndicator struct {
	FactType      string   `json:"fact_type"`
	Value         string   `json:"value,omitempty"`
	SourceType    string   `json:"source_type"`
	SourceValue   string   `json:"source_value"`
	TargetType    string   `json:"target_type,omitempty"`
	TargetValue   string   `json:"target_value,omitempty"`
	Bidirectional bool     `json:"bidirectional,omitempty"`
	Confidence    *float64 `json:"confidence,omitempty"` // Pointer to distinguish 0 from unset
	OriginID      string   `json:"origin_id,omitempty"`
	LineNum       int      `json:"-"` // Line number in source file (set by parser)
}

// Parser defines the interface for parsing indicators from various formats.
type Parser interface {
	Parse(r io.Reader) ([]RawIndicator, error)
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "csv".
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "csv":
		return &CSVParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) Parser {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return &JSONParser{}
	case ".csv":
		return &CSVParser{}
	default:
		return nil
	}
}
