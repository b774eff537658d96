package parsers

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONParser parses indicators from JSON format.
type JSONParser struct{}

// Parse reads JSON from the reader and returns parsed indicators.
func (p *JSONParser) Parse(r io.Reader) ([]RawIndicator, error) {
	var indicators []RawIndicator

	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&indicators); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	// Set line numbers (array index + 1, 1-indexed)
	for i := range indicators {
		indicators[i].LineNum = i + 1
	}

	return indicators, nil
}
