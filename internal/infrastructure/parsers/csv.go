package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CSVParser parses indicators from CSV format.
type CSVParser struct{}

// Parse reads CSV from the reader and returns parsed indicators.
// Expected columns: fact_type, source_type, source_value, plus optional
// value, target_type, target_value, bidirectional, confidence, origin_id.
func (p *CSVParser) Parse(r io.Reader) ([]RawIndicator, error) {
	reader := csv.NewReader(r)

	colIndex, err := p.readHeader(reader)
	if err != nil {
		return nil, err
	}

	return p.readRecords(reader, colIndex)
}

// readHeader reads and validates the CSV header row.
func (p *CSVParser) readHeader(reader *csv.Reader) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[col] = i
	}

	requiredCols := []string{"fact_type", "source_type", "source_value"}
	for _, col := range requiredCols {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	return colIndex, nil
}

// readRecords reads all data rows and converts them to RawIndicators.
func (p *CSVParser) readRecords(reader *csv.Reader, colIndex map[string]int) ([]RawIndicator, error) {
	var indicators []RawIndicator
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		indicator, err := p.parseRecord(record, colIndex, lineNum)
		if err != nil {
			return nil, err
		}
		indicators = append(indicators, indicator)
	}

	return indicators, nil
}

// parseRecord converts a CSV record to a RawIndicator.
func (p *CSVParser) parseRecord(record []string, colIndex map[string]int, lineNum int) (RawIndicator, error) {
	indicator := RawIndicator{
		FactType:    getColumn(record, colIndex, "fact_type"),
		Value:       getColumn(record, colIndex, "value"),
		SourceType:  getColumn(record, colIndex, "source_type"),
		SourceValue: getColumn(record, colIndex, "source_value"),
		TargetType:  getColumn(record, colIndex, "target_type"),
		TargetValue: getColumn(record, colIndex, "target_value"),
		OriginID:    getColumn(record, colIndex, "origin_id"),
		LineNum:     lineNum,
	}

	if bidiStr := getColumn(record, colIndex, "bidirectional"); bidiStr != "" {
		bidi, err := strconv.ParseBool(bidiStr)
		if err != nil {
			return RawIndicator{}, fmt.Errorf("line %d: invalid bidirectional value %q: %w", lineNum, bidiStr, err)
		}
		indicator.Bidirectional = bidi
	}

	if confStr := getColumn(record, colIndex, "confidence"); confStr != "" {
		conf, err := strconv.ParseFloat(confStr, 64)
		if err != nil {
			return RawIndicator{}, fmt.Errorf("line %d: invalid confidence value %q: %w", lineNum, confStr, err)
		}
		indicator.Confidence = &conf
	}

	return indicator, nil
}

// getColumn safely retrieves a column value from a record.
func getColumn(record []string, colIndex map[string]int, col string) string {
	if idx, ok := colIndex[col]; ok && idx < len(record) {
		return record[idx]
	}
	return ""
}
