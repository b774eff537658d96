package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForFormat(t *testing.T) {
	assert.IsType(t, &JSONParser{}, ForFormat("json"))
	assert.IsType(t, &JSONParser{}, ForFormat("JSON"))
	assert.IsType(t, &CSVParser{}, ForFormat("csv"))
	assert.Nil(t, ForFormat("xml"))
}

func TestForFile(t *testing.T) {
	assert.IsType(t, &JSONParser{}, ForFile("indicators.json"))
	assert.IsType(t, &CSVParser{}, ForFile("feeds/INDICATORS.CSV"))
	assert.Nil(t, ForFile("report.txt"))
}

func TestJSONParser_Parse(t *testing.T) {
	input := `[
		{"fact_type": "resolves_to", "source_type": "domain", "source_value": "evil.example.com", "target_type": "ipv4", "target_value": "203.0.113.7", "confidence": 0.9},
		{"fact_type": "alias", "source_type": "threat_actor", "source_value": "APT-99", "target_type": "threat_actor", "target_value": "Crimson Wolf", "bidirectional": true}
	]`

	indicators, err := (&JSONParser{}).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, indicators, 2)

	assert.Equal(t, "resolves_to", indicators[0].FactType)
	assert.Equal(t, "evil.example.com", indicators[0].SourceValue)
	require.NotNil(t, indicators[0].Confidence)
	assert.Equal(t, 0.9, *indicators[0].Confidence)
	assert.Equal(t, 1, indicators[0].LineNum)

	assert.True(t, indicators[1].Bidirectional)
	assert.Nil(t, indicators[1].Confidence)
	assert.Equal(t, 2, indicators[1].LineNum)
}

func TestJSONParser_Parse_InvalidJSON(t *testing.T) {
	_, err := (&JSONParser{}).Parse(strings.NewReader(`{"not": "an array"`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing JSON")
}

func TestCSVParser_Parse(t *testing.T) {
	input := "fact_type,source_type,source_value,target_type,target_value,bidirectional,confidence,origin_id\n" +
		"resolves_to,domain,evil.example.com,ipv4,203.0.113.7,,0.9,feed-1\n" +
		"alias,threat_actor,APT-99,threat_actor,Crimson Wolf,true,,\n"

	indicators, err := (&CSVParser{}).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, indicators, 2)

	assert.Equal(t, "resolves_to", indicators[0].FactType)
	assert.Equal(t, "feed-1", indicators[0].OriginID)
	require.NotNil(t, indicators[0].Confidence)
	assert.Equal(t, 0.9, *indicators[0].Confidence)
	assert.False(t, indicators[0].Bidirectional)
	// Header is line 1, so data rows start at 2.
	assert.Equal(t, 2, indicators[0].LineNum)

	assert.True(t, indicators[1].Bidirectional)
	assert.Nil(t, indicators[1].Confidence)
	assert.Equal(t, 3, indicators[1].LineNum)
}

func TestCSVParser_Parse_ColumnsInAnyOrder(t *testing.T) {
	input := "source_value,fact_type,source_type\n" +
		"evil.example.com,mentions,domain\n"

	indicators, err := (&CSVParser{}).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, indicators, 1)
	assert.Equal(t, "mentions", indicators[0].FactType)
	assert.Equal(t, "domain", indicators[0].SourceType)
}

func TestCSVParser_Parse_MissingRequiredColumn(t *testing.T) {
	input := "fact_type,source_type\nmentions,domain\n"

	_, err := (&CSVParser{}).Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column: source_value")
}

func TestCSVParser_Parse_InvalidBidirectional(t *testing.T) {
	input := "fact_type,source_type,source_value,bidirectional\n" +
		"mentions,domain,evil.example.com,maybe\n"

	_, err := (&CSVParser{}).Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "invalid bidirectional value")
}

func TestCSVParser_Parse_InvalidConfidence(t *testing.T) {
	input := "fact_type,source_type,source_value,confidence\n" +
		"mentions,domain,evil.example.com,high\n"

	_, err := (&CSVParser{}).Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid confidence value")
}
