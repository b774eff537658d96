package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/factgraph/internal/infrastructure/parsers"
)

func newImportFixture(t *testing.T) (*serviceFixture, *ImportService) {
	t.Helper()

	base := newServiceFixture()
	schema := NewSchemaService(base.store)
	require.NoError(t, schema.LoadDefaults(context.Background()))

	return base, NewImportService(base.facts, schema)
}

func rawIndicator() parsers.RawIndicator {
	confidence := 0.9
	return parsers.RawIndicator{
		FactType:    "resolves_to",
		SourceType:  "domain",
		SourceValue: "evil.example.com",
		TargetType:  "ipv4",
		TargetValue: "203.0.113.7",
		Confidence:  &confidence,
	}
}

func TestImportService_Import(t *testing.T) {
	f, importer := newImportFixture(t)

	result, err := importer.Import(context.Background(), []parsers.RawIndicator{rawIndicator()}, ImportOptions{OriginID: "feed-1"})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	assert.Empty(t, result.Errors)
	require.Len(t, f.store.Facts, 1)
	for _, fact := range f.store.Facts {
		assert.Equal(t, "feed-1", fact.OriginID)
	}
}

func TestImportService_Validate(t *testing.T) {
	badConfidence := 1.5

	tests := []struct {
		name      string
		mutate    func(*parsers.RawIndicator)
		wantField string
	}{
		{
			name:      "missing fact type",
			mutate:    func(r *parsers.RawIndicator) { r.FactType = "" },
			wantField: "fact_type",
		},
		{
			name:      "unknown fact type",
			mutate:    func(r *parsers.RawIndicator) { r.FactType = "bogus" },
			wantField: "fact_type",
		},
		{
			name:      "missing source value",
			mutate:    func(r *parsers.RawIndicator) { r.SourceValue = "" },
			wantField: "source_value",
		},
		{
			name:      "unknown source type",
			mutate:    func(r *parsers.RawIndicator) { r.SourceType = "registry_key" },
			wantField: "source_type",
		},
		{
			name:      "unknown target type",
			mutate:    func(r *parsers.RawIndicator) { r.TargetType = "registry_key" },
			wantField: "target_type",
		},
		{
			name:      "confidence out of range",
			mutate:    func(r *parsers.RawIndicator) { r.Confidence = &badConfidence },
			wantField: "confidence",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, importer := newImportFixture(t)

			raw := rawIndicator()
			tt.mutate(&raw)

			result, err := importer.Import(context.Background(), []parsers.RawIndicator{raw}, ImportOptions{})
			require.NoError(t, err)

			assert.Equal(t, 0, result.Imported)
			require.Len(t, result.Errors, 1)
			assert.Equal(t, tt.wantField, result.Errors[0].Field)
			assert.Empty(t, f.store.Facts)
		})
	}
}

func TestImportService_DryRunValidatesWithoutSaving(t *testing.T) {
	f, importer := newImportFixture(t)

	bad := rawIndicator()
	bad.FactType = "bogus"

	result, err := importer.Import(context.Background(), []parsers.RawIndicator{rawIndicator(), bad}, ImportOptions{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	assert.Len(t, result.Errors, 1)
	assert.Empty(t, f.store.Facts)
}

func TestImportService_ErrorsCarryLineNumbers(t *testing.T) {
	_, importer := newImportFixture(t)

	first := rawIndicator()
	second := rawIndicator()
	second.FactType = "bogus"
	second.LineNum = 42

	result, err := importer.Import(context.Background(), []parsers.RawIndicator{first, second}, ImportOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 42, result.Errors[0].Line)
	assert.Contains(t, result.Errors[0].Error(), "line 42")
}

func TestImportService_RowOriginWins(t *testing.T) {
	f, importer := newImportFixture(t)

	raw := rawIndicator()
	raw.OriginID = "row-origin"

	result, err := importer.Import(context.Background(), []parsers.RawIndicator{raw}, ImportOptions{OriginID: "feed-1"})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	for _, fact := range f.store.Facts {
		assert.Equal(t, "row-origin", fact.OriginID)
	}
}
