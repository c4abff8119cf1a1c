package comps

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildSheet(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParser_Parse(t *testing.T) {
	content := buildSheet(t, [][]any{
		{"Category", "Lot", "Hammer Price", "Sale Date"},
		{"Vintage Watches", "Omega Seamaster 1965", "$1,250.00", "2026-03-14"},
		{"Vintage Watches", "Rolex Datejust 1972", "2.400,00", "14.03.2026"},
		{"", "", "", ""},
		{"Fine Art", "Unsigned oil landscape", "not a price", "2026-01-02"},
		{"Fine Art", "Signed etching", "310", ""},
	})

	result, err := NewParser(ParserOptions{}).Parse(content)
	require.NoError(t, err)

	// The blank row is dropped entirely, the bad price row is reported.
	assert.Equal(t, 4, result.TotalRows)
	require.Len(t, result.Comps, 3)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 5, result.Errors[0].RowNumber)
	assert.Equal(t, "price", result.Errors[0].Field)

	first := result.Comps[0]
	assert.Equal(t, "Vintage Watches", first.Category)
	assert.Equal(t, "Omega Seamaster 1965", first.Title)
	assert.InDelta(t, 1250.0, first.SalePrice, 0.001)
	require.NotNil(t, first.SoldAt)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), *first.SoldAt)

	// European number and date formats parse to the same values.
	second := result.Comps[1]
	assert.InDelta(t, 2400.0, second.SalePrice, 0.001)
	require.NotNil(t, second.SoldAt)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), *second.SoldAt)

	// Missing sale date is fine.
	assert.Nil(t, result.Comps[2].SoldAt)
}

func TestParser_MissingRequiredColumns(t *testing.T) {
	content := buildSheet(t, [][]any{
		{"Item", "Amount"},
		{"Omega Seamaster", "1250"},
	})

	_, err := NewParser(ParserOptions{}).Parse(content)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns")
}

func TestParser_CustomMapping(t *testing.T) {
	content := buildSheet(t, [][]any{
		{"Rubrika", "Predmet", "Cijena"},
		{"Glass", "Murano vase", "180,50"},
	})

	parser := NewParser(ParserOptions{Mapping: ColumnMapping{
		Category: "Rubrika",
		Title:    "Predmet",
		Price:    "Cijena",
	}})

	result, err := parser.Parse(content)
	require.NoError(t, err)
	require.Len(t, result.Comps, 1)
	assert.InDelta(t, 180.50, result.Comps[0].SalePrice, 0.001)
}

func TestParser_InvalidWorkbook(t *testing.T) {
	_, err := NewParser(ParserOptions{}).Parse([]byte("this is not a workbook"))
	assert.Error(t, err)
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"12.99", 12.99},
		{"12,99", 12.99},
		{"1.299,00", 1299.00},
		{"$1,299.00", 1299.00},
		{"€ 450", 450.00},
	}
	for _, tc := range cases {
		got, err := parsePrice(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.InDelta(t, tc.want, got, 0.001, "input %q", tc.in)
	}

	_, err := parsePrice("")
	assert.Error(t, err)
	_, err = parsePrice("N/A")
	assert.Error(t, err)
}
