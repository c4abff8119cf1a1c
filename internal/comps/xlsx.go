// Package comps imports comparable-sales sheets from auction houses.
// Sheets arrive as XLSX workbooks with one row per sold lot; imported
// rows feed the pricing engine's historical evidence.
package comps

import (
	"bytes"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ColumnMapping names the header cells for each field. Matching is
// case-insensitive.
type ColumnMapping struct {
	Category string // required
	Title    string // required
	Price    string // required
	SoldDate string // optional
}

// DefaultMapping matches the column names most auction houses use.
func DefaultMapping() ColumnMapping {
	return ColumnMapping{
		Category: "category",
		Title:    "lot",
		Price:    "hammer price",
		SoldDate: "sale date",
	}
}

// ParserOptions configures sheet parsing.
type ParserOptions struct {
	Mapping   ColumnMapping
	SheetName string // empty selects the first sheet
}

// ParsedComp is one successfully parsed sale row.
type ParsedComp struct {
	Category  string
	Title     string
	SalePrice float64
	SoldAt    *time.Time
	RowNumber int // 1-based, as shown in the spreadsheet
}

// RowError describes a row that could not be imported.
type RowError struct {
	RowNumber int    `json:"row_number"`
	Field     string `json:"field"`
	Message   string `json:"message"`
}

// ParseResult carries parsed rows plus per-row failures. A sheet-level
// failure (unreadable file, missing columns) is returned as an error
// from Parse instead.
type ParseResult struct {
	Comps     []ParsedComp `json:"comps"`
	Errors    []RowError   `json:"errors"`
	TotalRows int          `json:"total_rows"`
}

// Parser parses auction comp sheets.
type Parser struct {
	options ParserOptions
}

// NewParser creates a parser. A zero-value mapping falls back to
// DefaultMapping.
func NewParser(options ParserOptions) *Parser {
	if options.Mapping == (ColumnMapping{}) {
		options.Mapping = DefaultMapping()
	}
	return &Parser{options: options}
}

// Parse reads an XLSX workbook and extracts comparable sales.
func (p *Parser) Parse(content []byte) (*ParseResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("error opening workbook: %w", err)
	}
	defer f.Close()

	sheetName, err := p.selectSheet(f)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("error reading sheet %q: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return &ParseResult{}, nil
	}

	indices, err := p.resolveColumns(rows[0])
	if err != nil {
		return nil, err
	}

	result := &ParseResult{TotalRows: len(rows) - 1}
	for i := 1; i < len(rows); i++ {
		raw := rows[i]
		rowNumber := i + 1

		if isEmptyRow(raw) {
			result.TotalRows--
			continue
		}

		comp, rowErr := mapRow(raw, rowNumber, indices)
		if rowErr != nil {
			result.Errors = append(result.Errors, *rowErr)
			continue
		}
		result.Comps = append(result.Comps, *comp)
	}

	return result, nil
}

func (p *Parser) selectSheet(f *excelize.File) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}
	if p.options.SheetName == "" {
		return sheets[0], nil
	}
	for _, name := range sheets {
		if name == p.options.SheetName {
			return name, nil
		}
	}
	return "", fmt.Errorf("sheet %q not found, available: %s", p.options.SheetName, strings.Join(sheets, ", "))
}

type columnIndices struct {
	category int
	title    int
	price    int
	soldDate int
}

const invalidIndex = -1

func (p *Parser) resolveColumns(header []string) (*columnIndices, error) {
	find := func(want string) int {
		want = strings.ToLower(strings.TrimSpace(want))
		for i, h := range header {
			if strings.ToLower(strings.TrimSpace(h)) == want {
				return i
			}
		}
		return invalidIndex
	}

	indices := &columnIndices{
		category: find(p.options.Mapping.Category),
		title:    find(p.options.Mapping.Title),
		price:    find(p.options.Mapping.Price),
		soldDate: invalidIndex,
	}
	if p.options.Mapping.SoldDate != "" {
		indices.soldDate = find(p.options.Mapping.SoldDate)
	}

	var missing []string
	if indices.category == invalidIndex {
		missing = append(missing, p.options.Mapping.Category)
	}
	if indices.title == invalidIndex {
		missing = append(missing, p.options.Mapping.Title)
	}
	if indices.price == invalidIndex {
		missing = append(missing, p.options.Mapping.Price)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("sheet is missing required columns: %s", strings.Join(missing, ", "))
	}

	return indices, nil
}

func mapRow(raw []string, rowNumber int, indices *columnIndices) (*ParsedComp, *RowError) {
	getValue := func(idx int) string {
		if idx == invalidIndex || idx >= len(raw) {
			return ""
		}
		return strings.TrimSpace(raw[idx])
	}

	category := getValue(indices.category)
	if category == "" {
		return nil, &RowError{RowNumber: rowNumber, Field: "category", Message: "missing category"}
	}
	title := getValue(indices.title)
	if title == "" {
		return nil, &RowError{RowNumber: rowNumber, Field: "lot", Message: "missing lot title"}
	}

	priceStr := getValue(indices.price)
	price, err := parsePrice(priceStr)
	if err != nil || price <= 0 {
		return nil, &RowError{RowNumber: rowNumber, Field: "price", Message: fmt.Sprintf("invalid price %q", priceStr)}
	}

	return &ParsedComp{
		Category:  category,
		Title:     title,
		SalePrice: price,
		SoldAt:    parseDate(getValue(indices.soldDate)),
		RowNumber: rowNumber,
	}, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

var currencyChars = regexp.MustCompile(`[€$£\s]`)

// parsePrice handles the formats auction sheets mix freely:
// "12.99", "12,99", "1.299,00", "$1,299.00".
func parsePrice(value string) (float64, error) {
	if value == "" {
		return 0, fmt.Errorf("empty price value")
	}

	cleaned := currencyChars.ReplaceAllString(value, "")

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")

	if lastComma > lastDot {
		// European format: 1.234,56
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	} else if lastDot > lastComma {
		// US format: 1,234.56
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, err
	}
	return math.Round(parsed*100) / 100, nil
}

var (
	isoPattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
	euPattern  = regexp.MustCompile(`^(\d{1,2})[./](\d{1,2})[./](\d{4})`)
)

// parseDate accepts ISO dates, European dates, and Excel serial dates.
func parseDate(value string) *time.Time {
	if value == "" {
		return nil
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 0 {
		return excelDateToGo(serial)
	}

	if match := isoPattern.FindStringSubmatch(value); len(match) == 4 {
		year, _ := strconv.Atoi(match[1])
		month, _ := strconv.Atoi(match[2])
		day, _ := strconv.Atoi(match[3])
		date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		return &date
	}

	if match := euPattern.FindStringSubmatch(value); len(match) == 4 {
		day, _ := strconv.Atoi(match[1])
		month, _ := strconv.Atoi(match[2])
		year, _ := strconv.Atoi(match[3])
		date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		return &date
	}

	return nil
}

// excelDateToGo converts an Excel serial date. Excel treats 1900 as a
// leap year, so serials past Feb 28, 1900 are off by one.
func excelDateToGo(serial float64) *time.Time {
	if serial < 1 {
		return nil
	}
	if serial > 59 {
		serial--
	}
	epoch := time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)
	date := epoch.Add(time.Duration(serial * 24 * float64(time.Hour)))
	return &date
}
