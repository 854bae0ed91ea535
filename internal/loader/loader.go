// Package loader reads county transaction tables into immutable record sets.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/housingdash/api/internal/config"
	"github.com/stwalsh4118/housingdash/api/internal/models"
)

// ErrMissingColumn is returned when a required header is absent.
var ErrMissingColumn = errors.New("required column missing")

// LoadStats summarizes one load of a transaction table.
type LoadStats struct {
	Rows    int `json:"rows"`
	Loaded  int `json:"loaded"`
	Skipped int `json:"skipped"`
}

// artifactColumns are index columns left behind by spreadsheet and
// dataframe exports. They never carry data.
var artifactColumns = map[string]bool{
	"":           true,
	"Unnamed: 0": true,
	"index":      true,
}

// Load reads the transaction table at path using the county's column map.
func Load(path string, county config.CountyConfig) ([]models.Transaction, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("open transactions: %w", err)
	}
	defer f.Close()

	records, stats, err := Parse(f, county)
	if err != nil {
		return nil, stats, fmt.Errorf("parse %s: %w", path, err)
	}
	return records, stats, nil
}

// Parse reads a delimited transaction table.
// Empty cells are treated as absent values. Rows without a tract, sale
// year, sale month or price, rows with negative price or size, and rows
// whose price per square foot can be neither read nor derived are skipped.
func Parse(r io.Reader, county config.CountyConfig) ([]models.Transaction, LoadStats, error) {
	var stats LoadStats

	utf8r, err := utf8Reader(r)
	if err != nil {
		return nil, stats, fmt.Errorf("detect encoding: %w", err)
	}

	delimiter := county.Delimiter
	if delimiter == "" {
		delimiter = config.DefaultDelimiter
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = []rune(delimiter)[0]
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, stats, fmt.Errorf("%w: table is empty", ErrMissingColumn)
		}
		return nil, stats, fmt.Errorf("read header: %w", err)
	}

	cols, err := mapColumns(header, county.Columns)
	if err != nil {
		return nil, stats, err
	}

	records := make([]models.Transaction, 0, 1024)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read row %d: %w", stats.Rows+2, err)
		}
		stats.Rows++

		tx, ok := cols.transaction(row, county.Name)
		if !ok {
			stats.Skipped++
			continue
		}
		records = append(records, tx)
	}

	stats.Loaded = len(records)
	return records, stats, nil
}

// columns holds header positions; -1 marks an absent optional column.
type columns struct {
	geoid, year, month, date, price, priceSF, size, yearBuilt, subGeo, county int
}

func mapColumns(header []string, names config.ColumnMap) (*columns, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if artifactColumns[name] {
			continue
		}
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	lookup := func(name string) int {
		if i, ok := index[name]; ok {
			return i
		}
		return -1
	}

	cols := &columns{
		geoid:     lookup(names.GEOID),
		year:      lookup(names.Year),
		month:     lookup(names.Month),
		date:      lookup(names.Date),
		price:     lookup(names.Price),
		priceSF:   lookup(names.PriceSF),
		size:      lookup(names.Size),
		yearBuilt: lookup(names.YearBuilt),
		subGeo:    lookup(names.SubGeo),
		county:    lookup(names.County),
	}

	required := map[string]int{
		names.GEOID: cols.geoid,
		names.Year:  cols.year,
		names.Month: cols.month,
		names.Price: cols.price,
	}
	for name, idx := range required {
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}

	return cols, nil
}

func (c *columns) transaction(row []string, countyName string) (models.Transaction, bool) {
	geoid := models.NormalizeGEOID(cell(row, c.geoid))
	if geoid == "" {
		return models.Transaction{}, false
	}

	year, ok := parseInt(cell(row, c.year))
	if !ok {
		return models.Transaction{}, false
	}
	month, ok := parseInt(cell(row, c.month))
	if !ok || month < 1 || month > 12 {
		return models.Transaction{}, false
	}

	price, ok := parseDecimal(cell(row, c.price))
	if !ok || price.IsNegative() {
		return models.Transaction{}, false
	}
	priceF, _ := price.Float64()

	tx := models.Transaction{
		GEOID:     geoid,
		SaleYear:  year,
		SaleMonth: month,
		Price:     priceF,
		SubGeo:    cell(row, c.subGeo),
		County:    cell(row, c.county),
		Date:      cell(row, c.date),
	}
	if tx.County == "" {
		tx.County = countyName
	}
	if tx.Date == "" {
		tx.Date = fmt.Sprintf("%d-%d", year, month)
	}

	if size, ok := parseDecimal(cell(row, c.size)); ok {
		if size.IsNegative() {
			return models.Transaction{}, false
		}
		f, _ := size.Float64()
		tx.Size = &f
	}

	if built, ok := parseInt(cell(row, c.yearBuilt)); ok && built >= 0 {
		tx.YearBuilt = &built
	}

	if ppsf, ok := parseDecimal(cell(row, c.priceSF)); ok {
		if ppsf.IsNegative() {
			return models.Transaction{}, false
		}
		tx.PriceSF, _ = ppsf.Float64()
	} else if tx.Size != nil && *tx.Size > 0 {
		tx.PriceSF = priceF / *tx.Size
	} else {
		return models.Transaction{}, false
	}

	tx.ID = tx.County + "-" + tx.Date + "-" + price.String()
	return tx, true
}

// cell returns the trimmed value at idx, or "" when the column is absent.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseDecimal reads a number that may carry thousands separators or a
// leading dollar sign. Empty input is absent, not zero.
func parseDecimal(s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Decimal{}, false
	}
	clean := strings.ReplaceAll(s, ",", "")
	clean = strings.TrimPrefix(clean, "$")
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func parseInt(s string) (int, bool) {
	d, ok := parseDecimal(s)
	if !ok || !d.IsInteger() {
		return 0, false
	}
	return int(d.IntPart()), true
}
