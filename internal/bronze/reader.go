// Package bronze implements the schema normalizer: it parses raw DE-SynPUF
// delimited extracts into typed, partition-tagged records and writes them as
// partitioned parquet, the bronze layer of the lake. Malformed field values
// coerce to null; rows without a usable primary key are dropped and counted.
package bronze

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// csvFile streams one raw extract with a header-index map for column lookup.
type csvFile struct {
	file   *os.File
	csv    *csv.Reader
	rowNum int64
	colIdx map[string]int // uppercase column name → index
}

func openCSV(path string) (*csvFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	bufReader := bufio.NewReaderSize(file, 256*1024)

	// Skip UTF-8 BOM if present
	bom, err := bufReader.Peek(3)
	if err == nil && len(bom) >= 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		bufReader.Discard(3)
	}

	reader := csv.NewReader(bufReader)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	f := &csvFile{
		file:   file,
		csv:    reader,
		colIdx: make(map[string]int),
	}

	header, err := reader.Read()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	f.rowNum++
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	for i, h := range header {
		f.colIdx[strings.ToUpper(strings.TrimSpace(h))] = i
	}

	return f, nil
}

// next returns the next non-empty data row, or nil at EOF.
func (f *csvFile) next() ([]string, error) {
	for {
		row, err := f.csv.Read()
		if err != nil {
			return nil, err
		}
		f.rowNum++
		if len(row) == 0 || (len(row) == 1 && row[0] == "") {
			continue
		}
		return row, nil
	}
}

func (f *csvFile) close() error {
	if f.file != nil {
		return f.file.Close()
	}
	return nil
}

func (f *csvFile) hasColumn(name string) bool {
	_, ok := f.colIdx[name]
	return ok
}

// Column access helpers mirror the hot-path helpers used by the raw readers:
// standalone functions over the row slice plus the header index.

var nullTokens = map[string]bool{
	"": true, "NA": true, "NULL": true, "null": true, "NaN": true, "nan": true,
}

// valAt returns the trimmed cell value, "" when the column is absent or null.
func valAt(row []string, idx map[string]int, col string) string {
	if i, ok := idx[col]; ok && i < len(row) {
		s := strings.ToValidUTF8(strings.TrimSpace(row[i]), "�")
		if nullTokens[s] {
			return ""
		}
		return s
	}
	return ""
}

func optStr(row []string, idx map[string]int, col string) *string {
	if s := valAt(row, idx, col); s != "" {
		return &s
	}
	return nil
}

// optCents parses a decimal dollar amount into integer cents. Malformed
// values coerce to nil and bump the coercion counter.
func optCents(row []string, idx map[string]int, col string, coerced *int64) *int64 {
	s := valAt(row, idx, col)
	if s == "" {
		return nil
	}
	c, err := parseCents(s)
	if err != nil {
		*coerced++
		return nil
	}
	return &c
}

// optDate parses a YYYYMMDD date into an ISO string. Malformed values coerce
// to nil and bump the coercion counter.
func optDate(row []string, idx map[string]int, col string, coerced *int64) *string {
	s := valAt(row, idx, col)
	if s == "" {
		return nil
	}
	iso, err := parseDate(s)
	if err != nil {
		*coerced++
		return nil
	}
	return &iso
}

func optInt32(row []string, idx map[string]int, col string, coerced *int64) *int32 {
	s := valAt(row, idx, col)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*coerced++
		return nil
	}
	i := int32(v)
	return &i
}

func optFloat(row []string, idx map[string]int, col string, coerced *int64) *float64 {
	s := valAt(row, idx, col)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*coerced++
		return nil
	}
	return &v
}

// parseCents converts a decimal string like "-1234.5" to cents (-123450).
// Amounts with more than two fractional digits are rejected rather than
// silently rounded.
func parseCents(s string) (int64, error) {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if whole == "" {
		whole = "0"
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("amount %q: %w", s, err)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("amount %q: %w", s, err)
	}
	cents := w*100 + f
	if neg {
		cents = -cents
	}
	return cents, nil
}

// parseDate converts YYYYMMDD to YYYY-MM-DD with basic range checks.
func parseDate(s string) (string, error) {
	if len(s) != 8 {
		return "", fmt.Errorf("date %q: want YYYYMMDD", s)
	}
	y, err := strconv.Atoi(s[:4])
	if err != nil {
		return "", fmt.Errorf("date %q: %w", s, err)
	}
	m, err := strconv.Atoi(s[4:6])
	if err != nil || m < 1 || m > 12 {
		return "", fmt.Errorf("date %q: bad month", s)
	}
	d, err := strconv.Atoi(s[6:8])
	if err != nil || d < 1 || d > 31 {
		return "", fmt.Errorf("date %q: bad day", s)
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d), nil
}
