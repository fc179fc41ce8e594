// Package codec converts between stored byte formats and the in-memory
// Dataset model. Formats are resolved from the blob key's extension, the way
// the original platform dispatched on file suffixes.
package codec

import (
	"fmt"
	"math"
	"path"
	"strconv"
	"strings"

	"github.com/srslogics/datasentinel/internal/dataset"
)

// Format identifies a supported tabular encoding.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatXLSX    Format = "xlsx"
	FormatParquet Format = "parquet"
	FormatJSON    Format = "json"
)

// UnsupportedFormatError indicates a blob key whose extension matches no
// supported format.
type UnsupportedFormatError struct {
	Key string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file type: %s (want .csv, .xlsx, .parquet or .json)", e.Key)
}

// Detect resolves the format from a blob key's extension.
func Detect(key string) (Format, error) {
	switch strings.ToLower(path.Ext(key)) {
	case ".csv", ".tsv":
		return FormatCSV, nil
	case ".xlsx", ".xls":
		return FormatXLSX, nil
	case ".parquet":
		return FormatParquet, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", &UnsupportedFormatError{Key: key}
}

// ParseFormat resolves a user-supplied format name. "excel" is accepted as an
// alias the way the original conversion endpoint spelled it.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "parquet":
		return FormatParquet, nil
	case "json":
		return FormatJSON, nil
	}
	return "", &UnsupportedFormatError{Key: name}
}

// Ext returns the file extension for a format, without the dot.
func (f Format) Ext() string { return string(f) }

// Decode parses raw bytes in the given format into a Dataset.
func Decode(data []byte, f Format) (*dataset.Dataset, error) {
	switch f {
	case FormatCSV:
		return decodeCSV(data)
	case FormatXLSX:
		return decodeXLSX(data)
	case FormatParquet:
		return decodeParquet(data)
	case FormatJSON:
		return decodeJSON(data)
	}
	return nil, &UnsupportedFormatError{Key: string(f)}
}

// Encode serializes a Dataset into the given format.
func Encode(ds *dataset.Dataset, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return encodeCSV(ds)
	case FormatXLSX:
		return encodeXLSX(ds)
	case FormatParquet:
		return encodeParquet(ds)
	case FormatJSON:
		return encodeJSON(ds)
	}
	return nil, &UnsupportedFormatError{Key: string(f)}
}

// missingTokens are cell spellings treated as missing on decode.
var missingTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "NaN": {}, "nan": {}, "null": {}, "NULL": {}, "None": {},
}

func isMissingToken(s string) bool {
	_, ok := missingTokens[strings.TrimSpace(s)]
	return ok
}

// fromRecords infers column types from string cells and builds a Dataset.
// A column is numeric when every non-missing cell parses as a float;
// otherwise it stays text. Temporal coercion is the repair stage's job.
func fromRecords(header []string, rows [][]string) (*dataset.Dataset, error) {
	names := dedupeNames(header)
	cols := make([]dataset.Column, 0, len(names))
	for j, name := range names {
		raw := make([]string, len(rows))
		for i, row := range rows {
			if j < len(row) {
				raw[i] = row[j]
			}
		}
		cols = append(cols, inferColumn(name, raw))
	}
	return dataset.New(cols...)
}

func inferColumn(name string, raw []string) dataset.Column {
	numeric := true
	present := 0
	floats := make([]float64, len(raw))
	for i, cell := range raw {
		if isMissingToken(cell) {
			floats[i] = math.NaN()
			continue
		}
		present++
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			numeric = false
			break
		}
		floats[i] = v
	}
	if numeric && present > 0 {
		return dataset.NewNumeric(name, floats)
	}
	vals := make([]string, len(raw))
	for i, cell := range raw {
		if !isMissingToken(cell) {
			vals[i] = strings.TrimSpace(cell)
		}
	}
	return dataset.NewText(name, vals)
}

// dedupeNames disambiguates repeated header names with .1, .2 suffixes.
func dedupeNames(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n)
		}
		if _, dup := seen[name]; !dup {
			seen[name] = 1
		}
		out[i] = name
	}
	return out
}
