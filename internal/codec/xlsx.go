package codec

import (
	"bytes"
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/srslogics/datasentinel/internal/dataset"
)

// decodeXLSX reads the first sheet of a workbook. Header row first, like the
// original pd.read_excel path.
func decodeXLSX(data []byte) (*dataset.Dataset, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return dataset.New()
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return dataset.New()
	}
	return fromRecords(rows[0], rows[1:])
}

func encodeXLSX(ds *dataset.Dataset) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Sheet1"

	header := make([]interface{}, ds.NumCols())
	for i, name := range ds.Names() {
		header[i] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write xlsx header: %w", err)
	}
	cols := ds.Columns()
	for i := 0; i < ds.NumRows(); i++ {
		row := make([]interface{}, len(cols))
		for j, c := range cols {
			switch {
			case c.Missing(i):
				row[j] = nil
			case c.Kind == dataset.Numeric:
				if !math.IsNaN(c.Floats[i]) {
					row[j] = c.Floats[i]
				}
			case c.Kind == dataset.Temporal:
				row[j] = c.Times[i]
			default:
				row[j] = c.Strings[i]
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write xlsx row %d: %w", i+1, err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
