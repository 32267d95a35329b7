// Package export renders tabular reports as XLSX workbooks
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ContentTypeXLSX is the media type of the workbooks written here
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const dateLayout = "2006-01-02"

// Sheet is one worksheet: a bold header row followed by data rows
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// AddRow appends a data row
func (s *Sheet) AddRow(values ...any) {
	s.Rows = append(s.Rows, values)
}

// WriteXLSX renders sheets in order into one workbook and writes it to w
func WriteXLSX(w io.Writer, sheets ...Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	for i, sheet := range sheets {
		name := sheet.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return err
		}

		for col, h := range sheet.Headers {
			cell, err := excelize.CoordinatesToCellName(col+1, 1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(name, cell, h); err != nil {
				return err
			}
		}
		if len(sheet.Headers) > 0 {
			last, _ := excelize.CoordinatesToCellName(len(sheet.Headers), 1)
			if err := f.SetCellStyle(name, "A1", last, bold); err != nil {
				return err
			}
		}

		for r, row := range sheet.Rows {
			for col, v := range row {
				cell, err := excelize.CoordinatesToCellName(col+1, r+2)
				if err != nil {
					return err
				}
				if err := f.SetCellValue(name, cell, cellValue(v)); err != nil {
					return err
				}
			}
		}
	}

	_, err = f.WriteTo(w)
	return err
}

// cellValue converts the domain types excelize does not know
func cellValue(v any) any {
	switch t := v.(type) {
	case decimal.Decimal:
		return t.InexactFloat64()
	case *decimal.Decimal:
		if t == nil {
			return ""
		}
		return t.InexactFloat64()
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format(dateLayout)
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.Format(dateLayout)
	case fmt.Stringer:
		return t.String()
	}
	return v
}
