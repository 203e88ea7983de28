package formats

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/fieldmap/internal/core"
)

// DefaultSheetName is used when the destination names no sheet.
const DefaultSheetName = "MappedData"

// ctxCheckEvery is how many rows are written between cancellation checks.
const ctxCheckEvery = 1000

func init() {
	registerXLSX()
}

func registerXLSX() {
	core.RegisterFormat(core.FormatDefinition{
		Key:       KeyXLSX,
		Label:     "Excel workbook",
		Extension: ".xlsx",
		Write:     writeXLSX,
	})
}

// writeXLSX writes one sheet: a bold header row in field order followed by
// one row per export row. Every cell is a string.
func writeXLSX(ctx context.Context, dst core.Destination, fields []string, rows []core.ExportRow) error {
	if err := requirePath(KeyXLSX, dst.Path); err != nil {
		return err
	}

	sheet := dst.SheetName
	if sheet == "" {
		sheet = DefaultSheetName
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("name sheet %q: %w", sheet, err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("open sheet writer: %w", err)
	}

	header := make([]any, len(fields))
	for i, name := range fields {
		header[i] = excelize.Cell{StyleID: bold, Value: name}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		if err := sw.SetRow(cell, toCells(row)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if err := f.SaveAs(dst.Path); err != nil {
		return fmt.Errorf("save %s: %w", dst.Path, err)
	}
	return nil
}

// ReadXLSX reads the first sheet of an xlsx file back into a header and rows.
// Rows are padded to the header width, since trailing empty cells are not
// stored in the workbook. Rows whose cells are all empty are kept, up to the
// last row of the sheet dimension.
func ReadXLSX(path string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, fmt.Errorf("no sheets found in %s", path)
	}

	it, err := f.Rows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read rows: %w", err)
	}
	defer it.Close()

	var all [][]string
	for it.Next() {
		cols, err := it.Columns()
		if err != nil {
			return nil, nil, fmt.Errorf("read row %d: %w", len(all)+1, err)
		}
		all = append(all, cols)
	}
	if err := it.Error(); err != nil {
		return nil, nil, fmt.Errorf("read rows: %w", err)
	}
	for n := lastSheetRow(f, sheet); len(all) < n; {
		all = append(all, nil)
	}
	if len(all) == 0 {
		return nil, nil, nil
	}

	header := all[0]
	rows := make([][]string, 0, len(all)-1)
	for _, r := range all[1:] {
		row := make([]string, len(header))
		copy(row, r)
		rows = append(rows, row)
	}
	return header, rows, nil
}

// lastSheetRow is the last row number of the sheet's dimension, or 0.
func lastSheetRow(f *excelize.File, sheet string) int {
	dim, err := f.GetSheetDimension(sheet)
	if err != nil || dim == "" {
		return 0
	}
	ref := dim[strings.LastIndex(dim, ":")+1:]
	_, row, err := excelize.CellNameToCoordinates(ref)
	if err != nil {
		return 0
	}
	return row
}
