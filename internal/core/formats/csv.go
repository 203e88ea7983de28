package formats

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/JonMunkholm/fieldmap/internal/core"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func init() {
	registerCSV()
}

func registerCSV() {
	core.RegisterFormat(core.FormatDefinition{
		Key:       KeyCSV,
		Label:     "CSV (UTF-8 with BOM)",
		Extension: ".csv",
		Write:     writeCSV,
	})
}

// writeCSV writes UTF-8 with a BOM so spreadsheet applications detect the
// encoding. Fields are quoted only when needed.
func writeCSV(ctx context.Context, dst core.Destination, fields []string, rows []core.ExportRow) (err error) {
	if err := requirePath(KeyCSV, dst.Path); err != nil {
		return err
	}

	comma := dst.CSVComma
	if comma == 0 {
		comma = ';'
	}

	f, err := os.Create(dst.Path)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst.Path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", dst.Path, cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if _, err := bw.Write(utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	w := csv.NewWriter(bw)
	w.Comma = comma

	if err := w.Write(fields); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", dst.Path, err)
	}
	return nil
}
