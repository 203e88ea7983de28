package core

// Project resolves every table row through the mapping into an ExportRow in
// schema order. Unmapped fields and out-of-range columns yield "".
// The result has exactly len(t.Rows) rows of m.Schema().Len() cells.
func Project(t *Table, m *Mapping) []ExportRow {
	rows := make([]ExportRow, len(t.Rows))
	width := len(m.assign)

	for r, src := range t.Rows {
		row := make(ExportRow, width)
		for i, c := range m.assign {
			if c >= 0 && c < len(src) {
				row[i] = src[c]
			}
		}
		rows[r] = row
	}
	return rows
}

// SelectMapped narrows projected rows to mapped fields, keeping schema order.
// It returns the kept field names and the narrowed rows.
func SelectMapped(m *Mapping, rows []ExportRow) ([]string, []ExportRow) {
	var keep []int
	var fields []string
	for i, c := range m.assign {
		if c != Unmapped {
			keep = append(keep, i)
			fields = append(fields, m.schema.Field(i))
		}
	}

	out := make([]ExportRow, len(rows))
	for r, row := range rows {
		narrow := make(ExportRow, len(keep))
		for k, i := range keep {
			if i < len(row) {
				narrow[k] = row[i]
			}
		}
		out[r] = narrow
	}
	return fields, out
}
