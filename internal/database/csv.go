package database

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
)

// ToCSV runs sql and writes the result to w as CSV: a header row of column
// names followed by the data rows. NULL values become empty fields.
func (db *Database) ToCSV(ctx context.Context, sql string, w io.Writer, args ...any) error {
	res, err := db.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(res.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	rec := make([]string, len(res.Columns))
	for _, row := range res.Rows {
		for i, col := range res.Columns {
			if v := row[col]; v != nil {
				rec[i] = fmt.Sprintf("%v", v)
			} else {
				rec[i] = ""
			}
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
