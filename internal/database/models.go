package database

import "time"

// Column represents a table column with its metadata.
type Column struct {
	Name       string
	DataType   string
	IsNullable bool
	IsPrimary  bool
	Default    string
	OrdinalPos int
}

// Index represents an index on a table. Failed marks an index whose creation
// was attempted and errored; the entry stays cached under its derived name so
// a repeated request does not re-issue the DDL.
type Index struct {
	Name    string
	Columns []string
	Failed  bool
}

// Row is a single result row keyed by column name.
type Row map[string]any

// Result holds the rows of a query along with the column order the driver
// reported, which a Row by itself cannot preserve.
type Result struct {
	Columns  []string
	Rows     []Row
	Duration time.Duration
}
