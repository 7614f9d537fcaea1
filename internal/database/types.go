package database

// ColumnType is a portable tag for a column's declared type. Drivers map tags
// to their native type names, keeping the handles independent of any single
// driver's type model.
type ColumnType string

const (
	Integer     ColumnType = "integer"
	BigInt      ColumnType = "bigint"
	Serial      ColumnType = "serial"
	Text        ColumnType = "text"
	Varchar     ColumnType = "varchar"
	Boolean     ColumnType = "boolean"
	Timestamp   ColumnType = "timestamp"
	TimestampTZ ColumnType = "timestamptz"
	Date        ColumnType = "date"
	Numeric     ColumnType = "numeric"
	Float       ColumnType = "float"
	JSONB       ColumnType = "jsonb"
	Bytes       ColumnType = "bytes"
	UUID        ColumnType = "uuid"
	Geometry    ColumnType = "geometry"
)

// ColumnDef describes a column for CREATE TABLE and ALTER TABLE ADD COLUMN.
// Default is a raw SQL expression, not a value.
type ColumnDef struct {
	Name    string
	Type    ColumnType
	NotNull bool
	Default string
}
